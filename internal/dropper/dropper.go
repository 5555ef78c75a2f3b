// Package dropper replaces project folders with the content of form exports.
//
// An export is a zip whose form.json carries a Code. Every directory under
// the searched roots whose own form.json carries the same Code is wiped and
// re-populated from the zip. The replace is destructive and not
// transactional: a failure halfway leaves that directory partially
// extracted. Failures are recorded per directory and never stop the
// remaining directories from being processed.
package dropper

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"jsondropper/internal/archive"
	"jsondropper/internal/manifest"
	"jsondropper/internal/scan"
	ut "jsondropper/internal/util"
)

// Options tune an Engine.
type Options struct {
	// Staged extracts into a sibling directory first and only wipes the
	// matched directory once extraction succeeded.
	Staged bool
	// DryRun reports matches without touching the filesystem.
	DryRun bool
	Logger *slog.Logger
}

// Engine runs synchronizations. It holds no state between calls.
type Engine struct {
	fs      billy.Filesystem
	scanner *scan.Scanner
	opts    Options
	log     *slog.Logger
}

// New returns an Engine that reads archives and writes directories on fs.
func New(fs billy.Filesystem, scanner *scan.Scanner, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{fs: fs, scanner: scanner, opts: opts, log: log}
}

// Sync replaces every directory under roots whose manifest identifier equals
// the identifier of the archive at archivePath.
func (e *Engine) Sync(archivePath string, roots ...string) *Result {
	res := &Result{Archive: archivePath, Roots: roots}
	log := e.log.With("archive", archivePath)

	a, err := archive.Open(e.fs, archivePath)
	if err != nil {
		return res.fail(fmt.Errorf("%w: %w", ErrArchiveOpenFailed, err))
	}
	defer a.Close()

	entry := a.FindEntry(manifest.FileName)
	if entry == nil {
		return res.skip(ReasonNoManifest)
	}
	text, err := a.ReadText(entry)
	if err != nil {
		return res.fail(fmt.Errorf("%w: %w", ErrArchiveOpenFailed, err))
	}
	code, ok := manifest.Lookup(text)
	if !ok {
		return res.skip(ReasonEmptyIdentifier)
	}
	res.Code = code
	log = log.With("code", code)

	var matched []string
	for _, root := range roots {
		dirs, err := e.scanner.Match(root, code)
		if err != nil {
			log.Warn("root scan failed", "root", root, "error", err)
			res.Failures = append(res.Failures, DirError{Dir: root, Err: err})
			continue
		}
		matched = append(matched, dirs...)
	}
	res.Matched = e.collapse(matched)

	if len(res.Matched) == 0 {
		if len(res.Failures) > 0 {
			res.Status = StatusFailed
			return res
		}
		return res.skip(ReasonNoMatch)
	}
	if e.opts.DryRun {
		res.Status = StatusDryRun
		return res
	}

	for _, dir := range res.Matched {
		if ut.IsWithin(archivePath, dir) {
			res.Failures = append(res.Failures, DirError{Dir: dir, Err: ErrArchiveInsideTarget})
			continue
		}

		var n int64
		if e.opts.Staged {
			n, err = e.replaceStaged(a, dir)
		} else {
			n, err = e.replace(a, dir)
		}
		res.BytesWritten += n
		if err != nil {
			log.Error("replace failed", "dir", dir, "error", err)
			res.Failures = append(res.Failures, DirError{Dir: dir, Err: err})
			continue
		}
		log.Info("directory replaced", "dir", dir, "bytes", n)
		res.Updated = append(res.Updated, dir)
	}
	return res.settle()
}

// collapse sorts and deduplicates dirs and drops any directory lying inside
// another one, since replacing the outer directory already rewrites it.
func (e *Engine) collapse(dirs []string) []string {
	sorted := append([]string(nil), dirs...)
	sort.Strings(sorted)

	var out []string
	for _, d := range sorted {
		covered := false
		for _, kept := range out {
			if ut.IsWithin(d, kept) {
				covered = true
				break
			}
		}
		if covered {
			e.log.Debug("dropping nested or duplicate match", "dir", d)
			continue
		}
		out = append(out, d)
	}
	return out
}

// replace wipes dir and extracts the archive into it.
func (e *Engine) replace(a *archive.Archive, dir string) (int64, error) {
	if err := e.wipe(dir, ""); err != nil {
		return 0, err
	}
	return e.extract(a, dir)
}

// replaceStaged extracts into a staging directory created inside dir, then
// swaps the staged children into dir. dir keeps its previous content when
// extraction fails.
func (e *Engine) replaceStaged(a *archive.Archive, dir string) (int64, error) {
	stage, err := util.TempDir(e.fs, dir, scan.StagePrefix)
	if err != nil {
		return 0, fmt.Errorf("create staging directory: %w", err)
	}
	defer func() {
		if err := util.RemoveAll(e.fs, stage); err != nil {
			e.log.Warn("failed to remove staging directory", "path", stage, "error", err)
		}
	}()

	n, err := e.extract(a, stage)
	if err != nil {
		return n, fmt.Errorf("stage extraction: %w", err)
	}

	staged, err := e.fs.ReadDir(stage)
	if err != nil {
		return n, fmt.Errorf("read staging directory: %w", err)
	}
	if err := e.wipe(dir, filepath.Base(stage)); err != nil {
		return n, err
	}
	for _, fi := range staged {
		from := filepath.Join(stage, fi.Name())
		to := filepath.Join(dir, fi.Name())
		if err := e.fs.Rename(from, to); err != nil {
			return n, fmt.Errorf("move '%s' into place: %w", fi.Name(), err)
		}
	}
	return n, nil
}

// wipe deletes every direct child file of dir, then every child directory
// recursively. dir itself and the child named keep are left in place.
func (e *Engine) wipe(dir, keep string) error {
	children, err := e.fs.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list '%s': %w", dir, err)
	}
	for _, fi := range children {
		if fi.IsDir() || fi.Name() == keep {
			continue
		}
		p := filepath.Join(dir, fi.Name())
		if err := e.fs.Remove(p); err != nil {
			return fmt.Errorf("delete file '%s': %w", p, err)
		}
	}
	for _, fi := range children {
		if !fi.IsDir() || fi.Name() == keep {
			continue
		}
		p := filepath.Join(dir, fi.Name())
		if err := util.RemoveAll(e.fs, p); err != nil {
			return fmt.Errorf("delete directory '%s': %w", p, err)
		}
	}
	return nil
}

// extract writes every archive entry under dir. Parents are created on
// demand so entry order does not matter.
func (e *Engine) extract(a *archive.Archive, dir string) (int64, error) {
	var total int64
	for _, ent := range a.Entries() {
		target := filepath.Join(dir, filepath.FromSlash(ent.Name()))
		if ent.IsDir() {
			if err := e.fs.MkdirAll(target, ent.Perm()|0700); err != nil {
				return total, fmt.Errorf("create directory '%s': %w", target, err)
			}
			continue
		}
		if err := e.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return total, fmt.Errorf("create directory '%s': %w", filepath.Dir(target), err)
		}
		n, err := e.writeEntry(ent, target)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (e *Engine) writeEntry(ent *archive.Entry, target string) (int64, error) {
	rc, err := ent.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	f, err := e.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, ent.Perm())
	if err != nil {
		return 0, fmt.Errorf("create file '%s': %w", target, err)
	}
	n, err := io.Copy(f, rc)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("write file '%s': %w", target, err)
	}
	return n, nil
}
