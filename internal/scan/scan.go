// Package scan walks a root directory looking for project folders, i.e.
// directories holding a form.json manifest.
package scan

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"jsondropper/internal/manifest"
)

// StagePrefix names the temporary directories created during a staged
// replace. They are never reported as candidates.
const StagePrefix = ".jsondropper-stage-"

// maxManifestSize bounds how much of a candidate manifest is read.
const maxManifestSize = 4 << 20

// Candidate is a directory holding a manifest. Code is meaningful only when
// OK is true; a manifest that could not be read or carries no identifier has
// OK false and Err set when reading failed.
type Candidate struct {
	Dir      string
	Manifest string
	Code     string
	OK       bool
	Err      error
}

// Options tune a scan.
type Options struct {
	// Exclude holds doublestar patterns matched against the slash separated
	// path of each directory relative to the root.
	Exclude []string
	Logger  *slog.Logger
}

// Scanner finds manifests on a filesystem. The zero value is not usable;
// use New.
type Scanner struct {
	fs      billy.Filesystem
	exclude []string
	log     *slog.Logger
}

// New returns a Scanner over fs.
func New(fs billy.Filesystem, opts Options) (*Scanner, error) {
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern '%s'", p)
		}
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scanner{fs: fs, exclude: opts.Exclude, log: log}, nil
}

// FindManifests returns the path of every file named form.json under root,
// root included, sorted. root may itself be a symlink or junction; below it
// symlinked directories are not followed. Subdirectories that cannot be read
// are skipped; only a root that cannot be read is an error.
func (s *Scanner) FindManifests(root string) ([]string, error) {
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root '%s': %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root '%s': not a directory", root)
	}
	children, err := s.fs.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scan root '%s': %w", root, err)
	}

	var found []string
	walkFn := func(p string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			s.log.Debug("skipping unreadable path", "path", p, "error", walkErr)
			if fi != nil && fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if fi.IsDir() {
			if s.skipDir(root, p, fi.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if fi.Name() == manifest.FileName {
			found = append(found, p)
		}
		return nil
	}

	// util.Walk uses Lstat, so the root's children are listed here and each
	// subtree is walked on its own.
	for _, fi := range children {
		p := filepath.Join(root, fi.Name())
		if !fi.IsDir() {
			if fi.Name() == manifest.FileName {
				found = append(found, p)
			}
			continue
		}
		if err := util.Walk(s.fs, p, walkFn); err != nil {
			return nil, fmt.Errorf("scan '%s': %w", p, err)
		}
	}
	sort.Strings(found)
	return found, nil
}

// Candidates scans root and reads the identifier of every manifest found.
// Every call rescans; nothing is cached between calls.
func (s *Scanner) Candidates(root string) ([]Candidate, error) {
	paths, err := s.FindManifests(root)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(paths))
	for _, p := range paths {
		out = append(out, s.read(p))
	}
	return out, nil
}

// Match returns the directories under root whose manifest carries code.
func (s *Scanner) Match(root, code string) ([]string, error) {
	candidates, err := s.Candidates(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, c := range candidates {
		if !c.OK {
			continue
		}
		if manifest.Matches(c.Code, code) {
			dirs = append(dirs, c.Dir)
		}
	}
	return dirs, nil
}

func (s *Scanner) read(p string) Candidate {
	c := Candidate{Dir: filepath.Dir(p), Manifest: p}

	f, err := s.fs.Open(p)
	if err != nil {
		c.Err = err
		s.log.Debug("skipping unreadable manifest", "path", p, "error", err)
		return c
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxManifestSize+1))
	if err == nil && len(data) > maxManifestSize {
		err = errors.New("manifest too large")
	}
	if err != nil {
		c.Err = err
		s.log.Debug("skipping unreadable manifest", "path", p, "error", err)
		return c
	}

	c.Code, c.OK = manifest.Lookup(string(data))
	if !c.OK {
		s.log.Debug("manifest has no usable identifier", "path", p)
	}
	return c
}

func (s *Scanner) skipDir(root, p, name string) bool {
	if strings.HasPrefix(name, StagePrefix) {
		return true
	}
	if len(s.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range s.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			s.log.Debug("excluded directory", "path", p, "pattern", pattern)
			return true
		}
	}
	return false
}
