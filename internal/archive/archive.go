// Package archive reads form exports: zip containers whose root holds a
// form.json manifest.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/klauspost/compress/zip"
)

// maxTextSize caps how much of a single entry ReadText materializes.
const maxTextSize = 16 << 20

var (
	ErrNotFound     = errors.New("archive not found")
	ErrNotAnArchive = errors.New("not a zip archive")
	ErrCorrupt      = errors.New("archive is corrupt")
	ErrUnsafePath   = errors.New("archive entry escapes the destination")
)

// Entry is a single file or directory stored in an archive.
type Entry struct {
	name string
	file *zip.File
}

// Name is the slash separated path of the entry relative to the archive
// root. Directory entries carry no trailing slash.
func (e *Entry) Name() string { return e.name }

// IsDir reports whether the entry denotes a directory.
func (e *Entry) IsDir() bool {
	return strings.HasSuffix(e.file.Name, "/") || strings.HasSuffix(e.file.Name, `\`) || e.file.FileInfo().IsDir()
}

// Size is the uncompressed size in bytes.
func (e *Entry) Size() int64 { return int64(e.file.UncompressedSize64) }

// Perm returns the permission bits to extract the entry with. Archives made
// on Windows carry none, so regular files fall back to 0644.
func (e *Entry) Perm() os.FileMode {
	perm := e.file.Mode().Perm()
	if perm == 0 {
		if e.IsDir() {
			return 0755
		}
		return 0644
	}
	return perm
}

// Open returns a reader over the decompressed content of the entry.
func (e *Entry) Open() (io.ReadCloser, error) {
	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry '%s': %w", e.name, errors.Join(ErrCorrupt, err))
	}
	return rc, nil
}

// Archive is an opened zip container. It must be closed by the caller.
type Archive struct {
	path    string
	file    billy.File
	reader  *zip.Reader
	entries []*Entry
}

// Open opens the archive at p on fs. Every entry name is validated up front
// so callers never start a destructive operation with an archive that would
// write outside its destination.
func Open(fs billy.Basic, p string) (*Archive, error) {
	info, err := fs.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open '%s': %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("stat '%s': %w", p, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open '%s': %w", p, ErrNotAnArchive)
	}

	f, err := fs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open '%s': %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("open '%s': %w", p, err)
	}

	zr, err := zip.NewReader(f, info.Size())
	// A reader returned together with an error only flags insecure names,
	// which are validated below.
	if err != nil && zr == nil {
		f.Close()
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("read '%s': %w", p, ErrNotAnArchive)
		}
		return nil, fmt.Errorf("read '%s': %w", p, errors.Join(ErrCorrupt, err))
	}

	a := &Archive{path: p, file: f, reader: zr}
	for _, zf := range zr.File {
		name, ok := normalizeName(zf.Name)
		if !ok {
			f.Close()
			return nil, fmt.Errorf("read '%s': entry '%s': %w", p, zf.Name, ErrUnsafePath)
		}
		if name == "" {
			// the archive root itself
			continue
		}
		a.entries = append(a.entries, &Entry{name: name, file: zf})
	}
	return a, nil
}

// Path returns the location the archive was opened from.
func (a *Archive) Path() string { return a.path }

// Close releases the underlying file handle.
func (a *Archive) Close() error {
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

// Entries returns every entry in archive order.
func (a *Archive) Entries() []*Entry {
	out := make([]*Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// FindEntry looks name up by exact relative path first, then ignoring case.
// It returns nil when no entry matches.
func (a *Archive) FindEntry(name string) *Entry {
	name, ok := normalizeName(name)
	if !ok || name == "" {
		return nil
	}
	var folded *Entry
	for _, e := range a.entries {
		if e.IsDir() {
			continue
		}
		if e.name == name {
			return e
		}
		if folded == nil && strings.EqualFold(e.name, name) {
			folded = e
		}
	}
	return folded
}

// ReadText materializes the whole entry as a string.
func (a *Archive) ReadText(e *Entry) (string, error) {
	rc, err := e.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxTextSize+1))
	if err != nil {
		return "", fmt.Errorf("read entry '%s': %w", e.name, errors.Join(ErrCorrupt, err))
	}
	if len(data) > maxTextSize {
		return "", fmt.Errorf("read entry '%s': larger than %d bytes", e.name, maxTextSize)
	}
	return string(data), nil
}

// TotalSize sums the uncompressed size of all file entries.
func (a *Archive) TotalSize() int64 {
	var n int64
	for _, e := range a.entries {
		if !e.IsDir() {
			n += e.Size()
		}
	}
	return n
}

// normalizeName converts an entry name into a clean slash separated relative
// path. ok is false for names that would land outside the destination.
func normalizeName(name string) (clean string, ok bool) {
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.TrimPrefix(name, "./")
	if name == "" || name == "." || name == "./" {
		return "", true
	}
	if strings.HasPrefix(name, "/") || filepath.VolumeName(filepath.FromSlash(name)) != "" {
		return "", false
	}
	clean = path.Clean(strings.TrimSuffix(name, "/"))
	if clean == "." {
		return "", true
	}
	if !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", false
	}
	return clean, true
}
