package util

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// HostFS is a billy.Filesystem that passes absolute host paths straight to
// the operating system. osfs.New would chroot them under a base directory,
// which breaks drive-letter paths on Windows.
type HostFS struct {
	osfs.ChrootOS
}

// Chroot returns a filesystem rooted at path.
func (h *HostFS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

// Root returns the root path for this filesystem.
func (h *HostFS) Root() string {
	return "/"
}

// NewHostFS returns the filesystem used outside tests.
func NewHostFS() billy.Filesystem {
	return &HostFS{}
}
