package util

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"
)

// ArchiveExt is the extension of the form exports accepted on the command line.
const ArchiveExt = ".zip"

// Console colours.
var (
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
	titleColor   = color.New(color.FgHiCyan, color.Bold)
)

// Printers bound to stderr (warnings, errors) and stdout (success, titles).
// They are variables so tests can silence them.
var (
	WarningPrint = func(format string, a ...interface{}) {
		warningColor.Fprintf(os.Stderr, format, a...)
	}

	ErrorPrint = func(format string, a ...interface{}) {
		errorColor.Fprintf(os.Stderr, format, a...)
	}

	SuccessPrint = func(format string, a ...interface{}) {
		successColor.Fprintf(os.Stdout, format, a...)
	}

	TitlePrint = func(format string, a ...interface{}) {
		titleColor.Fprintf(os.Stdout, format, a...)
	}
)

// GetExecutableDir returns the directory holding the running executable.
func GetExecutableDir() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("get executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exePath); err == nil {
		exePath = resolved
	}
	return filepath.Dir(exePath), nil
}

// PathExists reports whether a file or directory exists at path.
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat '%s': %w", path, err)
}

// IsDir reports whether path is an existing directory.
// A missing path is not an error.
func IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat '%s': %w", path, err)
	}
	return info.IsDir(), nil
}

// IsFile reports whether path is an existing regular file.
func IsFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat '%s': %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

// EnsureDirExists creates dirPath and any missing parents.
func EnsureDirExists(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("create directory '%s': %w", dirPath, err)
	}
	return nil
}

// GetAbsPath returns the cleaned absolute form of p.
func GetAbsPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path of '%s': %w", p, err)
	}
	return absPath, nil
}

// CleanInputPath trims whitespace and the double quotes Windows adds when a
// file is dragged into a console window.
func CleanInputPath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.Trim(p, "\"'")
	return strings.TrimSpace(p)
}

// HasArchiveExt reports whether p ends with ArchiveExt, ignoring case.
func HasArchiveExt(p string) bool {
	return strings.HasSuffix(strings.ToLower(p), ArchiveExt)
}

// SamePath compares two cleaned paths, ignoring case on Windows.
func SamePath(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// IsWithin reports whether path equals dir or lies underneath it.
func IsWithin(path, dir string) bool {
	if runtime.GOOS == "windows" {
		path, dir = strings.ToLower(path), strings.ToLower(dir)
	}
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}
