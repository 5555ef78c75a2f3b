// Package shell registers the executable in the Explorer "Send To" menu so
// exports can be sent to it with a right click.
package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"jsondropper/internal/util"
)

// ShortcutName is the menu label, i.e. the .lnk file name without extension.
const ShortcutName = "JsonDropper"

var ErrUnsupported = errors.New("Send To integration is only available on Windows")

// Platform hooks. They are set by the Windows build and stay nil elsewhere.
var (
	// SendToDirDelegate returns the current user's Send To folder.
	SendToDirDelegate func() (string, error)
	// CreateShortcutDelegate writes a .lnk at shortcutPath pointing to target.
	CreateShortcutDelegate func(target, shortcutPath string) error
)

// ShortcutPath returns where the Send To shortcut lives.
func ShortcutPath() (string, error) {
	if SendToDirDelegate == nil {
		return "", ErrUnsupported
	}
	dir, err := SendToDirDelegate()
	if err != nil {
		return "", fmt.Errorf("locate Send To folder: %w", err)
	}
	return filepath.Join(dir, ShortcutName+".lnk"), nil
}

// InstallSendTo creates or overwrites the shortcut so it points to exePath.
func InstallSendTo(exePath string) (string, error) {
	if CreateShortcutDelegate == nil {
		return "", ErrUnsupported
	}
	lnk, err := ShortcutPath()
	if err != nil {
		return "", err
	}
	target, err := util.GetAbsPath(exePath)
	if err != nil {
		return "", err
	}
	if err := util.EnsureDirExists(filepath.Dir(lnk)); err != nil {
		return "", err
	}
	if err := CreateShortcutDelegate(target, lnk); err != nil {
		return "", err
	}
	return lnk, nil
}

// RemoveSendTo deletes the shortcut. Removing a missing shortcut is not an
// error; removed reports whether a file was deleted.
func RemoveSendTo() (lnk string, removed bool, err error) {
	lnk, err = ShortcutPath()
	if err != nil {
		return "", false, err
	}
	exists, err := util.PathExists(lnk)
	if err != nil || !exists {
		return lnk, false, err
	}
	if err := os.Remove(lnk); err != nil {
		return lnk, false, fmt.Errorf("delete shortcut '%s': %w", lnk, err)
	}
	return lnk, true, nil
}
