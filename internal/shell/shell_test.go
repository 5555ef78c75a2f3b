package shell

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubDelegates(t *testing.T, dir string, createErr error) {
	t.Helper()
	origDir, origCreate := SendToDirDelegate, CreateShortcutDelegate
	SendToDirDelegate = func() (string, error) { return dir, nil }
	CreateShortcutDelegate = func(target, shortcutPath string) error {
		if createErr != nil {
			return createErr
		}
		return os.WriteFile(shortcutPath, []byte(target), 0644)
	}
	t.Cleanup(func() { SendToDirDelegate, CreateShortcutDelegate = origDir, origCreate })
}

func TestInstallAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "SendTo")
	stubDelegates(t, dir, nil)
	exe := filepath.Join(t.TempDir(), "jsondropper.exe")

	lnk, err := InstallSendTo(exe)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ShortcutName+".lnk"), lnk)
	data, err := os.ReadFile(lnk)
	require.NoError(t, err)
	assert.Equal(t, exe, string(data))

	_, removed, err := RemoveSendTo()
	require.NoError(t, err)
	assert.True(t, removed)

	_, removed, err = RemoveSendTo()
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestInstallPropagatesShortcutError(t *testing.T) {
	boom := errors.New("COM unavailable")
	stubDelegates(t, t.TempDir(), boom)

	_, err := InstallSendTo("app.exe")
	assert.ErrorIs(t, err, boom)
}

func TestUnsupportedWithoutDelegates(t *testing.T) {
	origDir, origCreate := SendToDirDelegate, CreateShortcutDelegate
	SendToDirDelegate, CreateShortcutDelegate = nil, nil
	t.Cleanup(func() { SendToDirDelegate, CreateShortcutDelegate = origDir, origCreate })

	_, err := InstallSendTo("app.exe")
	assert.ErrorIs(t, err, ErrUnsupported)
	_, _, err = RemoveSendTo()
	assert.ErrorIs(t, err, ErrUnsupported)
}
