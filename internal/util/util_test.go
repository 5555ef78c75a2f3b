package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanInputPath(t *testing.T) {
	assert.Equal(t, `C:\Forms\a.zip`, CleanInputPath(`  "C:\Forms\a.zip"  `))
	assert.Equal(t, "/tmp/a b", CleanInputPath("'/tmp/a b'\n"))
	assert.Equal(t, "", CleanInputPath(`""`))
}

func TestHasArchiveExt(t *testing.T) {
	assert.True(t, HasArchiveExt("form.zip"))
	assert.True(t, HasArchiveExt("FORM.ZIP"))
	assert.False(t, HasArchiveExt("form.zip.txt"))
	assert.False(t, HasArchiveExt("form"))
}

func TestIsWithin(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "forms")
	assert.True(t, IsWithin(root, root))
	assert.True(t, IsWithin(filepath.Join(root, "a", "b.zip"), root))
	assert.False(t, IsWithin(filepath.Join(string(filepath.Separator), "formsX", "b.zip"), root))
	assert.False(t, IsWithin(filepath.Dir(root), root))
}

func TestPathHelpers(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	exists, err := PathExists(file)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = PathExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, exists)

	isDir, err := IsDir(dir)
	require.NoError(t, err)
	assert.True(t, isDir)

	isFile, err := IsFile(dir)
	require.NoError(t, err)
	assert.False(t, isFile)

	isFile, err = IsFile(file)
	require.NoError(t, err)
	assert.True(t, isFile)
}

func TestHostFSUsesAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	fs := NewHostFS()

	target := filepath.Join(dir, "nested", "file.txt")
	require.NoError(t, fs.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, util.WriteFile(fs, target, []byte("hello"), 0644))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
