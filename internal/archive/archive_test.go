package archive

import (
	"bytes"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeZip(t *testing.T, entries map[string]string, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		if content, ok := entries[name]; ok {
			_, err = w.Write([]byte(content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestOpenAndFindEntry(t *testing.T) {
	fs := memfs.New()
	data := makeZip(t, map[string]string{
		"form.json":     `{"Code":"X"}`,
		"pages/p1.json": `{}`,
	}, "pages/", "pages/p1.json", "form.json")
	require.NoError(t, util.WriteFile(fs, "/in/x.zip", data, 0644))

	a, err := Open(fs, "/in/x.zip")
	require.NoError(t, err)
	defer a.Close()

	entries := a.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "pages", entries[0].Name())
	assert.True(t, entries[0].IsDir())
	assert.Equal(t, "pages/p1.json", entries[1].Name())
	assert.False(t, entries[1].IsDir())

	e := a.FindEntry("form.json")
	require.NotNil(t, e)
	text, err := a.ReadText(e)
	require.NoError(t, err)
	assert.Equal(t, `{"Code":"X"}`, text)

	assert.Nil(t, a.FindEntry("missing.json"))
	assert.Nil(t, a.FindEntry("pages"), "directories are not returned")
	assert.Equal(t, int64(len(`{"Code":"X"}`)+len(`{}`)), a.TotalSize())
}

func TestFindEntryIgnoresCaseAsFallback(t *testing.T) {
	fs := memfs.New()
	data := makeZip(t, map[string]string{"Form.JSON": `{"Code":"Y"}`}, "Form.JSON")
	require.NoError(t, util.WriteFile(fs, "/y.zip", data, 0644))

	a, err := Open(fs, "/y.zip")
	require.NoError(t, err)
	defer a.Close()

	e := a.FindEntry("form.json")
	require.NotNil(t, e)
	assert.Equal(t, "Form.JSON", e.Name())
}

func TestOpenErrors(t *testing.T) {
	fs := memfs.New()

	_, err := Open(fs, "/missing.zip")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, util.WriteFile(fs, "/plain.zip", []byte("definitely not a zip"), 0644))
	_, err = Open(fs, "/plain.zip")
	assert.ErrorIs(t, err, ErrNotAnArchive)

	require.NoError(t, fs.MkdirAll("/dir.zip", 0755))
	_, err = Open(fs, "/dir.zip")
	assert.ErrorIs(t, err, ErrNotAnArchive)
}

func TestOpenRejectsEscapingEntries(t *testing.T) {
	for _, name := range []string{"../evil.txt", "/etc/evil", "a/../../evil"} {
		t.Run(name, func(t *testing.T) {
			fs := memfs.New()
			data := makeZip(t, map[string]string{name: "x", "form.json": `{"Code":"X"}`}, "form.json", name)
			require.NoError(t, util.WriteFile(fs, "/bad.zip", data, 0644))

			_, err := Open(fs, "/bad.zip")
			assert.ErrorIs(t, err, ErrUnsafePath)
		})
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"form.json", "form.json", true},
		{"./form.json", "form.json", true},
		{`pages\p1.json`, "pages/p1.json", true},
		{"pages/", "pages", true},
		{"a/./b/../c.txt", "a/c.txt", true},
		{"./", "", true},
		{"../x", "", false},
		{"/abs", "", false},
	}
	for _, c := range cases {
		got, ok := normalizeName(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}
