package session

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsondropper/internal/config"
	"jsondropper/internal/dropper"
	"jsondropper/internal/scan"
	"jsondropper/internal/util"
)

func silenceWarnings(t *testing.T) {
	t.Helper()
	orig := util.WarningPrint
	util.WarningPrint = func(string, ...interface{}) {}
	t.Cleanup(func() { util.WarningPrint = orig })
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func writeForm(t *testing.T, dir, code string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "form.json"), []byte(`{"Code":"`+code+`"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.txt"), []byte("old"), 0644))
}

func newRunner(t *testing.T, out *bytes.Buffer) *Runner {
	t.Helper()
	fs := util.NewHostFS()
	s, err := scan.New(fs, scan.Options{})
	require.NoError(t, err)
	return &Runner{Engine: dropper.New(fs, s, dropper.Options{}), Out: out}
}

func TestFilterArchives(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "X.zip")
	upper := filepath.Join(dir, "Y.ZIP")
	text := filepath.Join(dir, "notes.txt")
	for _, p := range []string{good, upper, text} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}
	missing := filepath.Join(dir, "gone.zip")
	folder := filepath.Join(dir, "folder.zip")
	require.NoError(t, os.Mkdir(folder, 0755))

	accepted, rejected := FilterArchives([]string{`"` + good + `"`, text, missing, "", upper, folder})
	assert.Equal(t, []string{good, upper}, accepted)

	require.Len(t, rejected, 3)
	assert.Equal(t, text, rejected[0].Path)
	assert.Equal(t, "not a .zip file", rejected[0].Reason)
	assert.Equal(t, missing, rejected[1].Path)
	assert.Equal(t, "file not found", rejected[1].Reason)
	assert.Equal(t, folder, rejected[2].Path)
}

func TestRunContinuesAfterBrokenArchive(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "root")
	writeForm(t, filepath.Join(root, "x"), "X")
	writeForm(t, filepath.Join(root, "y"), "Y")

	x := filepath.Join(base, "X.zip")
	y := filepath.Join(base, "Y.zip")
	corrupt := filepath.Join(base, "corrupt.zip")
	writeZip(t, x, map[string]string{"form.json": `{"Code":"X"}`, "x.txt": "new x"})
	writeZip(t, y, map[string]string{"form.json": `{"Code":"Y"}`, "y.txt": "new y"})
	require.NoError(t, os.WriteFile(corrupt, []byte("this is not a zip"), 0644))

	var out bytes.Buffer
	report := newRunner(t, &out).Run([]string{x, corrupt, y}, []string{root})

	require.Len(t, report.Results, 3)
	assert.Equal(t, dropper.StatusUpdated, report.Results[0].Status)
	assert.Equal(t, dropper.StatusFailed, report.Results[1].Status)
	assert.ErrorIs(t, report.Results[1].Err, dropper.ErrArchiveOpenFailed)
	assert.Equal(t, dropper.StatusUpdated, report.Results[2].Status)
	assert.Equal(t, 1, report.Failed())

	data, err := os.ReadFile(filepath.Join(root, "y", "y.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new y", string(data))
	_, err = os.Stat(filepath.Join(root, "y", "old.txt"))
	assert.True(t, os.IsNotExist(err))

	assert.Contains(t, out.String(), "[2/3] corrupt.zip")
	assert.Contains(t, out.String(), "updated "+filepath.Join(root, "x"))

	var summary bytes.Buffer
	report.PrintSummary(&summary)
	assert.Contains(t, summary.String(), "UPDATED")
	assert.Contains(t, summary.String(), "FAILED")
	assert.Contains(t, summary.String(), "1 of 3 archives had errors.")
}

func TestRunWithNothingToDo(t *testing.T) {
	var out bytes.Buffer
	report := newRunner(t, &out).Run([]string{"readme.md"}, []string{t.TempDir()})

	assert.Empty(t, report.Results)
	assert.Len(t, report.Rejected, 1)
	assert.Contains(t, out.String(), "No .zip archives to process.")

	var summary bytes.Buffer
	report.PrintSummary(&summary)
	assert.Empty(t, summary.String())
}

func TestResolveRoots(t *testing.T) {
	silenceWarnings(t)
	base := t.TempDir()
	a := filepath.Join(base, "a")
	b := filepath.Join(base, "b")
	require.NoError(t, os.Mkdir(a, 0755))
	require.NoError(t, os.Mkdir(b, 0755))
	missing := filepath.Join(base, "missing")

	console := func(input string, interactive bool) *Console {
		return NewConsole(strings.NewReader(input), &bytes.Buffer{}, interactive)
	}

	t.Run("nothing configured", func(t *testing.T) {
		_, err := ResolveRoots(nil, RootRequest{}, console("", true), nil)
		assert.ErrorIs(t, err, ErrNoRoots)
	})

	t.Run("single root", func(t *testing.T) {
		roots, err := ResolveRoots([]string{a}, RootRequest{}, console("", true), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{a}, roots)
	})

	t.Run("pick one", func(t *testing.T) {
		roots, err := ResolveRoots([]string{a, b}, RootRequest{}, console("x\n2\n", true), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{b}, roots)
	})

	t.Run("pick all", func(t *testing.T) {
		roots, err := ResolveRoots([]string{a, b}, RootRequest{}, console("3\n", true), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{a, b}, roots)
	})

	t.Run("non interactive uses all", func(t *testing.T) {
		roots, err := ResolveRoots([]string{a, b}, RootRequest{}, console("", false), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{a, b}, roots)
	})

	t.Run("all flag", func(t *testing.T) {
		roots, err := ResolveRoots([]string{a, b}, RootRequest{All: true}, console("", true), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{a, b}, roots)
	})

	t.Run("explicit roots win", func(t *testing.T) {
		roots, err := ResolveRoots([]string{a}, RootRequest{Explicit: []string{b, missing}}, console("", true), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{b}, roots)
	})

	t.Run("missing roots", func(t *testing.T) {
		_, err := ResolveRoots([]string{missing}, RootRequest{}, console("", true), nil)
		assert.ErrorIs(t, err, ErrRootUnavailable)
	})

	t.Run("input ends while choosing", func(t *testing.T) {
		_, err := ResolveRoots([]string{a, b}, RootRequest{}, console("", true), nil)
		assert.Error(t, err)
	})
}

func TestManage(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "forms")
	require.NoError(t, os.Mkdir(root, 0755))
	cfg, err := config.Load(filepath.Join(base, config.ConfigFileName))
	require.NoError(t, err)

	var out bytes.Buffer
	input := "1\n\"" + root + "\"\n3\n4\n"
	require.NoError(t, Manage(cfg, NewConsole(strings.NewReader(input), &out, true), nil))

	assert.Equal(t, []string{root}, cfg.GetRoots())
	assert.True(t, cfg.GetSettings().StagedReplace)
	assert.Contains(t, out.String(), "Added root")

	out.Reset()
	require.NoError(t, Manage(cfg, NewConsole(strings.NewReader("2\n1\n"), &out, true), nil))
	assert.Empty(t, cfg.GetRoots())
	assert.Contains(t, out.String(), "Removed root")

	reloaded, err := config.Load(cfg.Path())
	require.NoError(t, err)
	assert.Empty(t, reloaded.GetRoots())
	assert.True(t, reloaded.GetSettings().StagedReplace)
}

func TestConsoleReadLine(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("  first \nlast"), &out, true)

	line, err := c.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	line, err = c.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = c.ReadLine("> ")
	assert.Error(t, err)
}
