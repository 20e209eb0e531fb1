package archive

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func TestPackOrdersEntries(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"report.xlsx":    "xlsx",
		"report.json":    "{}",
		"report.docx":    "docx",
		"extra/notes.md": "# notes",
	})
	dst := filepath.Join(t.TempDir(), "out.zip")

	digest, err := Pack(src, dst)
	require.NoError(t, err)

	names, err := Entries(dst)
	require.NoError(t, err)
	assert.Equal(t, []string{"extra/notes.md", "report.docx", "report.json", "report.xlsx"}, names)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	sum := sha3.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), digest.String())
}

func TestPackIsDeterministic(t *testing.T) {
	t.Parallel()

	files := map[string]string{"b.txt": "second", "a.txt": "first"}
	first, second := t.TempDir(), t.TempDir()
	writeFiles(t, first, files)
	writeFiles(t, second, files)

	later := time.Now().Add(48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(second, "a.txt"), later, later))

	out := t.TempDir()
	d1, err := Pack(first, filepath.Join(out, "1.zip"))
	require.NoError(t, err)
	d2, err := Pack(second, filepath.Join(out, "2.zip"))
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	writeFiles(t, second, map[string]string{"b.txt": "changed"})
	d3, err := Pack(second, filepath.Join(out, "3.zip"))
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}

func TestPackSkipsDestinationInsideSource(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{"report.json": "{}"})
	dst := filepath.Join(src, "bundle.zip")

	_, err := Pack(src, dst)
	require.NoError(t, err)

	names, err := Entries(dst)
	require.NoError(t, err)
	assert.Equal(t, []string{"report.json"}, names)
}

func TestPackErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()
		dst := filepath.Join(t.TempDir(), "out.zip")
		_, err := Pack(filepath.Join(t.TempDir(), "missing"), dst)
		require.Error(t, err)
		assert.NoFileExists(t, dst)
	})

	t.Run("source is a file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"file": "x"})
		_, err := Pack(filepath.Join(dir, "file"), filepath.Join(dir, "out.zip"))
		assert.True(t, errors.Is(err, ErrNotDirectory))
	})

	t.Run("unwritable destination", func(t *testing.T) {
		t.Parallel()
		src := t.TempDir()
		writeFiles(t, src, map[string]string{"a": "a"})
		_, err := Pack(src, filepath.Join(t.TempDir(), "missing", "out.zip"))
		assert.Error(t, err)
	})
}

func TestEntriesMissingArchive(t *testing.T) {
	t.Parallel()

	_, err := Entries(filepath.Join(t.TempDir(), "none.zip"))
	assert.Error(t, err)
}
