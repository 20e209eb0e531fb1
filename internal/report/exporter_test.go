package report

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSet(t *testing.T) {
	t.Parallel()

	exporters, err := NewSet(AllFormats())
	require.NoError(t, err)
	require.Len(t, exporters, len(AllFormats()))
	for i, f := range AllFormats() {
		assert.Equal(t, f, exporters[i].Format())
	}

	_, err = NewSet([]Format{FormatJSON, "pdf"})
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestExportersRejectWrongPayload(t *testing.T) {
	t.Parallel()

	for _, f := range AllFormats() {
		t.Run(f.String(), func(t *testing.T) {
			t.Parallel()
			e, err := New(f)
			require.NoError(t, err)

			var payload any = "{}"
			if f == FormatJSON {
				payload = testReport()
			}
			dir := t.TempDir()
			_, err = e.Export(payload, dir, "report")
			assert.True(t, errors.Is(err, ErrUnsupportedPayloadKind))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	t.Run("permissions", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path, err := writeFile(dir, "out", FormatCSV, func(w io.Writer) error {
			_, err := io.WriteString(w, "a,b\n")
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "out.csv"), path)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	})

	t.Run("failed write leaves nothing", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		boom := errors.New("boom")
		_, err := writeFile(dir, "out", FormatCSV, func(w io.Writer) error {
			_, _ = io.WriteString(w, "partial")
			return boom
		})
		assert.True(t, errors.Is(err, boom))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("failed write keeps previous output", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "out.csv")
		require.NoError(t, os.WriteFile(path, []byte("previous"), 0o600))

		_, err := writeFile(dir, "out", FormatCSV, func(io.Writer) error {
			return errors.New("boom")
		})
		require.Error(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "previous", string(data))
	})

	t.Run("empty filename", func(t *testing.T) {
		t.Parallel()
		_, err := writeFile(t.TempDir(), "", FormatCSV, func(io.Writer) error { return nil })
		assert.True(t, errors.Is(err, ErrInvalidFilenamePattern))
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()
		_, err := writeFile(filepath.Join(t.TempDir(), "missing"), "out", FormatCSV, func(io.Writer) error { return nil })
		assert.Error(t, err)
	})
}
