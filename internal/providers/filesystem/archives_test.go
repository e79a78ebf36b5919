package filesystem

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipContents(t *testing.T, buf *bytes.Buffer) map[string]string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	out := make(map[string]string)
	for _, f := range zr.File {
		assert.Equal(t, zip.Deflate, f.Method, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(data)
	}
	return out
}

func TestStreamZipDirectory(t *testing.T) {
	svc := newTestService(t, nil)
	writeFile(t, svc.Root(), "docs/a.txt", "alpha")
	writeFile(t, svc.Root(), "docs/b.txt", "beta")

	buf, err := svc.StreamZip(context.Background(), []string{"docs"})
	require.NoError(t, err)

	contents := zipContents(t, buf)
	names := make([]string, 0, len(contents))
	for name := range contents {
		names = append(names, name)
	}
	sort.Strings(names)

	assert.Equal(t, []string{"docs/a.txt", "docs/b.txt"}, names)
	assert.Equal(t, "alpha", contents["docs/a.txt"])
}

func TestStreamZipMixed(t *testing.T) {
	svc := newTestService(t, nil)
	writeFile(t, svc.Root(), "photos/2024/x.jpg", "jpeg")
	writeFile(t, svc.Root(), "notes/todo.txt", "milk")
	writeFile(t, svc.Root(), "other/todo.txt", "eggs")

	buf, err := svc.StreamZip(context.Background(), []string{"photos", "notes/todo.txt", "other/todo.txt"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"photos/2024/x.jpg": "jpeg",
		"todo.txt":          "milk",
		"todo (1).txt":      "eggs",
	}, zipContents(t, buf))
}

func TestStreamZipErrors(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.StreamZip(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.StreamZip(context.Background(), []string{"missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStreamZipSkipsEscapingLinks(t *testing.T) {
	skipOnWindows(t)
	svc := newTestService(t, nil)
	root := svc.Root()

	outside, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	writeFile(t, outside, "secret.txt", "TOP-SECRET")
	writeFile(t, root, "docs/a.txt", "alpha")
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "docs", "leak.txt")))
	require.NoError(t, os.Symlink("a.txt", filepath.Join(root, "docs", "alias.txt")))

	_, err = svc.StreamRead(context.Background(), "docs/leak.txt", 0)
	require.ErrorIs(t, err, ErrForbidden)

	buf, err := svc.StreamZip(context.Background(), []string{"docs"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"docs/a.txt":     "alpha",
		"docs/alias.txt": "alpha",
	}, zipContents(t, buf))
}
