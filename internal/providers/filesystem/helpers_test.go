package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/filedeck/internal/providers/filesystem/drives"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T, enum drives.Enumerator) *Service {
	t.Helper()

	if enum == nil {
		enum = drives.Static{}
	}
	svc, err := New(Config{
		Root:      t.TempDir(),
		ChunkSize: 4,
		Drives:    enum,
		Logger:    zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return svc
}

// writeFile creates rel under root with content, making parents.
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func readFile(t *testing.T, p string) string {
	t.Helper()

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(data)
}
