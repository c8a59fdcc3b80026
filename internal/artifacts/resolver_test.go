package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadFile(t *testing.T) {
	source := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, os.WriteFile(source, []byte("weights"), 0o644))

	destDir := t.TempDir()
	local, err := LocalResolver{}.Download(source, destDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(destDir, "model.bin"), local)
	content, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "weights", string(content))
}

func TestDownloadFileURI(t *testing.T) {
	source := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, os.WriteFile(source, []byte("weights"), 0o644))

	local, err := LocalResolver{}.Download("file://"+source, t.TempDir())
	require.NoError(t, err)
	assert.FileExists(t, local)
}

func TestDownloadDirectory(t *testing.T) {
	source := filepath.Join(t.TempDir(), "mlmodel")
	require.NoError(t, os.MkdirAll(filepath.Join(source, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(source, "MLmodel"), []byte("meta"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(source, "data", "weights.pth"), []byte("w"), 0o644))

	destDir := t.TempDir()
	local, err := LocalResolver{}.Download(source, destDir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(local, "MLmodel"))
	assert.FileExists(t, filepath.Join(local, "data", "weights.pth"))
}

func TestDownloadMissingArtifact(t *testing.T) {
	_, err := LocalResolver{}.Download("/nonexistent/model.bin", t.TempDir())
	require.ErrorIs(t, err, ErrArtifactNotFound)
}
