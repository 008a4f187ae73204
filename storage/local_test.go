package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalWriteFileRoundTrip(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(root)

	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "input.mp4")
	require.NoError(t, os.WriteFile(srcPath, []byte("fake video bytes"), 0o644))

	uri, err := l.WriteFile("tmp", "output.mp4", srcPath, "video/mp4")
	require.NoError(t, err)
	require.Equal(t, "/media/tmp/output.mp4", uri)

	resolved, err := l.ResolveLocalPath(uri)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "tmp", "output.mp4"), resolved)

	data, err := os.ReadFile(resolved)
	require.NoError(t, err)
	require.Equal(t, "fake video bytes", string(data))
}

func TestResolveLocalPathRejectsRemoteURI(t *testing.T) {
	l := NewLocal(t.TempDir())
	_, err := l.ResolveLocalPath("s3://bucket/key.mp4")
	require.Error(t, err)
}

func TestIsRemoteURI(t *testing.T) {
	require.True(t, IsRemoteURI("https://example.com/a.mp4"))
	require.True(t, IsRemoteURI("S3://bucket/key"))
	require.False(t, IsRemoteURI("/media/tmp/a.mp4"))
}
