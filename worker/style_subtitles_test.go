package worker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKaraokeASSPathPassesThroughExistingASS(t *testing.T) {
	dir := t.TempDir()
	assPath := filepath.Join(dir, "in.ass")
	require.NoError(t, os.WriteFile(assPath, []byte("[Script Info]\n"), 0o644))

	out, err := karaokeASSPath(assPath, dir)
	require.NoError(t, err)
	require.Equal(t, assPath, out)
}

func TestKaraokeASSPathConvertsSRT(t *testing.T) {
	dir := t.TempDir()
	srtPath := filepath.Join(dir, "in.srt")
	srt := "1\n00:00:00,000 --> 00:00:01,000\nhello world\n\n"
	require.NoError(t, os.WriteFile(srtPath, []byte(srt), 0o644))

	out, err := karaokeASSPath(srtPath, dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "karaoke.ass"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), "Dialogue:")
}

func TestKaraokeASSPathRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := karaokeASSPath(path, dir)
	require.Error(t, err)
}
