package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/livepeer/reframe-media/errors"
)

// Local implements Backend over a directory on disk. Asset URIs take the
// form "/media/<relative-path>".
type Local struct {
	Root string
}

func NewLocal(root string) *Local {
	return &Local{Root: root}
}

func (l *Local) WriteFile(relDir, filename, sourcePath, mimeType string) (string, error) {
	destDir := filepath.Join(l.Root, relDir)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", errors.NewServerError("failed to create destination directory", err)
	}
	dest := filepath.Join(destDir, filename)

	src, err := os.Open(sourcePath)
	if err != nil {
		return "", errors.NewServerError("failed to open source file", err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", errors.NewServerError("failed to create destination file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", errors.NewServerError("failed to copy file", err)
	}

	return l.uriFor(relDir, filename), nil
}

func (l *Local) WriteBytes(relDir, filename string, data []byte, mimeType string) (string, error) {
	destDir := filepath.Join(l.Root, relDir)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", errors.NewServerError("failed to create destination directory", err)
	}
	dest := filepath.Join(destDir, filename)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", errors.NewServerError("failed to write file", err)
	}
	return l.uriFor(relDir, filename), nil
}

func (l *Local) uriFor(relDir, filename string) string {
	rel := filepath.ToSlash(filepath.Join(relDir, filename))
	return "/media/" + strings.TrimPrefix(rel, "/")
}

// ResolveLocalPath strips the "/media" prefix and joins the remainder onto
// Root. It fails for any URI that isn't a local "/media/..." URI.
func (l *Local) ResolveLocalPath(uri string) (string, error) {
	if IsRemoteURI(uri) {
		return "", errors.NewValidationError(fmt.Sprintf("cannot resolve remote uri %q to a local path", uri), nil)
	}
	rel := strings.TrimPrefix(uri, "/media/")
	rel = strings.TrimPrefix(rel, "/media")
	rel = strings.TrimPrefix(rel, "/")
	return filepath.Join(l.Root, rel), nil
}

func (l *Local) GetDownloadURL(uri string, presign bool) (string, error) {
	return uri, nil
}
