package storage

import (
	"strings"
)

// Backend is the C1 storage capability set: durably write bytes under a
// relative path and resolve/serve them back out as a URI.
type Backend interface {
	// WriteFile durably stores the file at sourcePath under
	// {root}/{relDir}/{filename} (local) or an object-store key derived the
	// same way, returning the asset URI.
	WriteFile(relDir, filename, sourcePath, mimeType string) (string, error)
	// WriteBytes is WriteFile without a pre-existing source file on disk.
	WriteBytes(relDir, filename string, data []byte, mimeType string) (string, error)
	// ResolveLocalPath returns a filesystem path for a local URI. It fails
	// for remote URIs.
	ResolveLocalPath(uri string) (string, error)
	// GetDownloadURL returns a URL a client can fetch the asset from:
	// the URI itself for local/public assets, or a presigned URL when
	// presign is requested and the backend supports it.
	GetDownloadURL(uri string, presign bool) (string, error)
}

// IsRemoteURI reports whether uri points at a non-local backend.
func IsRemoteURI(uri string) bool {
	lower := strings.ToLower(uri)
	for _, scheme := range []string{"http://", "https://", "s3://", "gs://"} {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}
