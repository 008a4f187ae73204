package worker

import (
	"github.com/google/uuid"

	"github.com/livepeer/reframe-media/storage"
	"github.com/livepeer/reframe-media/store"
)

// publishAsset registers a worker-produced file as a MediaAsset, writing it
// into {media_root}/tmp/<uuid><ext> (spec §6.4's filesystem layout) with the
// asset's own id as the uuid, so the cleanup loop's filename->id derivation
// holds.
func publishAsset(s *store.Store, backend storage.Backend, kind store.AssetKind, localPath, ext, mimeType string, duration *float64) (store.MediaAsset, error) {
	id := uuid.NewString()
	uri, err := backend.WriteFile("tmp", id+ext, localPath, mimeType)
	if err != nil {
		return store.MediaAsset{}, err
	}
	return s.CreateAsset(store.MediaAsset{
		ID:              id,
		Kind:            kind,
		URI:             uri,
		MimeType:        mimeType,
		DurationSeconds: duration,
	})
}

// publishBytes is publishAsset for in-memory content (manifests, generated
// subtitle text) with no pre-existing source file.
func publishBytes(s *store.Store, backend storage.Backend, kind store.AssetKind, data []byte, ext, mimeType string, duration *float64) (store.MediaAsset, error) {
	id := uuid.NewString()
	uri, err := backend.WriteBytes("tmp", id+ext, data, mimeType)
	if err != nil {
		return store.MediaAsset{}, err
	}
	return s.CreateAsset(store.MediaAsset{
		ID:              id,
		Kind:            kind,
		URI:             uri,
		MimeType:        mimeType,
		DurationSeconds: duration,
	})
}
