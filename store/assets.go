package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/livepeer/reframe-media/config"
	"github.com/livepeer/reframe-media/errors"
)

func (s *Store) CreateAsset(a MediaAsset) (MediaAsset, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.URI == "" {
		return MediaAsset{}, errors.NewValidationError("asset uri must not be empty", nil)
	}
	now := config.Clock.GetTime()
	a.CreatedAt, a.UpdatedAt = now, now

	_, err := s.db.Exec(
		`INSERT INTO media_assets (id, kind, uri, mime_type, duration_seconds, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Kind, a.URI, nullableString(a.MimeType), a.DurationSeconds, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return MediaAsset{}, errors.NewServerError("failed to insert asset", err)
	}
	return a, nil
}

func (s *Store) GetAsset(id string) (MediaAsset, error) {
	row := s.db.QueryRow(
		`SELECT id, kind, uri, mime_type, duration_seconds, created_at, updated_at
		 FROM media_assets WHERE id = $1`, id)

	var a MediaAsset
	var mimeType sql.NullString
	var duration sql.NullFloat64
	err := row.Scan(&a.ID, &a.Kind, &a.URI, &mimeType, &duration, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return MediaAsset{}, errors.NewNotFoundError(fmt.Sprintf("asset %s not found", id))
	}
	if err != nil {
		return MediaAsset{}, errors.NewServerError("failed to query asset", err)
	}
	a.MimeType = mimeType.String
	if duration.Valid {
		a.DurationSeconds = &duration.Float64
	}
	return a, nil
}

func (s *Store) ListAssets() ([]MediaAsset, error) {
	rows, err := s.db.Query(
		`SELECT id, kind, uri, mime_type, duration_seconds, created_at, updated_at
		 FROM media_assets ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.NewServerError("failed to list assets", err)
	}
	defer rows.Close()

	var out []MediaAsset
	for rows.Next() {
		var a MediaAsset
		var mimeType sql.NullString
		var duration sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.Kind, &a.URI, &mimeType, &duration, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, errors.NewServerError("failed to scan asset row", err)
		}
		a.MimeType = mimeType.String
		if duration.Valid {
			a.DurationSeconds = &duration.Float64
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteAsset removes the asset row. Callers MUST check AssetReferenced
// first and surface CONFLICT; this method performs no referential check of
// its own so cascading deletes (delete_assets=true) can call it directly.
func (s *Store) DeleteAsset(id string) error {
	res, err := s.db.Exec(`DELETE FROM media_assets WHERE id = $1`, id)
	if err != nil {
		return errors.NewServerError("failed to delete asset", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("asset %s not found", id))
	}
	return nil
}

// AssetReferenced reports whether any Job references the given asset id as
// its input, its output, or within payload.clip_assets.
func (s *Store) AssetReferenced(id string) (bool, error) {
	row := s.db.QueryRow(
		`SELECT count(*) FROM jobs WHERE input_asset_id = $1 OR output_asset_id = $1`, id)
	var directCount int
	if err := row.Scan(&directCount); err != nil {
		return false, errors.NewServerError("failed to check asset references", err)
	}
	if directCount > 0 {
		return true, nil
	}

	rows, err := s.db.Query(`SELECT payload FROM jobs WHERE payload IS NOT NULL`)
	if err != nil {
		return false, errors.NewServerError("failed to scan job payloads", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return false, errors.NewServerError("failed to scan job payload", err)
		}
		var payload struct {
			ClipAssets []string `json:"clip_assets"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			continue
		}
		for _, assetID := range payload.ClipAssets {
			if assetID == id {
				return true, nil
			}
		}
	}
	return false, rows.Err()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
