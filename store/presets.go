package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/livepeer/reframe-media/errors"
	"sigs.k8s.io/yaml"
)

func (s *Store) GetPreset(id string) (SubtitleStylePreset, error) {
	row := s.db.QueryRow(`SELECT id, name, description, style FROM subtitle_style_presets WHERE id = $1`, id)

	var p SubtitleStylePreset
	var description sql.NullString
	var styleRaw []byte
	err := row.Scan(&p.ID, &p.Name, &description, &styleRaw)
	if err == sql.ErrNoRows {
		return SubtitleStylePreset{}, errors.NewNotFoundError(fmt.Sprintf("preset %s not found", id))
	}
	if err != nil {
		return SubtitleStylePreset{}, errors.NewServerError("failed to query preset", err)
	}
	p.Description = description.String
	p.Style = map[string]interface{}{}
	if len(styleRaw) > 0 {
		if err := json.Unmarshal(styleRaw, &p.Style); err != nil {
			return SubtitleStylePreset{}, errors.NewServerError("failed to decode preset style", err)
		}
	}
	return p, nil
}

func (s *Store) ListPresets() ([]SubtitleStylePreset, error) {
	rows, err := s.db.Query(`SELECT id, name, description, style FROM subtitle_style_presets ORDER BY name`)
	if err != nil {
		return nil, errors.NewServerError("failed to list presets", err)
	}
	defer rows.Close()

	var out []SubtitleStylePreset
	for rows.Next() {
		var p SubtitleStylePreset
		var description sql.NullString
		var styleRaw []byte
		if err := rows.Scan(&p.ID, &p.Name, &description, &styleRaw); err != nil {
			return nil, errors.NewServerError("failed to scan preset row", err)
		}
		p.Description = description.String
		p.Style = map[string]interface{}{}
		if len(styleRaw) > 0 {
			_ = json.Unmarshal(styleRaw, &p.Style)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SeedPresetsFromYAML loads the default SubtitleStylePreset rows from a YAML
// document and inserts any that are not
// already present. Presets are otherwise managed out-of-band.
func SeedPresetsFromYAML(s *Store, doc []byte) error {
	var presets []SubtitleStylePreset
	jsonDoc, err := yaml.YAMLToJSON(doc)
	if err != nil {
		return errors.NewServerError("failed to parse preset seed YAML", err)
	}
	if err := json.Unmarshal(jsonDoc, &presets); err != nil {
		return errors.NewServerError("failed to decode preset seed data", err)
	}

	for _, p := range presets {
		if _, err := s.GetPreset(p.ID); err == nil {
			continue
		}
		styleJSON, err := json.Marshal(p.Style)
		if err != nil {
			return errors.NewServerError("failed to encode preset style", err)
		}
		if _, err := s.db.Exec(
			`INSERT INTO subtitle_style_presets (id, name, description, style) VALUES ($1, $2, $3, $4)`,
			p.ID, p.Name, nullableString(p.Description), styleJSON,
		); err != nil {
			return errors.NewServerError("failed to seed preset", err)
		}
	}
	return nil
}
