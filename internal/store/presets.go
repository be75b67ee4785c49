package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipline/internal/services"
)

// CreatePreset stores a new named preset and returns it with its id.
func (s *Store) CreatePreset(ctx context.Context, name, description string, cfg PresetConfig) (*Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "", "", "preset name is required", nil)
	}
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal preset config: %w", err)
	}

	preset := &Preset{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Config:      cfg,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO presets (id, name, description, config_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		preset.ID,
		preset.Name,
		nullableString(preset.Description),
		string(configJSON),
		formatTimestamp(preset.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert preset: %w", err)
	}
	return preset, nil
}

// GetPreset fetches a preset by id.
func (s *Store) GetPreset(ctx context.Context, id string) (*Preset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, config_json, created_at FROM presets WHERE id = ?`, id)
	preset, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "", "", "preset "+id, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get preset: %w", err)
	}
	return preset, nil
}

// ListPresets returns all presets ordered by name.
func (s *Store) ListPresets(ctx context.Context) ([]*Preset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, config_json, created_at FROM presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var presets []*Preset
	for rows.Next() {
		preset, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		presets = append(presets, preset)
	}
	return presets, rows.Err()
}

// DeletePreset removes a preset by id.
func (s *Store) DeletePreset(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "", "", "preset "+id, nil)
	}
	return nil
}

func scanPreset(scanner interface{ Scan(dest ...any) error }) (*Preset, error) {
	var (
		id          string
		name        string
		description sql.NullString
		configJSON  string
		createdRaw  sql.NullString
	)
	if err := scanner.Scan(&id, &name, &description, &configJSON, &createdRaw); err != nil {
		return nil, err
	}
	var cfg PresetConfig
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal preset config: %w", err)
	}
	return &Preset{
		ID:          id,
		Name:        name,
		Description: description.String,
		Config:      cfg,
		CreatedAt:   parseTimestamp(createdRaw),
	}, nil
}
