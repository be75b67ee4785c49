package main

import (
	"time"

	"clipline/internal/job"
	"clipline/internal/store"
)

// Wire shapes mirrored from the daemon API.

type jobView struct {
	ID           string     `json:"id"`
	AssetID      string     `json:"asset_id"`
	OriginalName string     `json:"original_name"`
	Status       job.Status `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type uploadView struct {
	JobID   string     `json:"job_id"`
	AssetID string     `json:"asset_id"`
	Status  job.Status `json:"status"`
}

type presetView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Config      store.PresetConfig `json:"config"`
	CreatedAt   time.Time          `json:"created_at"`
}

type shareView struct {
	Token     string     `json:"token"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at"`
	MaxViews  int        `json:"max_views"`
}

type healthView struct {
	Status string `json:"status"`
	Checks []struct {
		Name      string `json:"name"`
		Available bool   `json:"available"`
		Detail    string `json:"detail"`
	} `json:"checks"`
}
