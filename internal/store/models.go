package store

import (
	"time"

	"clipline/internal/job"
)

// JobRecord is the persisted view of a job: its immutable request plus the
// latest published status.
type JobRecord struct {
	ID           string
	AssetID      string
	SourcePath   string
	OriginalName string
	Request      job.Request
	Status       job.Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PresetConfig carries the processing options a preset applies as defaults.
// Explicit request fields always win over preset values.
type PresetConfig struct {
	EditText      string `json:"edit_text,omitempty"`
	RemoveSilence bool   `json:"remove_silence,omitempty"`
	AutoCropFace  bool   `json:"auto_crop_face,omitempty"`
}

// Preset is a named, reusable set of processing options.
type Preset struct {
	ID          string
	Name        string
	Description string
	Config      PresetConfig
	CreatedAt   time.Time
}

// ShareToken grants public playback of a finished job's output, optionally
// bounded by an expiry time and a view cap (zero means unlimited).
type ShareToken struct {
	ID        int64
	JobID     string
	Token     string
	ExpiresAt *time.Time
	MaxViews  int
	Views     int
	CreatedAt time.Time
}

// Expired reports whether the token's expiry has passed at the given time.
func (t ShareToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// Exhausted reports whether the view cap has been reached.
func (t ShareToken) Exhausted() bool {
	return t.MaxViews > 0 && t.Views >= t.MaxViews
}
