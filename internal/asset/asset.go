package asset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipline/internal/config"
	"clipline/internal/logging"
	"clipline/internal/media/ffprobe"
	"clipline/internal/services"
)

// Asset is an ingested source clip with its probed metadata.
type Asset struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	Path         string    `json:"path"`
	Extension    string    `json:"extension"`
	SizeBytes    int64     `json:"size_bytes"`
	Duration     float64   `json:"duration"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	FrameRate    float64   `json:"frame_rate"`
	Format       string    `json:"format"`
	HasAudio     bool      `json:"has_audio"`
	CreatedAt    time.Time `json:"created_at"`
}

// Prober inspects a media file, matching ffprobe.Inspect.
type Prober func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Ingester validates uploads, lands them in the upload directory under a
// fresh id, and probes their metadata.
type Ingester struct {
	cfg    *config.Config
	probe  Prober
	logger *slog.Logger
}

// NewIngester constructs an Ingester using ffprobe for metadata.
func NewIngester(cfg *config.Config, logger *slog.Logger, opts ...Option) *Ingester {
	ing := &Ingester{
		cfg:    cfg,
		probe:  ffprobe.Inspect,
		logger: logging.NewComponentLogger(logger, "asset"),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Option customizes Ingester construction.
type Option func(*Ingester)

// WithProber replaces the metadata probe, used by tests.
func WithProber(probe Prober) Option {
	return func(i *Ingester) {
		if probe != nil {
			i.probe = probe
		}
	}
}

// Ingest copies the reader into the upload directory and returns the probed
// asset. The extension must be on the configured allow list and the payload
// must fit within the configured upload cap.
func (i *Ingester) Ingest(ctx context.Context, r io.Reader, originalName string) (Asset, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !i.cfg.ExtensionAllowed(ext) {
		return Asset{}, services.Wrap(services.ErrValidation, "ingest", "",
			fmt.Sprintf("extension %q not allowed", ext), nil)
	}

	id := uuid.NewString()
	path := filepath.Join(i.cfg.Paths.UploadDir, id+ext)
	size, err := i.save(r, path)
	if err != nil {
		return Asset{}, err
	}

	probe, err := i.probe(ctx, i.cfg.Media.FFprobeCommand, path)
	if err != nil {
		os.Remove(path)
		return Asset{}, services.Wrap(services.ErrExternalTool, "ingest", "ffprobe", "probe failed", err)
	}
	duration := probe.DurationSeconds()
	if duration <= 0 {
		os.Remove(path)
		return Asset{}, services.Wrap(services.ErrValidation, "ingest", "", "file has no playable duration", nil)
	}
	width, height := probe.VideoSize()

	a := Asset{
		ID:           id,
		OriginalName: filepath.Base(originalName),
		Path:         path,
		Extension:    ext,
		SizeBytes:    size,
		Duration:     duration,
		Width:        width,
		Height:       height,
		FrameRate:    probe.FrameRate(),
		Format:       probe.Format.FormatName,
		HasAudio:     probe.AudioStreamCount() > 0,
		CreatedAt:    time.Now().UTC(),
	}
	i.logger.Info("ingested asset",
		logging.String("asset_id", a.ID),
		logging.String("name", a.OriginalName),
		logging.Float64("duration", a.Duration),
		logging.Int64("size_bytes", a.SizeBytes),
	)
	return a, nil
}

// save streams the payload to disk, enforcing the upload size cap without
// buffering the whole file in memory.
func (i *Ingester) save(r io.Reader, path string) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "ingest", "", "create upload file", err)
	}
	defer f.Close()

	limit := i.cfg.Media.MaxUploadBytes
	var size int64
	if limit > 0 {
		size, err = io.Copy(f, io.LimitReader(r, limit+1))
	} else {
		size, err = io.Copy(f, r)
	}
	if err != nil {
		os.Remove(path)
		return 0, services.Wrap(services.ErrExternalTool, "ingest", "", "write upload file", err)
	}
	if limit > 0 && size > limit {
		os.Remove(path)
		return 0, services.Wrap(services.ErrValidation, "ingest", "",
			fmt.Sprintf("upload exceeds %d byte limit", limit), nil)
	}
	if size == 0 {
		os.Remove(path)
		return 0, services.Wrap(services.ErrValidation, "ingest", "", "empty upload", nil)
	}
	return size, nil
}
