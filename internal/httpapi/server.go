package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"clipline/internal/asset"
	"clipline/internal/config"
	"clipline/internal/job"
	"clipline/internal/logging"
	"clipline/internal/store"
)

// Engine is the slice of the processing engine the API needs.
type Engine interface {
	Submit(ctx context.Context, req job.Request) (*job.Job, error)
	Subscribe(jobID string) (<-chan job.Status, func())
	Status(jobID string) (job.Status, bool)
}

// Ingester lands uploaded files and probes their metadata.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader, originalName string) (asset.Asset, error)
}

// Server exposes the processing pipeline over HTTP.
type Server struct {
	cfg      *config.Config
	engine   Engine
	ingester Ingester
	store    *store.Store
	logger   *slog.Logger
}

// NewServer wires the API against the given engine and store.
func NewServer(cfg *config.Config, engine Engine, ingester Ingester, s *store.Store, logger *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		engine:   engine,
		ingester: ingester,
		store:    s,
		logger:   logging.NewComponentLogger(logger, "httpapi"),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("GET /api/video/{id}/status", s.handleStatus)
	mux.HandleFunc("GET /api/video/{id}/status/stream", s.handleStatusStream)
	mux.HandleFunc("GET /api/video/{id}", s.handleVideo)
	mux.HandleFunc("POST /api/video/{id}/share", s.handleCreateShare)
	mux.HandleFunc("GET /public/video/{token}", s.handlePublicVideo)
	mux.HandleFunc("GET /api/presets", s.handleListPresets)
	mux.HandleFunc("POST /api/presets", s.handleCreatePreset)
	mux.HandleFunc("DELETE /api/presets/{id}", s.handleDeletePreset)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return mux
}
