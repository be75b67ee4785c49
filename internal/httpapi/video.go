package httpapi

import (
	"net/http"
	"time"

	"clipline/internal/job"
	"clipline/internal/services"
)

// handleVideo serves a job's clip: the processed output once the job has
// succeeded, otherwise the original source.
func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	record, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if record == nil {
		s.writeError(w, services.Wrap(services.ErrNotFound, "", "", "job "+jobID, nil))
		return
	}

	path := record.SourcePath
	if record.Status.State == job.StateSucceeded && record.Status.OutputPath != "" {
		path = record.Status.OutputPath
	}
	http.ServeFile(w, r, path)
}

type shareRequest struct {
	ExpiresInSeconds int64 `json:"expires_in_seconds"`
	MaxViews         int   `json:"max_views"`
}

type shareResponse struct {
	Token     string     `json:"token"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	MaxViews  int        `json:"max_views,omitempty"`
}

// handleCreateShare mints a public playback token for a finished job.
func (s *Server) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	record, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if record == nil {
		s.writeError(w, services.Wrap(services.ErrNotFound, "", "", "job "+jobID, nil))
		return
	}
	status := record.Status
	if latest, ok := s.engine.Status(jobID); ok {
		status = latest
	}
	if status.State != job.StateSucceeded {
		s.writeError(w, services.Wrap(services.ErrValidation, "", "", "job has no finished output to share", nil))
		return
	}

	var body shareRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSONBody(r, &body); err != nil {
			s.writeError(w, err)
			return
		}
	}
	var expiresAt *time.Time
	if body.ExpiresInSeconds > 0 {
		t := time.Now().UTC().Add(time.Duration(body.ExpiresInSeconds) * time.Second)
		expiresAt = &t
	}

	token, err := s.store.CreateShareToken(r.Context(), jobID, expiresAt, body.MaxViews)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, shareResponse{
		Token:     token.Token,
		URL:       "/public/video/" + token.Token,
		ExpiresAt: token.ExpiresAt,
		MaxViews:  token.MaxViews,
	})
}

// handlePublicVideo redeems a share token and serves the job's output.
func (s *Server) handlePublicVideo(w http.ResponseWriter, r *http.Request) {
	token, err := s.store.RedeemShareToken(r.Context(), r.PathValue("token"), time.Now().UTC())
	if err != nil {
		s.writeError(w, err)
		return
	}
	record, err := s.store.GetJob(r.Context(), token.JobID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if record == nil || record.Status.OutputPath == "" {
		s.writeError(w, services.Wrap(services.ErrNotFound, "", "", "shared output", nil))
		return
	}
	http.ServeFile(w, r, record.Status.OutputPath)
}
