package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"clipline/internal/logging"
	"clipline/internal/services"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if status, ok := s.engine.Status(jobID); ok {
		s.writeJSON(w, http.StatusOK, status)
		return
	}
	// Fall back to the mirrored row for jobs from before a restart.
	record, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if record == nil {
		s.writeError(w, services.Wrap(services.ErrNotFound, "", "", "job "+jobID, nil))
		return
	}
	s.writeJSON(w, http.StatusOK, record.Status)
}

// handleStatusStream serves job status over server-sent events: the latest
// status immediately, then every update, one JSON object per event. The
// stream ends when the job reaches a terminal state or the client leaves.
func (s *Server) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "streaming unsupported"})
		return
	}

	if _, known := s.engine.Status(jobID); !known {
		record, err := s.store.GetJob(r.Context(), jobID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if record == nil {
			s.writeError(w, services.Wrap(services.ErrNotFound, "", "", "job "+jobID, nil))
			return
		}
		// A mirrored row that already reached a terminal state gets its
		// status emitted once; anything else falls through to a live
		// subscription so the stream still ends on a terminal frame.
		if record.Status.Terminal() {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			s.writeEvent(w, flusher, record.Status)
			return
		}
	}

	updates, cancel := s.engine.Subscribe(jobID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for {
		select {
		case status, open := <-updates:
			if !open {
				return
			}
			s.writeEvent(w, flusher, status)
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) writeEvent(w http.ResponseWriter, flusher http.Flusher, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("encode event failed", logging.Error(err))
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
