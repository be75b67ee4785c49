package httpapi

import (
	"net/http"

	"clipline/internal/preflight"
)

type healthCheck struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}

type healthResponse struct {
	Status string        `json:"status"`
	Checks []healthCheck `json:"checks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	statuses := preflight.CheckSystemDeps(s.cfg)
	checks := make([]healthCheck, 0, len(statuses))
	degraded := false
	for _, status := range statuses {
		checks = append(checks, healthCheck{
			Name:      status.Name,
			Available: status.Available,
			Detail:    status.Detail,
		})
		if !status.Available && !status.Optional {
			degraded = true
		}
	}
	overall := "ok"
	if degraded {
		overall = "degraded"
	}
	s.writeJSON(w, http.StatusOK, healthResponse{Status: overall, Checks: checks})
}
