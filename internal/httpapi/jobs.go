package httpapi

import (
	"net/http"
	"time"

	"clipline/internal/job"
	"clipline/internal/services"
	"clipline/internal/store"
)

// jobView is the list/detail representation of a job.
type jobView struct {
	ID           string     `json:"id"`
	AssetID      string     `json:"asset_id"`
	OriginalName string     `json:"original_name,omitempty"`
	Status       job.Status `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toJobView(record *store.JobRecord) jobView {
	return jobView{
		ID:           record.ID,
		AssetID:      record.AssetID,
		OriginalName: record.OriginalName,
		Status:       record.Status,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListJobs(r.Context(), 200)
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]jobView, 0, len(records))
	for _, record := range records {
		// Prefer live status over the mirrored row when available.
		if latest, ok := s.engine.Status(record.ID); ok {
			record.Status = latest
		}
		views = append(views, toJobView(record))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func badField(name string) error {
	return services.Wrap(services.ErrValidation, "", "", "invalid value for "+name, nil)
}
