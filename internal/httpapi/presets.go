package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"clipline/internal/services"
	"clipline/internal/store"
)

type presetView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Config      store.PresetConfig `json:"config"`
	CreatedAt   time.Time          `json:"created_at"`
}

type presetRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Config      store.PresetConfig `json:"config"`
}

func toPresetView(p *store.Preset) presetView {
	return presetView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Config:      p.Config,
		CreatedAt:   p.CreatedAt,
	}
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.store.ListPresets(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]presetView, 0, len(presets))
	for _, preset := range presets {
		views = append(views, toPresetView(preset))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	var body presetRequest
	if err := decodeJSONBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	preset, err := s.store.CreatePreset(r.Context(), body.Name, body.Description, body.Config)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toPresetView(preset))
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePreset(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

// decodeJSONBody parses a JSON request body, rejecting unknown garbage with
// a validation error rather than a 500.
func decodeJSONBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return services.Wrap(services.ErrValidation, "", "", "malformed JSON body", err)
	}
	return nil
}
