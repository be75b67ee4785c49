package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"clipline/internal/job"
	"clipline/internal/logging"
	"clipline/internal/preflight"
	"clipline/internal/store"
)

// uploadResponse acknowledges an accepted submission.
type uploadResponse struct {
	JobID   string     `json:"job_id"`
	AssetID string     `json:"asset_id"`
	Status  job.Status `json:"status"`
}

// handleUpload accepts a multipart video upload plus processing options and
// submits the resulting job. Options left blank fall back to the selected
// preset; anything given explicitly wins over the preset.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !preflight.FreeSpaceOK(s.cfg.Paths.UploadDir, s.cfg.Media.MinFreeBytes) {
		s.writeJSON(w, http.StatusInsufficientStorage, errorBody{Error: "insufficient free disk space"})
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed multipart request"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "file field is required"})
		return
	}
	defer file.Close()

	options, err := s.resolveOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	a, err := s.ingester.Ingest(r.Context(), file, header.Filename)
	if err != nil {
		s.writeError(w, err)
		return
	}

	req := job.Request{
		AssetID:       a.ID,
		SourcePath:    a.Path,
		OriginalName:  a.OriginalName,
		Duration:      a.Duration,
		Width:         a.Width,
		Height:        a.Height,
		HasAudio:      a.HasAudio,
		EditText:      options.EditText,
		RemoveSilence: options.RemoveSilence,
		AutoCropFace:  options.AutoCropFace,
	}
	j, err := s.engine.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("upload accepted",
		logging.String(logging.FieldJobID, j.ID),
		logging.String("asset_id", a.ID),
		logging.String("name", a.OriginalName),
	)
	s.writeJSON(w, http.StatusAccepted, uploadResponse{
		JobID:   j.ID,
		AssetID: a.ID,
		Status:  j.Status,
	})
}

// resolveOptions merges explicit form fields over preset defaults.
func (s *Server) resolveOptions(r *http.Request) (store.PresetConfig, error) {
	var options store.PresetConfig
	if presetID := strings.TrimSpace(r.FormValue("preset_id")); presetID != "" {
		preset, err := s.store.GetPreset(r.Context(), presetID)
		if err != nil {
			return options, err
		}
		options = preset.Config
	}

	if text := r.FormValue("edit_text"); strings.TrimSpace(text) != "" {
		options.EditText = text
	}
	if raw := r.FormValue("remove_silence"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return options, badField("remove_silence")
		}
		options.RemoveSilence = value
	}
	if raw := r.FormValue("auto_crop_face"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return options, badField("auto_crop_face")
		}
		options.AutoCropFace = value
	}
	return options, nil
}
