package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clipline/internal/asset"
	"clipline/internal/config"
	"clipline/internal/httpapi"
	"clipline/internal/job"
	"clipline/internal/logging"
	"clipline/internal/store"
	"clipline/internal/testsupport"
)

type fakeEngine struct {
	submitted []job.Request
	submitErr error
	statuses  map[string]job.Status
	updates   chan job.Status
}

func (f *fakeEngine) Submit(ctx context.Context, req job.Request) (*job.Job, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, req)
	if req.JobID == "" {
		req.JobID = "job-1"
	}
	j := job.New(req, time.Now().UTC())
	return j, nil
}

func (f *fakeEngine) Subscribe(jobID string) (<-chan job.Status, func()) {
	if f.updates != nil {
		return f.updates, func() {}
	}
	ch := make(chan job.Status)
	close(ch)
	return ch, func() {}
}

func (f *fakeEngine) Status(jobID string) (job.Status, bool) {
	status, ok := f.statuses[jobID]
	return status, ok
}

type fakeIngester struct {
	asset asset.Asset
	err   error
}

func (f *fakeIngester) Ingest(ctx context.Context, r io.Reader, originalName string) (asset.Asset, error) {
	if f.err != nil {
		return asset.Asset{}, f.err
	}
	io.Copy(io.Discard, r)
	a := f.asset
	a.OriginalName = originalName
	return a, nil
}

type fixture struct {
	cfg      *config.Config
	store    *store.Store
	engine   *fakeEngine
	ingester *fakeIngester
	server   *httpapi.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	sourcePath := filepath.Join(cfg.Paths.UploadDir, "clip.mp4")
	testsupport.WriteFile(t, sourcePath, 64)

	engine := &fakeEngine{statuses: map[string]job.Status{}}
	ingester := &fakeIngester{asset: asset.Asset{
		ID:       "asset-1",
		Path:     sourcePath,
		Duration: 30,
		Width:    1920,
		Height:   1080,
		HasAudio: true,
	}}
	server := httpapi.NewServer(cfg, engine, ingester, st, logging.NewNop())
	return &fixture{cfg: cfg, store: st, engine: engine, ingester: ingester, server: server}
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "clip.mp4")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("fake video bytes"))
	for name, value := range fields {
		writer.WriteField(name, value)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadAcceptsJob(t *testing.T) {
	fx := newFixture(t)

	body, contentType := multipartBody(t, map[string]string{
		"edit_text":      "trim the first 5 seconds",
		"remove_silence": "true",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		JobID   string     `json:"job_id"`
		AssetID string     `json:"asset_id"`
		Status  job.Status `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID == "" || resp.AssetID != "asset-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Status.State != job.StateQueued {
		t.Fatalf("expected queued status, got %s", resp.Status.State)
	}
	if len(fx.engine.submitted) != 1 {
		t.Fatalf("expected one submission, got %d", len(fx.engine.submitted))
	}
	submitted := fx.engine.submitted[0]
	if submitted.EditText != "trim the first 5 seconds" || !submitted.RemoveSilence {
		t.Fatalf("options not carried into request: %+v", submitted)
	}
	if submitted.Width != 1920 || submitted.Height != 1080 || !submitted.HasAudio {
		t.Fatalf("asset metadata not carried into request: %+v", submitted)
	}
	if submitted.OriginalName != "clip.mp4" {
		t.Fatalf("unexpected original name %q", submitted.OriginalName)
	}
}

func TestUploadMergesPresetOptions(t *testing.T) {
	fx := newFixture(t)
	preset, err := fx.store.CreatePreset(context.Background(), "shorts", "", store.PresetConfig{
		RemoveSilence: true,
		AutoCropFace:  true,
	})
	if err != nil {
		t.Fatalf("create preset: %v", err)
	}

	// Explicit remove_silence=false must win over the preset.
	body, contentType := multipartBody(t, map[string]string{
		"preset_id":      preset.ID,
		"remove_silence": "false",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	submitted := fx.engine.submitted[0]
	if submitted.RemoveSilence {
		t.Fatal("explicit remove_silence=false should beat the preset")
	}
	if !submitted.AutoCropFace {
		t.Fatal("auto_crop_face should come from the preset")
	}
}

func TestUploadRejectsBadBoolField(t *testing.T) {
	fx := newFixture(t)
	body, contentType := multipartBody(t, map[string]string{
		"remove_silence": "definitely",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(fx.engine.submitted) != 0 {
		t.Fatal("invalid request must not be submitted")
	}
}

func TestUploadUnknownPreset(t *testing.T) {
	fx := newFixture(t)
	body, contentType := multipartBody(t, map[string]string{
		"preset_id": "missing",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStatusPrefersLiveEngine(t *testing.T) {
	fx := newFixture(t)
	fx.engine.statuses["job-1"] = job.Running(job.StageRemoveSilence, 0.5)

	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/video/job-1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status job.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.State != job.StateRunning || status.Stage != job.StageRemoveSilence {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestStatusFallsBackToStore(t *testing.T) {
	fx := newFixture(t)
	j := testsupport.NewJob(t, fx.store, job.Request{
		JobID:      "job-stored",
		AssetID:    "asset-1",
		SourcePath: fx.ingester.asset.Path,
		Duration:   30,
	})
	if err := fx.store.UpdateJobStatus(context.Background(), j.ID, job.Failed(job.StageRemoveSilence, "no-audible-content")); err != nil {
		t.Fatalf("update status: %v", err)
	}

	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/video/job-stored/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status job.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.State != job.StateFailed || status.Reason != "no-audible-content" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestStatusUnknownJob(t *testing.T) {
	fx := newFixture(t)
	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/video/nope/status", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStatusStreamEmitsUntilTerminal(t *testing.T) {
	fx := newFixture(t)
	fx.engine.statuses["job-1"] = job.Queued()

	updates := make(chan job.Status, 4)
	updates <- job.Queued()
	updates <- job.Running(job.StageTranslateEdits, 0)
	updates <- job.Succeeded("/tmp/out.mp4")
	close(updates)
	fx.engine.updates = updates

	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/video/job-1/status/stream", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
	var events []job.Status
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var status job.Status
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &status); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		events = append(events, status)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if !events[len(events)-1].Terminal() {
		t.Fatalf("last event should be terminal, got %+v", events[len(events)-1])
	}
}

func TestStatusStreamStoredTerminalJob(t *testing.T) {
	fx := newFixture(t)
	j := testsupport.NewJob(t, fx.store, job.Request{
		JobID:      "job-done",
		AssetID:    "asset-1",
		SourcePath: fx.ingester.asset.Path,
		Duration:   30,
	})
	if err := fx.store.UpdateJobStatus(context.Background(), j.ID, job.Succeeded("/tmp/out.mp4")); err != nil {
		t.Fatalf("update status: %v", err)
	}

	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/video/job-done/status/stream", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if count := strings.Count(rec.Body.String(), "data: "); count != 1 {
		t.Fatalf("expected exactly one event, got %d", count)
	}
}

func TestStatusStreamStoredRunningJobKeepsStreaming(t *testing.T) {
	fx := newFixture(t)
	j := testsupport.NewJob(t, fx.store, job.Request{
		JobID:      "job-resume",
		AssetID:    "asset-1",
		SourcePath: fx.ingester.asset.Path,
		Duration:   30,
	})
	if err := fx.store.UpdateJobStatus(context.Background(), j.ID, job.Running(job.StageTranslateEdits, 0)); err != nil {
		t.Fatalf("update status: %v", err)
	}

	// The engine does not know the job yet, but the mirrored row is still
	// running: the stream must subscribe and run to a terminal frame rather
	// than emit the stored status once and close.
	updates := make(chan job.Status, 2)
	updates <- job.Running(job.StageTranslateEdits, 0)
	updates <- job.Succeeded("/tmp/out.mp4")
	close(updates)
	fx.engine.updates = updates

	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/video/job-resume/status/stream", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var events []job.Status
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var status job.Status
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &status); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		events = append(events, status)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %s", len(events), rec.Body.String())
	}
	if !events[len(events)-1].Terminal() {
		t.Fatalf("stream must end on a terminal frame, got %+v", events[len(events)-1])
	}
}

func TestVideoServesSourceUntilSucceeded(t *testing.T) {
	fx := newFixture(t)
	testsupport.NewJob(t, fx.store, job.Request{
		JobID:      "job-run",
		AssetID:    "asset-1",
		SourcePath: fx.ingester.asset.Path,
		Duration:   30,
	})

	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/video/job-run", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	source, err := os.ReadFile(fx.ingester.asset.Path)
	if err != nil {
		t.Fatalf("read source: %v", err)
	}
	if !bytes.Equal(rec.Body.Bytes(), source) {
		t.Fatal("expected the source bytes while the job is unfinished")
	}
}

func TestVideoServesOutputAfterSuccess(t *testing.T) {
	fx := newFixture(t)
	outputPath := filepath.Join(fx.cfg.Paths.ProcessedDir, "processed_job-ok.mp4")
	if err := os.WriteFile(outputPath, []byte("processed bytes"), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}
	j := testsupport.NewJob(t, fx.store, job.Request{
		JobID:      "job-ok",
		AssetID:    "asset-1",
		SourcePath: fx.ingester.asset.Path,
		Duration:   30,
	})
	if err := fx.store.UpdateJobStatus(context.Background(), j.ID, job.Succeeded(outputPath)); err != nil {
		t.Fatalf("update status: %v", err)
	}

	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/video/job-ok", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "processed bytes" {
		t.Fatalf("expected processed output, got %q", rec.Body.String())
	}
}

func TestShareLifecycle(t *testing.T) {
	fx := newFixture(t)
	outputPath := filepath.Join(fx.cfg.Paths.ProcessedDir, "processed_job-share.mp4")
	if err := os.WriteFile(outputPath, []byte("shared bytes"), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}
	j := testsupport.NewJob(t, fx.store, job.Request{
		JobID:      "job-share",
		AssetID:    "asset-1",
		SourcePath: fx.ingester.asset.Path,
		Duration:   30,
	})
	if err := fx.store.UpdateJobStatus(context.Background(), j.ID, job.Succeeded(outputPath)); err != nil {
		t.Fatalf("update status: %v", err)
	}

	shareBody := strings.NewReader(`{"max_views": 1}`)
	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/video/job-share/share", shareBody))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var share struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &share); err != nil {
		t.Fatalf("decode share: %v", err)
	}
	if share.Token == "" || share.URL != "/public/video/"+share.Token {
		t.Fatalf("unexpected share response %+v", share)
	}

	rec = httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, share.URL, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "shared bytes" {
		t.Fatalf("expected shared output, got %d %q", rec.Code, rec.Body.String())
	}

	// The single allowed view is spent.
	rec = httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, share.URL, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after views exhausted, got %d", rec.Code)
	}
}

func TestShareRequiresFinishedJob(t *testing.T) {
	fx := newFixture(t)
	testsupport.NewJob(t, fx.store, job.Request{
		JobID:      "job-pending",
		AssetID:    "asset-1",
		SourcePath: fx.ingester.asset.Path,
		Duration:   30,
	})

	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/video/job-pending/share", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPresetCRUD(t *testing.T) {
	fx := newFixture(t)

	createBody := strings.NewReader(`{"name":"shorts","description":"vertical clips","config":{"auto_crop_face":true}}`)
	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/presets", createBody))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID     string             `json:"id"`
		Name   string             `json:"name"`
		Config store.PresetConfig `json:"config"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode preset: %v", err)
	}
	if created.ID == "" || created.Name != "shorts" || !created.Config.AutoCropFace {
		t.Fatalf("unexpected preset %+v", created)
	}

	rec = httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/presets", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), created.ID) {
		t.Fatal("created preset missing from list")
	}

	rec = httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/presets/"+created.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/presets/"+created.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a deleted preset, got %d", rec.Code)
	}
}

func TestCreatePresetRejectsMalformedBody(t *testing.T) {
	fx := newFixture(t)
	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/presets", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListJobsPrefersLiveStatus(t *testing.T) {
	fx := newFixture(t)
	testsupport.NewJob(t, fx.store, job.Request{
		JobID:      "job-live",
		AssetID:    "asset-1",
		SourcePath: fx.ingester.asset.Path,
		Duration:   30,
	})
	fx.engine.statuses["job-live"] = job.Running(job.StageCropFace, 0.66)

	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var views []struct {
		ID     string     `json:"id"`
		Status job.Status `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode jobs: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected one job, got %d", len(views))
	}
	if views[0].Status.State != job.StateRunning || views[0].Status.Stage != job.StageCropFace {
		t.Fatalf("expected the engine's live status, got %+v", views[0].Status)
	}
}

func TestHealthReportsToolAvailability(t *testing.T) {
	fx := newFixture(t)
	rec := httptest.NewRecorder()
	fx.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Status string `json:"status"`
		Checks []struct {
			Name      string `json:"name"`
			Available bool   `json:"available"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if resp.Status != "ok" && resp.Status != "degraded" {
		t.Fatalf("unexpected status %q", resp.Status)
	}
	if len(resp.Checks) == 0 {
		t.Fatal("expected at least one dependency check")
	}
	for _, check := range resp.Checks {
		if check.Name == "" {
			t.Fatalf("check missing a name: %+v", resp.Checks)
		}
	}
}
