package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipline/internal/broadcast"
	"clipline/internal/config"
	"clipline/internal/editplan"
	"clipline/internal/facecrop"
	"clipline/internal/fileutil"
	"clipline/internal/job"
	"clipline/internal/logging"
	"clipline/internal/services"
	"clipline/internal/silence"
	"clipline/internal/store"
)

// Translator turns free-text edit instructions into validated operations.
type Translator interface {
	Translate(ctx context.Context, editText string, duration float64) ([]editplan.Operation, error)
}

// Segmenter finds the audible regions of a clip.
type Segmenter interface {
	KeepSegments(ctx context.Context, path string, duration float64) ([]silence.Segment, error)
}

// CropEstimator picks the portrait crop region for a clip.
type CropEstimator interface {
	Estimate(ctx context.Context, videoPath string, duration float64, frameWidth, frameHeight int) (facecrop.Region, error)
}

// Executor runs the media transformations each stage needs.
type Executor interface {
	ApplyOperations(ctx context.Context, in, out string, ops []editplan.Operation, duration float64, hasAudio bool) error
	ExtractJoin(ctx context.Context, in, out string, segments []silence.Segment) error
	CropScale(ctx context.Context, in, out string, region facecrop.Region) error
}

// Engine owns job execution: one goroutine per submitted job, driving its
// stages in order and publishing every status transition. Submission is
// fire-and-forget; callers observe progress through the broadcaster or the
// mirrored store rows.
type Engine struct {
	cfg         *config.Config
	translator  Translator
	segmenter   Segmenter
	cropper     CropEstimator
	executor    Executor
	store       *store.Store
	broadcaster *broadcast.Broadcaster
	logger      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started map[string]struct{}
}

// Deps bundles the stage implementations the engine drives.
type Deps struct {
	Translator    Translator
	Segmenter     Segmenter
	CropEstimator CropEstimator
	Executor      Executor
}

// New constructs an Engine. The broadcaster is created internally; access it
// through Subscribe and Status.
func New(cfg *config.Config, s *store.Store, deps Deps, logger *slog.Logger) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		cfg:         cfg,
		translator:  deps.Translator,
		segmenter:   deps.Segmenter,
		cropper:     deps.CropEstimator,
		executor:    deps.Executor,
		store:       s,
		broadcaster: broadcast.New(),
		logger:      logging.NewComponentLogger(logger, "engine"),
		ctx:         ctx,
		cancel:      cancel,
		started:     make(map[string]struct{}),
	}
}

// Submit validates the request, records the job, publishes Queued, and kicks
// off its goroutine. It returns as soon as Queued is observable; processing
// continues in the background.
func (e *Engine) Submit(ctx context.Context, req job.Request) (*job.Job, error) {
	if strings.TrimSpace(req.SourcePath) == "" {
		return nil, services.Wrap(services.ErrValidation, "submit", "", "source path is required", nil)
	}
	if req.Duration <= 0 {
		return nil, services.Wrap(services.ErrValidation, "submit", "", "source duration is required", nil)
	}
	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}

	e.mu.Lock()
	if _, dup := e.started[req.JobID]; dup {
		e.mu.Unlock()
		return nil, services.Wrap(services.ErrValidation, "submit", "", "job "+req.JobID+" already submitted", nil)
	}
	e.started[req.JobID] = struct{}{}
	e.mu.Unlock()

	j := job.New(req, time.Now().UTC())
	if e.store != nil {
		if err := e.store.InsertJob(ctx, j); err != nil {
			e.mu.Lock()
			delete(e.started, req.JobID)
			e.mu.Unlock()
			return nil, err
		}
	}
	e.broadcaster.Publish(j.ID, j.Status)
	e.logger.Info("job submitted",
		logging.String(logging.FieldJobID, j.ID),
		logging.Int("stages", len(j.Stages)),
	)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(logging.WithJobID(e.ctx, j.ID), j)
	}()
	return j, nil
}

// Subscribe attaches a status listener for the job. See broadcast.Broadcaster.
func (e *Engine) Subscribe(jobID string) (<-chan job.Status, func()) {
	return e.broadcaster.Subscribe(jobID)
}

// Status returns the latest published status for the job.
func (e *Engine) Status(jobID string) (job.Status, bool) {
	return e.broadcaster.Latest(jobID)
}

// Stop cancels in-flight jobs and waits for their goroutines, bounded by ctx.
func (e *Engine) Stop(ctx context.Context) error {
	e.cancel()
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// publish pushes the status to subscribers and mirrors it onto the job row.
func (e *Engine) publish(jobID string, status job.Status) {
	e.broadcaster.Publish(jobID, status)
	if e.store != nil {
		if err := e.store.UpdateJobStatus(context.Background(), jobID, status); err != nil {
			e.logger.Warn("mirror status to store failed",
				logging.String(logging.FieldJobID, jobID),
				logging.Error(err),
			)
		}
	}
}

// outputPath is the canonical location of a finished job's clip.
func (e *Engine) outputPath(j *job.Job) string {
	ext := filepath.Ext(j.Request.SourcePath)
	return filepath.Join(e.cfg.Paths.ProcessedDir, e.cfg.Media.ProcessedPrefix+j.ID+ext)
}

// intermediatePath names the work file a stage writes.
func (e *Engine) intermediatePath(j *job.Job, stageIndex int) string {
	ext := filepath.Ext(j.Request.SourcePath)
	return filepath.Join(e.cfg.Paths.WorkDir, j.ID+"_stage"+strconv.Itoa(stageIndex)+ext)
}

// copyDirect handles a zero-stage job: the output is a byte-identical copy
// of the source.
func (e *Engine) copyDirect(j *job.Job) error {
	return fileutil.CopyFileVerified(j.Request.SourcePath, e.outputPath(j))
}

// moveOutput lands the last intermediate at the canonical output path.
func (e *Engine) moveOutput(from, to string) error {
	return fileutil.MoveFile(from, to)
}
