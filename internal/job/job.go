package job

import (
	"strings"
	"time"
)

// Stage identifies one unit of pipeline work. Stages always execute in the
// fixed order translateEdits, removeSilence, cropFace, restricted to those a
// request selects.
type Stage string

const (
	StageTranslateEdits Stage = "translateEdits"
	StageRemoveSilence  Stage = "removeSilence"
	StageCropFace       Stage = "cropFace"
)

var stageOrder = []Stage{StageTranslateEdits, StageRemoveSilence, StageCropFace}

// AllStages returns the ordered list of known stages.
func AllStages() []Stage {
	cp := make([]Stage, len(stageOrder))
	copy(cp, stageOrder)
	return cp
}

// Index returns the position of the stage in the fixed pipeline order, or -1.
func (s Stage) Index() int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// Request describes one processing submission. Immutable once the job starts.
type Request struct {
	JobID         string
	AssetID       string
	SourcePath    string
	OriginalName  string
	Duration      float64
	Width         int
	Height        int
	HasAudio      bool
	EditText      string
	RemoveSilence bool
	AutoCropFace  bool
}

// StagesFor derives the stage list from the request's options. An absent flag
// or empty edit text skips the stage entirely; it never yields a no-op run.
func StagesFor(req Request) []Stage {
	var stages []Stage
	if strings.TrimSpace(req.EditText) != "" {
		stages = append(stages, StageTranslateEdits)
	}
	if req.RemoveSilence {
		stages = append(stages, StageRemoveSilence)
	}
	if req.AutoCropFace {
		stages = append(stages, StageCropFace)
	}
	return stages
}

// State is the coarse lifecycle position of a job.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// ParseState converts a string into a known State.
func ParseState(value string) (State, bool) {
	normalized := State(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case StateQueued, StateRunning, StateSucceeded, StateFailed:
		return normalized, true
	}
	return "", false
}

// Status is the enum-with-fields a job publishes. Only the fields relevant to
// the state carry values: Stage/Percent for running, OutputPath for success,
// Stage/Reason for failure.
type Status struct {
	State      State   `json:"state"`
	Stage      Stage   `json:"stage,omitempty"`
	Percent    float64 `json:"percent"`
	OutputPath string  `json:"output_path,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// Queued returns the initial status.
func Queued() Status {
	return Status{State: StateQueued}
}

// Running returns an in-flight status for the given stage with a coarse
// percent estimate in [0, 1].
func Running(stage Stage, percent float64) Status {
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	return Status{State: StateRunning, Stage: stage, Percent: percent}
}

// Succeeded returns the terminal success status carrying the output path.
func Succeeded(outputPath string) Status {
	return Status{State: StateSucceeded, Percent: 1, OutputPath: outputPath}
}

// Failed returns the terminal failure status for the given stage.
func Failed(stage Stage, reason string) Status {
	return Status{State: StateFailed, Stage: stage, Reason: strings.TrimSpace(reason)}
}

// Terminal reports whether no further status can follow.
func (s Status) Terminal() bool {
	return s.State == StateSucceeded || s.State == StateFailed
}

// Advances reports whether next is a legal successor of s: statuses never
// revisit queued and never decrease the stage index.
func (s Status) Advances(next Status) bool {
	if s.Terminal() {
		return false
	}
	switch next.State {
	case StateQueued:
		return false
	case StateRunning:
		if s.State == StateQueued {
			return true
		}
		return next.Stage.Index() >= s.Stage.Index()
	case StateSucceeded, StateFailed:
		return true
	}
	return false
}

// Job is the record owned by the engine for one submission's lifetime.
type Job struct {
	ID        string
	Request   Request
	Stages    []Stage
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New builds a queued Job for the request.
func New(req Request, now time.Time) *Job {
	return &Job{
		ID:        req.JobID,
		Request:   req,
		Stages:    StagesFor(req),
		Status:    Queued(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
