package job

import (
	"testing"
	"time"
)

func TestStagesForSelection(t *testing.T) {
	cases := []struct {
		name string
		req  Request
		want []Stage
	}{
		{"none", Request{}, nil},
		{"whitespace edit text", Request{EditText: "   "}, nil},
		{"all", Request{EditText: "trim", RemoveSilence: true, AutoCropFace: true},
			[]Stage{StageTranslateEdits, StageRemoveSilence, StageCropFace}},
		{"crop only", Request{AutoCropFace: true}, []Stage{StageCropFace}},
		{"silence then crop keeps order", Request{RemoveSilence: true, AutoCropFace: true},
			[]Stage{StageRemoveSilence, StageCropFace}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StagesFor(tc.req)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v want %v", got, tc.want)
				}
			}
		})
	}
}

func TestStatusAdvances(t *testing.T) {
	queued := Queued()
	running0 := Running(StageTranslateEdits, 0)
	running2 := Running(StageCropFace, 0.66)

	if !queued.Advances(running0) {
		t.Fatalf("queued -> running must advance")
	}
	if !running0.Advances(running2) {
		t.Fatalf("stage index may increase")
	}
	if running2.Advances(running0) {
		t.Fatalf("stage index must never decrease")
	}
	if running2.Advances(Queued()) {
		t.Fatalf("must never revisit queued")
	}
	if !running2.Advances(Succeeded("/out.mp4")) {
		t.Fatalf("running -> succeeded must advance")
	}
	if Succeeded("x").Advances(running2) {
		t.Fatalf("terminal states admit no successor")
	}
	if Failed(StageRemoveSilence, "boom").Advances(Succeeded("x")) {
		t.Fatalf("failed is terminal")
	}
}

func TestRunningClampsPercent(t *testing.T) {
	if got := Running(StageCropFace, -0.5).Percent; got != 0 {
		t.Fatalf("negative percent should clamp to 0, got %v", got)
	}
	if got := Running(StageCropFace, 1.5).Percent; got != 1 {
		t.Fatalf("percent above 1 should clamp, got %v", got)
	}
}

func TestNewJobStartsQueued(t *testing.T) {
	req := Request{JobID: "j1", AutoCropFace: true}
	j := New(req, time.Now())
	if j.Status.State != StateQueued {
		t.Fatalf("new job should start queued")
	}
	if len(j.Stages) != 1 || j.Stages[0] != StageCropFace {
		t.Fatalf("unexpected stages: %v", j.Stages)
	}
}

func TestParseState(t *testing.T) {
	if state, ok := ParseState(" Running "); !ok || state != StateRunning {
		t.Fatalf("parse running: %v %v", state, ok)
	}
	if _, ok := ParseState("bogus"); ok {
		t.Fatalf("bogus state should not parse")
	}
}
