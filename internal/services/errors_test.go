package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("exit status 1")
	err := Wrap(ErrExternalTool, "cropFace", "ffmpeg", "crop failed", base)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker")
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive")
	}
}

func TestWrapNilMarkerDefaultsToExternalTool(t *testing.T) {
	err := Wrap(nil, "removeSilence", "", "boom", nil)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("nil marker should default to ErrExternalTool")
	}
}

func TestReasonStripsSentinelPrefix(t *testing.T) {
	err := Wrap(ErrValidation, "translateEdits", "", "translation-unparseable", nil)
	if got := Reason(err); got != "translateEdits: translation-unparseable" {
		t.Fatalf("unexpected reason: %q", got)
	}
	if Reason(nil) != "" {
		t.Fatalf("nil error should produce empty reason")
	}
}
