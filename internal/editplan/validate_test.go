package editplan

import (
	"errors"
	"testing"

	"clipline/internal/logging"
	"clipline/internal/services"
)

func TestValidateOpsClampsTrimBounds(t *testing.T) {
	ops, err := ValidateOps([]Operation{
		{Kind: KindTrim, Start: -2, End: 45},
	}, 30, logging.NewNop())
	if err != nil {
		t.Fatalf("ValidateOps failed: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("expected one operation, got %v", ops)
	}
	if ops[0].Start != 0 || ops[0].End != 30 {
		t.Fatalf("expected clamp to [0,30), got [%v,%v)", ops[0].Start, ops[0].End)
	}
}

func TestValidateOpsRejectsTrimBeyondClip(t *testing.T) {
	_, err := ValidateOps([]Operation{
		{Kind: KindTrim, Start: 31, End: 40},
	}, 30, logging.NewNop())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateOpsTracksRemainingDuration(t *testing.T) {
	// After trimming to ten seconds, a trim starting at twelve is out of
	// range even though the source was thirty seconds long.
	_, err := ValidateOps([]Operation{
		{Kind: KindTrim, Start: 0, End: 10},
		{Kind: KindTrim, Start: 12, End: 15},
	}, 30, logging.NewNop())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateOpsSpeedFactorBounds(t *testing.T) {
	for _, factor := range []float64{0, -1, 8.01, 100} {
		if _, err := ValidateOps([]Operation{{Kind: KindSpeed, Factor: factor}}, 30, logging.NewNop()); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("factor %v: expected validation error, got %v", factor, err)
		}
	}
	for _, factor := range []float64{0.25, 1, 8} {
		if _, err := ValidateOps([]Operation{{Kind: KindSpeed, Factor: factor}}, 30, logging.NewNop()); err != nil {
			t.Fatalf("factor %v: unexpected error %v", factor, err)
		}
	}
}

func TestValidateOpsFadeClampAndDrop(t *testing.T) {
	ops, err := ValidateOps([]Operation{
		{Kind: KindFadeOut, Duration: 0},
		{Kind: KindFadeOut, Duration: 90},
	}, 30, logging.NewNop())
	if err != nil {
		t.Fatalf("ValidateOps failed: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("expected zero-length fade dropped, got %v", ops)
	}
	if ops[0].Duration != 30 {
		t.Fatalf("expected over-long fade clamped to 30, got %v", ops[0].Duration)
	}
}

func TestValidateOpsDropsEmptyTrimAndUnknownKind(t *testing.T) {
	ops, err := ValidateOps([]Operation{
		{Kind: KindTrim, Start: 5, End: 5},
		{Kind: Kind("reverse")},
		{Kind: KindSpeed, Factor: 2},
	}, 30, logging.NewNop())
	if err != nil {
		t.Fatalf("ValidateOps failed: %v", err)
	}
	if len(ops) != 1 || ops[0].Kind != KindSpeed {
		t.Fatalf("expected only the speed op to survive, got %v", ops)
	}
}

func TestValidateOpsIdempotent(t *testing.T) {
	first, err := ValidateOps([]Operation{
		{Kind: KindTrim, Start: -1, End: 50},
		{Kind: KindSpeed, Factor: 2},
		{Kind: KindFadeOut, Duration: 60},
	}, 30, logging.NewNop())
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	second, err := ValidateOps(first, 30, logging.NewNop())
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("length changed across passes: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("operation %d changed across passes: %v vs %v", i, first[i], second[i])
		}
	}
}
