package facecrop

import (
	"context"
	"errors"
	"testing"

	"clipline/internal/logging"
)

type fakeDetector struct {
	byFrame map[string][]Detection
	err     error
}

func (f *fakeDetector) Detect(_ context.Context, imagePath string) ([]Detection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byFrame[imagePath], nil
}

type scriptedDetector struct {
	results [][]Detection
	calls   int
}

func (s *scriptedDetector) Detect(_ context.Context, _ string) ([]Detection, error) {
	if s.calls >= len(s.results) {
		return nil, nil
	}
	out := s.results[s.calls]
	s.calls++
	return out, nil
}

func noopExtract(_ context.Context, _ string, _ float64, _ string) error {
	return nil
}

func TestEstimateUsesMedianOfDetections(t *testing.T) {
	// Face hovers around (900, 300) in a 1920x1080 frame, with one
	// spurious detection far off to the left.
	results := make([][]Detection, SampleCount)
	for i := range results {
		results[i] = []Detection{{X: 880 + i*4, Y: 290 + i*2, Width: 120, Height: 140, Confidence: 0.9}}
	}
	results[3] = []Detection{{X: 10, Y: 10, Width: 118, Height: 142, Confidence: 0.5}}
	det := &scriptedDetector{results: results}

	est := NewEstimator(det, noopExtract, t.TempDir(), logging.NewNop())
	region, err := est.Estimate(context.Background(), "/tmp/clip.mp4", 20, 1920, 1080)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if region.Width%2 != 0 || region.Height%2 != 0 {
		t.Fatalf("expected even crop dimensions, got %dx%d", region.Width, region.Height)
	}
	if region.Height != 1080 {
		t.Fatalf("expected full-height crop, got %d", region.Height)
	}
	wantWidth := even(1080 * AspectW / AspectH)
	if region.Width != wantWidth {
		t.Fatalf("expected width %d, got %d", wantWidth, region.Width)
	}
	// The median face center sits near x=950; the outlier must not drag
	// the crop to the left edge.
	centerX := region.X + region.Width/2
	if centerX < 850 || centerX > 1050 {
		t.Fatalf("crop center %d pulled away from median face position", centerX)
	}
	if region.X < 0 || region.X+region.Width > 1920 {
		t.Fatalf("region out of frame: %+v", region)
	}
}

func TestEstimateLargestFaceWins(t *testing.T) {
	results := make([][]Detection, SampleCount)
	for i := range results {
		results[i] = []Detection{
			{X: 100, Y: 100, Width: 40, Height: 40, Confidence: 0.9},
			{X: 1400, Y: 400, Width: 200, Height: 220, Confidence: 0.8},
		}
	}
	det := &scriptedDetector{results: results}
	est := NewEstimator(det, noopExtract, t.TempDir(), logging.NewNop())
	region, err := est.Estimate(context.Background(), "/tmp/clip.mp4", 20, 1920, 1080)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	centerX := region.X + region.Width/2
	if centerX < 1200 {
		t.Fatalf("expected crop centered on larger face, center %d", centerX)
	}
}

func TestEstimateFallsBackToCenteredCrop(t *testing.T) {
	// Only two of eight samples contain a face: below the one-third
	// threshold, so the centered default applies.
	results := make([][]Detection, SampleCount)
	results[0] = []Detection{{X: 100, Y: 100, Width: 100, Height: 100, Confidence: 0.9}}
	results[5] = []Detection{{X: 120, Y: 110, Width: 100, Height: 100, Confidence: 0.9}}
	det := &scriptedDetector{results: results}

	est := NewEstimator(det, noopExtract, t.TempDir(), logging.NewNop())
	region, err := est.Estimate(context.Background(), "/tmp/clip.mp4", 20, 1920, 1080)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if region != CenteredRegion(1920, 1080) {
		t.Fatalf("expected centered region, got %+v", region)
	}
}

func TestEstimateDetectorErrorsCountAsMisses(t *testing.T) {
	det := &fakeDetector{err: errors.New("detector crashed")}
	est := NewEstimator(det, noopExtract, t.TempDir(), logging.NewNop())
	region, err := est.Estimate(context.Background(), "/tmp/clip.mp4", 20, 1280, 720)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if region != CenteredRegion(1280, 720) {
		t.Fatalf("expected centered fallback, got %+v", region)
	}
}

func TestEstimateAllExtractionsFail(t *testing.T) {
	extract := func(_ context.Context, _ string, _ float64, _ string) error {
		return errors.New("boom")
	}
	est := NewEstimator(&fakeDetector{}, extract, t.TempDir(), logging.NewNop())
	if _, err := est.Estimate(context.Background(), "/tmp/clip.mp4", 20, 1280, 720); err == nil {
		t.Fatal("expected error when no frames can be sampled")
	}
}

func TestCenteredRegion(t *testing.T) {
	region := CenteredRegion(1920, 1080)
	if region.Height != 1080 {
		t.Fatalf("expected full height, got %d", region.Height)
	}
	if region.Width != even(1080*AspectW/AspectH) {
		t.Fatalf("unexpected width %d", region.Width)
	}
	if region.X != (1920-region.Width)/2 {
		t.Fatalf("expected horizontal centering, got x=%d", region.X)
	}
}

func TestCenteredRegionNarrowSource(t *testing.T) {
	// Source narrower than 9:16: crop takes the full width and shrinks
	// the height instead.
	region := CenteredRegion(400, 1000)
	if region.Width != 400 {
		t.Fatalf("expected full width, got %d", region.Width)
	}
	wantHeight := even(400 * AspectH / AspectW)
	if region.Height != wantHeight {
		t.Fatalf("expected height %d, got %d", wantHeight, region.Height)
	}
	if region.X != 0 || region.Y < 0 || region.Y+region.Height > 1000 {
		t.Fatalf("region out of frame: %+v", region)
	}
}

func TestClampRegionEdgeFace(t *testing.T) {
	face := Detection{X: 0, Y: 0, Width: 100, Height: 100}
	region := fitAspect(face, 1920, 1080)
	if region.X != 0 {
		t.Fatalf("expected region translated to left edge, got x=%d", region.X)
	}
	if region.X+region.Width > 1920 || region.Y+region.Height > 1080 {
		t.Fatalf("region out of frame: %+v", region)
	}
}

func TestRegionFilterString(t *testing.T) {
	r := Region{X: 656, Y: 0, Width: 608, Height: 1080}
	if got := r.FilterString(); got != "crop=608:1080:656:0" {
		t.Fatalf("unexpected filter string %q", got)
	}
}

func TestMedianEvenCount(t *testing.T) {
	if got := median([]int{1, 3, 5, 7}); got != 4 {
		t.Fatalf("median = %d, want 4", got)
	}
	if got := median([]int{9}); got != 9 {
		t.Fatalf("median = %d, want 9", got)
	}
}
