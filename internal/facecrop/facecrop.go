package facecrop

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"clipline/internal/logging"
	"clipline/internal/services"
)

// SampleCount is how many frames are sampled across the clip for detection.
const SampleCount = 8

// minDetectionRatio is the fraction of samples that must contain a face
// before the estimate is trusted. Below it the centered default applies.
const minDetectionRatio = 1.0 / 3.0

// Aspect ratio of the produced crop, width over height.
const (
	AspectW = 9
	AspectH = 16
)

// Detection is one face bounding box reported by the detector, in pixels
// relative to the frame's top-left corner.
type Detection struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// Area returns the box area in square pixels.
func (d Detection) Area() int {
	return d.Width * d.Height
}

// Region is the crop rectangle applied to every frame of the clip. Width and
// Height are always even so downstream encoders accept them.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Detector finds faces in a single still image.
type Detector interface {
	Detect(ctx context.Context, imagePath string) ([]Detection, error)
}

// FrameExtractor writes the frame at the given timestamp to outPath.
type FrameExtractor func(ctx context.Context, videoPath string, timestamp float64, outPath string) error

// Estimator samples frames from a clip, detects faces in each, and reduces
// the detections to one stable portrait crop region.
type Estimator struct {
	detector Detector
	extract  FrameExtractor
	workDir  string
	logger   *slog.Logger
}

// NewEstimator constructs an Estimator. Sampled frames are written beneath
// workDir and removed when estimation finishes.
func NewEstimator(detector Detector, extract FrameExtractor, workDir string, logger *slog.Logger) *Estimator {
	return &Estimator{
		detector: detector,
		extract:  extract,
		workDir:  workDir,
		logger:   logging.NewComponentLogger(logger, "facecrop"),
	}
}

// Estimate returns the crop region for the clip. Frames with no detected
// face are skipped; if fewer than a third of the samples contain a face the
// centered default region is returned instead of failing the stage.
func (e *Estimator) Estimate(ctx context.Context, videoPath string, duration float64, frameWidth, frameHeight int) (Region, error) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return Region{}, services.Wrap(services.ErrValidation, "cropFace", "", "unknown frame dimensions", nil)
	}

	sampleDir, err := os.MkdirTemp(e.workDir, "facecrop-")
	if err != nil {
		return Region{}, services.Wrap(services.ErrExternalTool, "cropFace", "sample", "create sample dir", err)
	}
	defer os.RemoveAll(sampleDir)

	var faces []Detection
	sampled := 0
	for i := 0; i < SampleCount; i++ {
		if err := ctx.Err(); err != nil {
			return Region{}, err
		}
		timestamp := duration * float64(i+1) / float64(SampleCount+1)
		framePath := filepath.Join(sampleDir, "frame_"+strconv.Itoa(i)+".jpg")
		if err := e.extract(ctx, videoPath, timestamp, framePath); err != nil {
			e.logger.Warn("frame extraction failed",
				logging.Float64("timestamp", timestamp),
				logging.Error(err),
			)
			continue
		}
		sampled++
		detections, err := e.detector.Detect(ctx, framePath)
		if err != nil {
			e.logger.Warn("face detection failed",
				logging.Float64("timestamp", timestamp),
				logging.Error(err),
			)
			continue
		}
		if face, ok := largest(detections); ok {
			faces = append(faces, face)
		}
	}
	if sampled == 0 {
		return Region{}, services.Wrap(services.ErrExternalTool, "cropFace", "sample", "no frames could be sampled", nil)
	}

	if float64(len(faces)) < minDetectionRatio*float64(SampleCount) {
		region := CenteredRegion(frameWidth, frameHeight)
		e.logger.Info("too few face detections, using centered crop",
			logging.Int("detections", len(faces)),
			logging.Int("samples", sampled),
		)
		return region, nil
	}

	face := medianFace(faces)
	region := fitAspect(face, frameWidth, frameHeight)
	e.logger.Info("estimated face crop region",
		logging.Int("detections", len(faces)),
		logging.Int("x", region.X),
		logging.Int("y", region.Y),
		logging.Int("width", region.Width),
		logging.Int("height", region.Height),
	)
	return region, nil
}

// CenteredRegion is the fallback crop: full frame height, 9:16 width,
// horizontally centered.
func CenteredRegion(frameWidth, frameHeight int) Region {
	width, height := portraitSize(frameWidth, frameHeight)
	return clampRegion(Region{
		X:      (frameWidth - width) / 2,
		Y:      (frameHeight - height) / 2,
		Width:  width,
		Height: height,
	}, frameWidth, frameHeight)
}

func largest(detections []Detection) (Detection, bool) {
	best := Detection{}
	found := false
	for _, d := range detections {
		if d.Width <= 0 || d.Height <= 0 {
			continue
		}
		if !found || d.Area() > best.Area() {
			best = d
			found = true
		}
	}
	return best, found
}

// medianFace reduces the per-sample detections to one box using the median
// of the center coordinates and dimensions. Medians shrug off the occasional
// spurious detection that a mean would chase.
func medianFace(faces []Detection) Detection {
	centersX := make([]int, len(faces))
	centersY := make([]int, len(faces))
	widths := make([]int, len(faces))
	heights := make([]int, len(faces))
	for i, f := range faces {
		centersX[i] = f.X + f.Width/2
		centersY[i] = f.Y + f.Height/2
		widths[i] = f.Width
		heights[i] = f.Height
	}
	w := median(widths)
	h := median(heights)
	return Detection{
		X:      median(centersX) - w/2,
		Y:      median(centersY) - h/2,
		Width:  w,
		Height: h,
	}
}

func median(values []int) int {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// fitAspect builds the portrait region around the face center. The crop uses
// the full frame height where possible, derives the width from the aspect
// ratio, and translates inward when the face sits near an edge.
func fitAspect(face Detection, frameWidth, frameHeight int) Region {
	width, height := portraitSize(frameWidth, frameHeight)
	centerX := face.X + face.Width/2
	centerY := face.Y + face.Height/2
	return clampRegion(Region{
		X:      centerX - width/2,
		Y:      centerY - height/2,
		Width:  width,
		Height: height,
	}, frameWidth, frameHeight)
}

// portraitSize returns the largest even-dimensioned 9:16 rectangle that fits
// inside the frame.
func portraitSize(frameWidth, frameHeight int) (int, int) {
	height := frameHeight
	width := height * AspectW / AspectH
	if width > frameWidth {
		width = frameWidth
		height = width * AspectH / AspectW
	}
	return even(width), even(height)
}

func even(v int) int {
	if v%2 != 0 {
		v--
	}
	if v < 2 {
		v = 2
	}
	return v
}

// clampRegion translates the region fully inside the frame without resizing.
func clampRegion(r Region, frameWidth, frameHeight int) Region {
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.X+r.Width > frameWidth {
		r.X = frameWidth - r.Width
	}
	if r.Y+r.Height > frameHeight {
		r.Y = frameHeight - r.Height
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	return r
}

// FilterString renders the region as an ffmpeg crop filter expression.
func (r Region) FilterString() string {
	return fmt.Sprintf("crop=%d:%d:%d:%d", r.Width, r.Height, r.X, r.Y)
}
