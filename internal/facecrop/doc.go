// Package facecrop estimates a stable 9:16 portrait crop for a clip.
//
// The estimator samples evenly spaced frames, runs the external face detector
// over each still, keeps the largest box per frame, and reduces the
// detections to a median region fitted to the portrait aspect and clamped
// inside the frame. When faces show up in fewer than a third of the samples
// the crop falls back to a centered region rather than failing the job.
package facecrop
