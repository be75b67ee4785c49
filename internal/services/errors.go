package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers used to classify stage failures. Stage code wraps its
// errors with one of these so the engine and boundary can branch on the
// failure class without string matching.
var (
	// ErrValidation is for malformed or out-of-range parameters that could
	// not be recovered by clamping.
	ErrValidation = errors.New("validation error")
	// ErrExternalTool is for the transcoder, detector, or language model
	// being unreachable or reporting failure. Never retried by the engine.
	ErrExternalTool = errors.New("external tool error")
	// ErrDegraded marks results that were replaced with a documented
	// fallback; it is never escalated to a stage failure.
	ErrDegraded = errors.New("degraded result")
	// ErrNotFound is for missing jobs, presets, or share tokens.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration is for settings the component cannot run with.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Reason extracts the human-readable failure reason from a stage error,
// stripping the sentinel prefix added by Wrap.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	message := strings.TrimSpace(err.Error())
	for _, marker := range []error{ErrValidation, ErrExternalTool, ErrDegraded, ErrNotFound, ErrConfiguration} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(message, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(message, prefix))
		}
	}
	return message
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
