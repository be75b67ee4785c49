package editplan

import (
	"fmt"
)

// Kind discriminates the edit operation variants.
type Kind string

const (
	KindTrim    Kind = "trim"
	KindSpeed   Kind = "speed"
	KindFadeOut Kind = "fade_out"
)

// Operation is one validated, executable edit instruction. Only the fields
// belonging to the Kind carry values. Ordering within a plan is significant
// and preserved end to end.
type Operation struct {
	Kind Kind `json:"kind"`

	// Trim bounds in seconds, half-open [Start, End).
	Start float64 `json:"start,omitempty"`
	End   float64 `json:"end,omitempty"`

	// Speed multiplier in (0, 8].
	Factor float64 `json:"factor,omitempty"`

	// Fade-out duration in seconds.
	Duration float64 `json:"duration,omitempty"`
}

func (o Operation) String() string {
	switch o.Kind {
	case KindTrim:
		return fmt.Sprintf("trim(%.3f,%.3f)", o.Start, o.End)
	case KindSpeed:
		return fmt.Sprintf("speed(%.3f)", o.Factor)
	case KindFadeOut:
		return fmt.Sprintf("fade_out(%.3f)", o.Duration)
	}
	return string(o.Kind)
}

// ResultDuration returns the clip duration after applying the operation to a
// clip of the given duration.
func (o Operation) ResultDuration(duration float64) float64 {
	switch o.Kind {
	case KindTrim:
		return o.End - o.Start
	case KindSpeed:
		if o.Factor > 0 {
			return duration / o.Factor
		}
	}
	return duration
}
