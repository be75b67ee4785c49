package editplan

import (
	"log/slog"

	"clipline/internal/logging"
	"clipline/internal/services"
)

const maxSpeedFactor = 8.0

// ValidateOps normalizes an operation list against the source duration.
// Clamping recovers out-of-range trim bounds and over-long fades; speed
// factors outside (0, 8] and trim starts beyond the clip fail outright.
// Malformed entries are dropped with a warning. The function is idempotent:
// re-validating an already-validated list returns it unchanged.
func ValidateOps(ops []Operation, duration float64, logger *slog.Logger) ([]Operation, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	validated := make([]Operation, 0, len(ops))
	remaining := duration
	for _, op := range ops {
		switch op.Kind {
		case KindTrim:
			if op.Start >= remaining {
				return nil, services.Wrap(services.ErrValidation, string(op.Kind), "",
					"trim start beyond clip duration", nil)
			}
			if op.Start < 0 {
				op.Start = 0
			}
			if op.End > remaining {
				op.End = remaining
			}
			if op.End <= op.Start {
				logger.Warn("dropping trim with empty range",
					logging.Float64("start", op.Start),
					logging.Float64("end", op.End),
				)
				continue
			}
			op.Factor, op.Duration = 0, 0
		case KindSpeed:
			if op.Factor <= 0 || op.Factor > maxSpeedFactor {
				return nil, services.Wrap(services.ErrValidation, string(op.Kind), "",
					"speed factor outside (0, 8]", nil)
			}
			op.Start, op.End, op.Duration = 0, 0, 0
		case KindFadeOut:
			if op.Duration <= 0 {
				logger.Warn("dropping fade with non-positive duration",
					logging.Float64("duration", op.Duration),
				)
				continue
			}
			if op.Duration > remaining {
				op.Duration = remaining
			}
			op.Start, op.End, op.Factor = 0, 0, 0
		default:
			logger.Warn("dropping unknown operation", logging.String("kind", string(op.Kind)))
			continue
		}
		validated = append(validated, op)
		remaining = op.ResultDuration(remaining)
	}
	return validated, nil
}
