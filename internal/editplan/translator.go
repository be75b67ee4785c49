package editplan

import (
	"context"
	"log/slog"
	"strconv"

	"clipline/internal/logging"
	"clipline/internal/services"
	"clipline/internal/services/llm"
)

const systemPrompt = `You are a video editing assistant. Given a natural language description of video edits and the video duration, return a JSON object with an "operations" array. Each operation must have a "type" and its parameters.

Supported operations:
- {"type": "trim", "start": <seconds>, "end": <seconds>}
- {"type": "speed", "factor": <number>}
- {"type": "fade_out", "seconds": <number>}

Operations are applied in order. Return ONLY valid JSON. No markdown. No explanation.

Example:
{"operations": [{"type": "trim", "start": 0, "end": 10}, {"type": "speed", "factor": 1.5}]}`

// Completer is the narrow slice of the LLM client the translator needs.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Translator converts free-text edit descriptions into validated operation
// lists. The language understanding lives in the external model; the
// translator owns validation and normalization of whatever comes back.
type Translator struct {
	client Completer
	logger *slog.Logger
}

// NewTranslator constructs a Translator backed by the given completion client.
func NewTranslator(client Completer, logger *slog.Logger) *Translator {
	return &Translator{client: client, logger: logging.NewComponentLogger(logger, "editplan")}
}

type rawOperation struct {
	Type    string   `json:"type"`
	Start   *float64 `json:"start"`
	End     *float64 `json:"end"`
	Factor  *float64 `json:"factor"`
	Seconds *float64 `json:"seconds"`
}

type translationPayload struct {
	Operations []rawOperation `json:"operations"`
}

// Translate sends the description to the model and returns the ordered,
// validated operation list. An empty list is a valid outcome (pass-through).
// A response that cannot be parsed at all fails with reason
// "translation-unparseable".
func (t *Translator) Translate(ctx context.Context, editText string, duration float64) ([]Operation, error) {
	content, err := t.client.CompleteJSON(ctx, systemPrompt, userPrompt(editText, duration))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "translateEdits", "llm", "completion failed", err)
	}

	var payload translationPayload
	if err := llm.DecodeLLMJSON(content, &payload); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "translateEdits", "", "translation-unparseable", err)
	}
	if payload.Operations == nil {
		return nil, services.Wrap(services.ErrExternalTool, "translateEdits", "", "translation-unparseable", nil)
	}

	ops := make([]Operation, 0, len(payload.Operations))
	for _, raw := range payload.Operations {
		op, ok := raw.toOperation()
		if !ok {
			t.logger.Warn("dropping malformed operation from model", logging.String("type", raw.Type))
			continue
		}
		ops = append(ops, op)
	}

	validated, err := ValidateOps(ops, duration, t.logger)
	if err != nil {
		return nil, err
	}
	t.logger.Info("translated edit instructions",
		logging.Int("requested", len(payload.Operations)),
		logging.Int("validated", len(validated)),
	)
	return validated, nil
}

func (r rawOperation) toOperation() (Operation, bool) {
	switch Kind(r.Type) {
	case KindTrim:
		if r.Start == nil || r.End == nil {
			return Operation{}, false
		}
		return Operation{Kind: KindTrim, Start: *r.Start, End: *r.End}, true
	case KindSpeed:
		if r.Factor == nil {
			return Operation{}, false
		}
		return Operation{Kind: KindSpeed, Factor: *r.Factor}, true
	case KindFadeOut:
		if r.Seconds == nil {
			return Operation{}, false
		}
		return Operation{Kind: KindFadeOut, Duration: *r.Seconds}, true
	}
	return Operation{}, false
}

func userPrompt(editText string, duration float64) string {
	return "Video duration: " + strconv.FormatFloat(duration, 'f', -1, 64) + " seconds.\nEdit request: " + editText
}
