package editplan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clipline/internal/logging"
	"clipline/internal/services"
)

type fakeCompleter struct {
	response string
	err      error
	lastUser string
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, _, userPrompt string) (string, error) {
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestTranslateBuildsValidatedOperations(t *testing.T) {
	completer := &fakeCompleter{response: `{"operations": [
		{"type": "trim", "start": 0, "end": 10},
		{"type": "speed", "factor": 2},
		{"type": "fade_out", "seconds": 1.5}
	]}`}
	translator := NewTranslator(completer, logging.NewNop())

	ops, err := translator.Translate(context.Background(), "keep the first ten seconds, double speed, fade out", 30)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	want := []Operation{
		{Kind: KindTrim, Start: 0, End: 10},
		{Kind: KindSpeed, Factor: 2},
		{Kind: KindFadeOut, Duration: 1.5},
	}
	if len(ops) != len(want) {
		t.Fatalf("expected %d operations, got %d: %v", len(want), len(ops), ops)
	}
	for i, op := range ops {
		if op != want[i] {
			t.Fatalf("operation %d = %v, want %v", i, op, want[i])
		}
	}
	if !strings.Contains(completer.lastUser, "30 seconds") {
		t.Fatalf("user prompt missing duration: %q", completer.lastUser)
	}
}

func TestTranslateStripsCodeFences(t *testing.T) {
	completer := &fakeCompleter{response: "```json\n{\"operations\": [{\"type\": \"trim\", \"start\": 2, \"end\": 8}]}\n```"}
	translator := NewTranslator(completer, logging.NewNop())

	ops, err := translator.Translate(context.Background(), "trim", 20)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if len(ops) != 1 || ops[0].Kind != KindTrim {
		t.Fatalf("expected single trim, got %v", ops)
	}
}

func TestTranslateUnparseableResponse(t *testing.T) {
	for name, response := range map[string]string{
		"prose":             "I cannot help with that.",
		"missingOperations": `{"result": "ok"}`,
	} {
		t.Run(name, func(t *testing.T) {
			translator := NewTranslator(&fakeCompleter{response: response}, logging.NewNop())
			_, err := translator.Translate(context.Background(), "trim it", 30)
			if err == nil {
				t.Fatal("expected error for unparseable response")
			}
			if !errors.Is(err, services.ErrExternalTool) {
				t.Fatalf("expected external tool marker, got %v", err)
			}
			if !strings.Contains(services.Reason(err), "translation-unparseable") {
				t.Fatalf("reason %q missing translation-unparseable", services.Reason(err))
			}
		})
	}
}

func TestTranslateEmptyOperationsIsPassThrough(t *testing.T) {
	translator := NewTranslator(&fakeCompleter{response: `{"operations": []}`}, logging.NewNop())
	ops, err := translator.Translate(context.Background(), "do nothing", 30)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if len(ops) != 0 {
		t.Fatalf("expected empty plan, got %v", ops)
	}
}

func TestTranslateDropsMalformedEntries(t *testing.T) {
	completer := &fakeCompleter{response: `{"operations": [
		{"type": "trim", "start": 0},
		{"type": "teleport"},
		{"type": "speed", "factor": 1.5}
	]}`}
	translator := NewTranslator(completer, logging.NewNop())

	ops, err := translator.Translate(context.Background(), "speed up", 30)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if len(ops) != 1 || ops[0].Kind != KindSpeed {
		t.Fatalf("expected malformed entries dropped, got %v", ops)
	}
}

func TestTranslateCompleterFailure(t *testing.T) {
	translator := NewTranslator(&fakeCompleter{err: errors.New("connection refused")}, logging.NewNop())
	_, err := translator.Translate(context.Background(), "trim", 30)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}
