package cpj

import (
	"context"
	"errors"
	"testing"
)

func TestReconcile_FullStructuredResponse(t *testing.T) {
	gw := &mockGateway{
		judgeFn: constant(`{"selection": "diagnosis", "finalAnswer": "tip burn from calcium transport failure", "reasoning": "the diagnosis answer matched the caption"}`),
	}

	out, err := Reconcile(context.Background(), gw, "caption", "diag", "mgmt", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Selection != SelectionDiagnosis {
		t.Errorf("selection = %q, want diagnosis", out.Selection)
	}
	if out.FinalAnswer != "tip burn from calcium transport failure" {
		t.Errorf("finalAnswer = %q", out.FinalAnswer)
	}
	if out.Reasoning != "the diagnosis answer matched the caption" {
		t.Errorf("reasoning = %q", out.Reasoning)
	}
}

func TestReconcile_NoJSONFallsBackToRawText(t *testing.T) {
	raw := "Both answers agree: this is tip burn. Increase calcium availability."
	gw := &mockGateway{judgeFn: constant(raw)}

	out, err := Reconcile(context.Background(), gw, "caption", "diag", "mgmt", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Selection != SelectionCombined {
		t.Errorf("selection = %q, want combined", out.Selection)
	}
	if out.FinalAnswer != raw {
		t.Errorf("finalAnswer = %q, want the raw response verbatim", out.FinalAnswer)
	}
	if out.Reasoning != fallbackReasoning {
		t.Errorf("reasoning = %q, want fixed fallback note", out.Reasoning)
	}
}

func TestReconcile_FieldLevelDefaults(t *testing.T) {
	raw := `{"selection": "management"}`
	gw := &mockGateway{judgeFn: constant(raw)}

	out, err := Reconcile(context.Background(), gw, "caption", "diag", "mgmt", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Selection != SelectionManagement {
		t.Errorf("selection = %q, want management", out.Selection)
	}
	// Missing finalAnswer defaults to the raw response; missing reasoning to
	// empty.
	if out.FinalAnswer != raw {
		t.Errorf("finalAnswer = %q, want raw response", out.FinalAnswer)
	}
	if out.Reasoning != "" {
		t.Errorf("reasoning = %q, want empty", out.Reasoning)
	}
}

func TestReconcile_EmptyStringFieldsTreatedAsAbsent(t *testing.T) {
	raw := `{"selection": "", "finalAnswer": "", "reasoning": ""}`
	gw := &mockGateway{judgeFn: constant(raw)}

	out, err := Reconcile(context.Background(), gw, "caption", "diag", "mgmt", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Selection != SelectionCombined {
		t.Errorf("selection = %q, want combined", out.Selection)
	}
	if out.FinalAnswer != raw {
		t.Errorf("finalAnswer = %q, want raw response", out.FinalAnswer)
	}
}

func TestReconcile_UnrecognizedSelectionNormalized(t *testing.T) {
	gw := &mockGateway{
		judgeFn: constant(`{"selection": "both", "finalAnswer": "x", "reasoning": "y"}`),
	}

	out, err := Reconcile(context.Background(), gw, "caption", "diag", "mgmt", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Selection != SelectionCombined {
		t.Errorf("selection = %q, want combined for unrecognized value", out.Selection)
	}
}

func TestReconcile_FencedJSONAccepted(t *testing.T) {
	gw := &mockGateway{
		judgeFn: constant("```json\n{\"selection\": \"combined\", \"finalAnswer\": \"final\", \"reasoning\": \"merged\"}\n```"),
	}

	out, err := Reconcile(context.Background(), gw, "caption", "diag", "mgmt", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.FinalAnswer != "final" {
		t.Errorf("finalAnswer = %q, want fenced JSON decoded", out.FinalAnswer)
	}
}

func TestReconcile_GatewayFailure(t *testing.T) {
	gw := &mockGateway{judgeFn: failing(errors.New("upstream unavailable"))}

	if _, err := Reconcile(context.Background(), gw, "caption", "diag", "mgmt", ""); err == nil {
		t.Fatal("expected error")
	}
}
