package cpj

import (
	"context"
	"fmt"
	"sync"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/assets"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/gateway"
)

// call names for the mock's recorded sequence.
const (
	callCaption    = "caption"
	callQuality    = "quality"
	callDiagnosis  = "diagnosis"
	callManagement = "management"
	callJudge      = "judge"
	callUnified    = "unified"
)

// mockGateway dispatches on the system prompt so each stage can be scripted
// independently. Responder funcs receive the 1-based invocation count for
// that call kind.
type mockGateway struct {
	mu    sync.Mutex
	calls []string
	seen  map[string]int

	captionFn    func(n int) (string, error)
	qualityFn    func(n int) (string, error)
	diagnosisFn  func(n int) (string, error)
	managementFn func(n int) (string, error)
	judgeFn      func(n int) (string, error)
	unifiedFn    func(n int) (string, error)
}

func (m *mockGateway) Invoke(_ context.Context, system, _ string, _ *gateway.Image) (string, error) {
	kind, fn := m.dispatch(system)
	if fn == nil {
		return "", fmt.Errorf("unexpected %s call", kind)
	}

	m.mu.Lock()
	if m.seen == nil {
		m.seen = make(map[string]int)
	}
	m.seen[kind]++
	n := m.seen[kind]
	m.calls = append(m.calls, kind)
	m.mu.Unlock()

	return fn(n)
}

func (m *mockGateway) dispatch(system string) (string, func(int) (string, error)) {
	switch system {
	case assets.CaptionSystemPrompt:
		return callCaption, m.captionFn
	case assets.QualitySystemPrompt:
		return callQuality, m.qualityFn
	case assets.DiagnosisSystemPrompt:
		return callDiagnosis, m.diagnosisFn
	case assets.ManagementSystemPrompt:
		return callManagement, m.managementFn
	case assets.JudgeSystemPrompt:
		return callJudge, m.judgeFn
	case assets.UnifiedSystemPrompt:
		return callUnified, m.unifiedFn
	default:
		return "unknown", nil
	}
}

// callCount returns how many times the given call kind was invoked.
func (m *mockGateway) callCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[kind]
}

// constant wraps a fixed response as a responder.
func constant(s string) func(int) (string, error) {
	return func(int) (string, error) { return s, nil }
}

// failing wraps a fixed error as a responder.
func failing(err error) func(int) (string, error) {
	return func(int) (string, error) { return "", err }
}

// testImage is a minimal valid payload for pipeline tests.
var testImage = gateway.Image{Data: []byte{0xFF, 0xD8, 0xFF}, MIMEType: "image/jpeg"}
