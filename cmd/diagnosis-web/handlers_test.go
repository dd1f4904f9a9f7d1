package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/assets"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/cpj"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/gateway"
)

// fakeGateway returns a scripted response per system prompt and counts calls.
type fakeGateway struct {
	mu        sync.Mutex
	calls     int
	responses map[string]string
	err       error
}

func (f *fakeGateway) Invoke(_ context.Context, system, _ string, _ *gateway.Image) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if resp, ok := f.responses[system]; ok {
		return resp, nil
	}
	return "", errors.New("unexpected call")
}

func happyResponses() map[string]string {
	return map[string]string{
		assets.CaptionSystemPrompt:    "lettuce with browning leaf margins",
		assets.QualitySystemPrompt:    `{"score": 9, "feedback": "good"}`,
		assets.DiagnosisSystemPrompt:  "tip burn",
		assets.ManagementSystemPrompt: "lower EC",
		assets.JudgeSystemPrompt:      `{"selection": "combined", "finalAnswer": "tip burn; lower EC", "reasoning": "consistent"}`,
		assets.UnifiedSystemPrompt:    "unified answer",
	}
}

func testImageJSON() string {
	img := base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF})
	return `{"image": "` + img + `", "mediaType": "image/jpeg"}`
}

// envelope decodes the standard response envelope.
type envelope struct {
	Success          bool            `json:"success"`
	Result           json.RawMessage `json:"result"`
	Error            string          `json:"error"`
	ProcessingTimeMs *int64          `json:"processingTimeMs"`
}

func doRequest(t *testing.T, handler http.HandlerFunc, method, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not a JSON envelope: %v\n%s", err, rec.Body.String())
	}
	return rec, env
}

func TestHandleDiagnose_Success(t *testing.T) {
	gw := &fakeGateway{responses: happyResponses()}
	srv := newServer(gw, cpj.ModeStaged)

	rec, env := doRequest(t, srv.handleDiagnose, http.MethodPost, testImageJSON())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !env.Success {
		t.Error("expected success envelope")
	}
	if env.ProcessingTimeMs == nil {
		t.Error("expected processingTimeMs in envelope")
	}

	var result cpj.PipelineResult
	if err := json.Unmarshal(env.Result, &result); err != nil {
		t.Fatalf("result does not decode: %v", err)
	}
	if result.JudgeOutcome.FinalAnswer != "tip burn; lower EC" {
		t.Errorf("finalAnswer = %q", result.JudgeOutcome.FinalAnswer)
	}
}

func TestHandleDiagnose_MissingImage(t *testing.T) {
	gw := &fakeGateway{responses: happyResponses()}
	srv := newServer(gw, cpj.ModeStaged)

	rec, env := doRequest(t, srv.handleDiagnose, http.MethodPost, `{"question": "why?"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if env.Success {
		t.Error("expected failure envelope")
	}
	if gw.calls != 0 {
		t.Errorf("gateway calls = %d, want 0 before validation passes", gw.calls)
	}
}

func TestHandleDiagnose_InvalidBase64(t *testing.T) {
	srv := newServer(&fakeGateway{}, cpj.ModeStaged)

	rec, _ := doRequest(t, srv.handleDiagnose, http.MethodPost, `{"image": "not-base64!!!"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleDiagnose_DataURIMediaType(t *testing.T) {
	gw := &fakeGateway{responses: happyResponses()}
	srv := newServer(gw, cpj.ModeStaged)

	img := base64.StdEncoding.EncodeToString([]byte{0x89, 0x50})
	body := `{"image": "data:image/png;base64,` + img + `"}`
	rec, _ := doRequest(t, srv.handleDiagnose, http.MethodPost, body)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleDiagnose_UnknownMode(t *testing.T) {
	srv := newServer(&fakeGateway{responses: happyResponses()}, cpj.ModeStaged)

	body := strings.TrimSuffix(testImageJSON(), "}") + `, "mode": "turbo"}`
	rec, _ := doRequest(t, srv.handleDiagnose, http.MethodPost, body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleDiagnose_UnifiedModeOverride(t *testing.T) {
	gw := &fakeGateway{responses: happyResponses()}
	srv := newServer(gw, cpj.ModeStaged)

	body := strings.TrimSuffix(testImageJSON(), "}") + `, "mode": "unified"}`
	rec, env := doRequest(t, srv.handleDiagnose, http.MethodPost, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if gw.calls != 1 {
		t.Errorf("gateway calls = %d, want 1 in unified mode", gw.calls)
	}
	var result cpj.PipelineResult
	if err := json.Unmarshal(env.Result, &result); err != nil {
		t.Fatal(err)
	}
	if result.JudgeOutcome.FinalAnswer != "unified answer" {
		t.Errorf("finalAnswer = %q", result.JudgeOutcome.FinalAnswer)
	}
}

func TestHandleDiagnose_UpstreamFailure(t *testing.T) {
	gw := &fakeGateway{err: &gateway.Error{Kind: gateway.KindUpstream, Message: "model call failed"}}
	srv := newServer(gw, cpj.ModeStaged)

	rec, env := doRequest(t, srv.handleDiagnose, http.MethodPost, testImageJSON())
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if env.Success {
		t.Error("expected failure envelope")
	}
	if env.ProcessingTimeMs == nil {
		t.Error("expected processingTimeMs on pipeline failure")
	}
}

func TestHandleDiagnose_MethodNotAllowed(t *testing.T) {
	srv := newServer(&fakeGateway{}, cpj.ModeStaged)

	rec, _ := doRequest(t, srv.handleDiagnose, http.MethodGet, "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleCaption_Success(t *testing.T) {
	gw := &fakeGateway{responses: happyResponses()}
	srv := newServer(gw, cpj.ModeStaged)

	rec, env := doRequest(t, srv.handleCaption, http.MethodPost, testImageJSON())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var outcome cpj.CaptionOutcome
	if err := json.Unmarshal(env.Result, &outcome); err != nil {
		t.Fatal(err)
	}
	if outcome.QualityScore != 9 || outcome.Attempts != 1 {
		t.Errorf("outcome = %+v", outcome)
	}
}

func TestHandleVQA_RequiresCaption(t *testing.T) {
	gw := &fakeGateway{responses: happyResponses()}
	srv := newServer(gw, cpj.ModeStaged)

	rec, _ := doRequest(t, srv.handleVQA, http.MethodPost, `{"question": "why?"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if gw.calls != 0 {
		t.Errorf("gateway calls = %d, want 0", gw.calls)
	}
}

func TestHandleVQA_Success(t *testing.T) {
	gw := &fakeGateway{responses: happyResponses()}
	srv := newServer(gw, cpj.ModeStaged)

	rec, env := doRequest(t, srv.handleVQA, http.MethodPost, `{"caption": "a lettuce", "question": "healthy?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var answers cpj.DualAnswer
	if err := json.Unmarshal(env.Result, &answers); err != nil {
		t.Fatal(err)
	}
	if answers.DiagnosisAnswer != "tip burn" || answers.ManagementAnswer != "lower EC" {
		t.Errorf("answers = %+v", answers)
	}
}

func TestHandleJudge_RequiresBothAnswers(t *testing.T) {
	srv := newServer(&fakeGateway{responses: happyResponses()}, cpj.ModeStaged)

	rec, _ := doRequest(t, srv.handleJudge, http.MethodPost, `{"caption": "c", "diagnosisAnswer": "d"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleJudge_Success(t *testing.T) {
	srv := newServer(&fakeGateway{responses: happyResponses()}, cpj.ModeStaged)

	body := `{"caption": "c", "diagnosisAnswer": "d", "managementAnswer": "m", "question": "q"}`
	rec, env := doRequest(t, srv.handleJudge, http.MethodPost, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var outcome cpj.JudgeOutcome
	if err := json.Unmarshal(env.Result, &outcome); err != nil {
		t.Fatal(err)
	}
	if outcome.Selection != cpj.SelectionCombined {
		t.Errorf("selection = %q", outcome.Selection)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newServer(&fakeGateway{}, cpj.ModeStaged)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if _, ok := body["credentialConfigured"]; !ok {
		t.Error("expected credentialConfigured field")
	}
}

func TestHandleHealth_MethodNotAllowed(t *testing.T) {
	srv := newServer(&fakeGateway{}, cpj.ModeStaged)

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
