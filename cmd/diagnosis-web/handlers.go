package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/auth"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/cpj"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/gateway"
)

// server holds the dependencies the HTTP handlers need. Handlers take the
// gateway through the server so tests can substitute a double.
type server struct {
	gateway gateway.Model
	mode    cpj.Mode
}

func newServer(gw gateway.Model, mode cpj.Mode) *server {
	return &server{gateway: gw, mode: mode}
}

// imageRequest is the shared image payload shape. The image is base64, with
// or without a data: URI prefix.
type imageRequest struct {
	Image     string `json:"image"`
	MediaType string `json:"mediaType"`
}

// decodeImage validates and decodes the payload into an inline image.
// The media type defaults to image/jpeg when unset.
func (req *imageRequest) decodeImage() (gateway.Image, error) {
	if strings.TrimSpace(req.Image) == "" {
		return gateway.Image{}, fmt.Errorf("image is required")
	}

	mediaType := req.MediaType
	encoded := req.Image

	// data:image/png;base64,... payloads carry their own media type.
	if strings.HasPrefix(encoded, "data:") {
		meta, rest, ok := strings.Cut(encoded, ",")
		if !ok {
			return gateway.Image{}, fmt.Errorf("malformed data URI")
		}
		encoded = rest
		meta = strings.TrimPrefix(meta, "data:")
		if mt, _, found := strings.Cut(meta, ";"); found && mt != "" {
			mediaType = mt
		}
	}

	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	if !gateway.SupportedMediaType(mediaType) {
		return gateway.Image{}, fmt.Errorf("unsupported media type %q", mediaType)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return gateway.Image{}, fmt.Errorf("image is not valid base64")
	}
	if len(data) == 0 {
		return gateway.Image{}, fmt.Errorf("image is empty")
	}

	return gateway.Image{Data: data, MIMEType: mediaType}, nil
}

// handleCaption runs the caption stage alone.
// POST /api/cpj/caption {"image": "...", "mediaType": "image/jpeg"}
func (s *server) handleCaption(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req imageRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	img, err := req.decodeImage()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := cpj.GenerateCaption(r.Context(), s.gateway, img)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondResult(w, outcome)
}

// handleVQA runs the dual-answer stage alone over a provided caption.
// POST /api/cpj/vqa {"caption": "...", "question": "..."}
func (s *server) handleVQA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Caption  string `json:"caption"`
		Question string `json:"question"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Caption) == "" {
		respondError(w, http.StatusBadRequest, "caption is required")
		return
	}

	answers, err := cpj.AnswerBoth(r.Context(), s.gateway, req.Caption, req.Question)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondResult(w, answers)
}

// handleJudge runs the judge stage alone over provided answers.
// POST /api/cpj/judge {"caption": "...", "diagnosisAnswer": "...", "managementAnswer": "...", "question": "..."}
func (s *server) handleJudge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Caption          string `json:"caption"`
		DiagnosisAnswer  string `json:"diagnosisAnswer"`
		ManagementAnswer string `json:"managementAnswer"`
		Question         string `json:"question"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Caption) == "" {
		respondError(w, http.StatusBadRequest, "caption is required")
		return
	}
	if strings.TrimSpace(req.DiagnosisAnswer) == "" || strings.TrimSpace(req.ManagementAnswer) == "" {
		respondError(w, http.StatusBadRequest, "diagnosisAnswer and managementAnswer are required")
		return
	}

	outcome, err := cpj.Reconcile(r.Context(), s.gateway, req.Caption, req.DiagnosisAnswer, req.ManagementAnswer, req.Question)
	if err != nil {
		respondGatewayError(w, err)
		return
	}
	respondResult(w, outcome)
}

// handleDiagnose runs the full pipeline.
// POST /api/diagnose {"image": "...", "mediaType": "...", "question": "...", "mode": "staged"}
func (s *server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		imageRequest
		Question string `json:"question"`
		Mode     string `json:"mode"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}
	img, err := req.decodeImage()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	mode := s.mode
	switch cpj.Mode(req.Mode) {
	case cpj.ModeStaged, cpj.ModeUnified:
		mode = cpj.Mode(req.Mode)
	case "":
		// Keep the server default.
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown mode %q", req.Mode))
		return
	}

	pipeline := &cpj.Pipeline{Gateway: s.gateway, Mode: mode}
	result, elapsed, err := pipeline.Run(r.Context(), img, req.Question)
	if err != nil {
		respondTimedGatewayError(w, err, elapsed.Milliseconds())
		return
	}
	respondTimedResult(w, result, result.ProcessingMs)
}

// handleHealth reports liveness and whether a credential is configured.
// GET /api/health
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":               "ok",
		"credentialConfigured": auth.HasAPIKey(),
		"timestamp":            time.Now().UTC().Format(time.RFC3339),
	})
}
