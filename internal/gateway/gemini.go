package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/auth"
)

// Config configures the Gemini-backed gateway. Passing an explicit
// ResolveAPIKey enables test doubles without environment mutation.
type Config struct {
	// Model is the Gemini model ID. Defaults to GetModelName().
	Model string

	// ResolveAPIKey returns the credential for each invocation. Defaults to
	// auth.GetAPIKey. Resolving per call supports live credential rotation.
	ResolveAPIKey func() (string, error)
}

// Gemini implements Model on top of the Gemini API. The credential is
// re-resolved and a fresh client is created on every invocation, so a rotated
// key takes effect without a restart.
type Gemini struct {
	model      string
	resolveKey func() (string, error)
}

// NewGemini creates a Gemini gateway from cfg, filling in defaults for
// unset fields.
func NewGemini(cfg Config) *Gemini {
	model := cfg.Model
	if model == "" {
		model = GetModelName()
	}
	resolve := cfg.ResolveAPIKey
	if resolve == nil {
		resolve = auth.GetAPIKey
	}
	return &Gemini{model: model, resolveKey: resolve}
}

// Invoke sends one instruction pair (and optionally an inline image) to
// Gemini and returns the concatenated text of the response. Non-text parts
// of the response are ignored.
func (g *Gemini) Invoke(ctx context.Context, system, user string, image *Image) (string, error) {
	if strings.TrimSpace(system) == "" || strings.TrimSpace(user) == "" {
		return "", &Error{Kind: KindValidation, Message: "system and user instructions must be non-empty"}
	}
	if image != nil && !SupportedMediaType(image.MIMEType) {
		return "", &Error{Kind: KindValidation, Message: fmt.Sprintf("unsupported media type %q", image.MIMEType)}
	}

	key, err := g.resolveKey()
	if err != nil {
		return "", &Error{Kind: KindConfiguration, Message: "model credential is not configured", Err: err}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", &Error{Kind: KindUpstream, Message: "failed to create model client", Err: err}
	}

	var parts []*genai.Part
	if image != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: image.MIMEType,
				Data:     image.Data,
			},
		})
	}
	parts = append(parts, &genai.Part{Text: user})

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	log.Debug().
		Str("model", g.model).
		Int("user_prompt_length", len(user)).
		Bool("has_image", image != nil).
		Msg("Starting Gemini API call")

	callStart := time.Now()
	resp, err := client.Models.GenerateContent(ctx, g.model, contents, config)
	duration := time.Since(callStart)
	if err != nil {
		kind := KindUpstream
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			kind = KindTimeout
		}
		log.Error().Err(err).Dur("duration", duration).Msg("Gemini API call failed")
		return "", &Error{Kind: kind, Message: "model call failed", Err: err}
	}

	if resp == nil || len(resp.Candidates) == 0 {
		log.Warn().Dur("duration", duration).Msg("Received empty response from Gemini")
		return "", &Error{Kind: KindUpstream, Message: "received empty response from model"}
	}

	responseText := resp.Text()
	log.Debug().
		Int("response_length", len(responseText)).
		Dur("duration", duration).
		Msg("Gemini API response received")

	return responseText, nil
}
