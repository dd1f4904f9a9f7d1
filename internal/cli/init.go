// Package cli carries the shared startup, prompting, and terminal rendering
// helpers used by the command-line entrypoints.
package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/auth"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/gateway"
)

// InitGateway resolves the credential, verifies it against the live API, and
// returns the context and gateway ready for use. Exits fatally on failure.
func InitGateway(model string) (context.Context, *gateway.Gemini) {
	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to retrieve API key")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Gemini client")
	}

	if err := auth.ValidateAPIKey(ctx, client); err != nil {
		HandleValidationError(err)
	}

	log.Info().Msg("API key validation complete - ready for diagnosis")

	return ctx, gateway.NewGemini(gateway.Config{Model: model})
}
