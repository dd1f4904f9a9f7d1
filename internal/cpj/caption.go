package cpj

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/assets"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/gateway"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/jsonutil"
)

const (
	// maxCaptionAttempts bounds the quality-gated regeneration loop.
	maxCaptionAttempts = 3
	// minAcceptableScore is the quality gate; a caption scoring at or above
	// it is accepted without further attempts.
	minAcceptableScore = 8
	// parseFallbackScore is assigned when the evaluation response carries no
	// decodable JSON object at all. It sits just under the gate so a single
	// formatting glitch does not loop forever, while a structurally valid
	// object missing its score field falls back to 0 instead.
	parseFallbackScore = 7
)

// GenerateCaption captions the image and re-generates until the quality gate
// is met or the attempt budget is exhausted. Both terminal conditions return
// the same record shape; exhaustion is not an error. A gateway failure in
// either the caption or the evaluation call aborts the stage.
func GenerateCaption(ctx context.Context, gw gateway.Model, img gateway.Image) (CaptionOutcome, error) {
	var out CaptionOutcome

	for out.Attempts < maxCaptionAttempts && out.QualityScore < minAcceptableScore {
		out.Attempts++

		caption, err := gw.Invoke(ctx, assets.CaptionSystemPrompt, assets.CaptionUserPrompt, &img)
		if err != nil {
			return CaptionOutcome{}, fmt.Errorf("caption generation (attempt %d): %w", out.Attempts, err)
		}
		out.Caption = caption

		raw, err := gw.Invoke(ctx, assets.QualitySystemPrompt, assets.RenderQualityPrompt(caption), nil)
		if err != nil {
			return CaptionOutcome{}, fmt.Errorf("caption quality evaluation (attempt %d): %w", out.Attempts, err)
		}
		out.QualityScore = qualityScoreFrom(raw)

		log.Debug().
			Int("attempt", out.Attempts).
			Int("score", out.QualityScore).
			Int("caption_length", len(caption)).
			Msg("Caption attempt evaluated")
	}

	log.Info().
		Int("attempts", out.Attempts).
		Int("score", out.QualityScore).
		Bool("accepted", out.QualityScore >= minAcceptableScore).
		Msg("Caption stage complete")

	return out, nil
}

// qualityScoreFrom extracts the score from the evaluation response. The two
// failure shapes carry different defaults: a response with no decodable JSON
// object scores parseFallbackScore, while a decoded object without a numeric
// score field scores 0.
func qualityScoreFrom(raw string) int {
	obj, ok := jsonutil.DecodeObject(raw)
	if !ok {
		log.Debug().Msg("Quality evaluation carried no decodable JSON object; using fallback score")
		return parseFallbackScore
	}
	return int(jsonutil.NumberOr(obj, "score", 0))
}
