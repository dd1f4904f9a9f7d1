package cpj

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/assets"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/gateway"
)

// AnswerBoth issues the diagnosis-oriented and management-oriented
// question-answering calls concurrently over the same caption. The join is
// all-or-nothing: if either call fails the stage fails with no partial
// result. The two calls have no ordering dependency.
func AnswerBoth(ctx context.Context, gw gateway.Model, caption, question string) (DualAnswer, error) {
	var out DualAnswer

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		answer, err := gw.Invoke(gctx, assets.DiagnosisSystemPrompt, assets.RenderDiagnosisPrompt(caption, question), nil)
		if err != nil {
			return fmt.Errorf("diagnosis answer: %w", err)
		}
		out.DiagnosisAnswer = answer
		return nil
	})
	g.Go(func() error {
		answer, err := gw.Invoke(gctx, assets.ManagementSystemPrompt, assets.RenderManagementPrompt(caption, question), nil)
		if err != nil {
			return fmt.Errorf("management answer: %w", err)
		}
		out.ManagementAnswer = answer
		return nil
	})
	if err := g.Wait(); err != nil {
		return DualAnswer{}, err
	}

	log.Debug().
		Int("diagnosis_length", len(out.DiagnosisAnswer)).
		Int("management_length", len(out.ManagementAnswer)).
		Msg("Dual answer stage complete")

	return out, nil
}
