package cpj

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/assets"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/gateway"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/jsonutil"
)

// fallbackReasoning is the reasoning recorded when the judge's response
// carried no decodable JSON object and the whole raw text becomes the answer.
const fallbackReasoning = "Automatically combined response"

// Reconcile asks the judge to evaluate both answers against the caption and
// select or integrate a final answer. Parse misses never fail the stage:
// partial structure degrades field by field, and a response with no decodable
// object at all falls back to the raw text as a combined answer.
func Reconcile(ctx context.Context, gw gateway.Model, caption, diagnosisAnswer, managementAnswer, question string) (JudgeOutcome, error) {
	raw, err := gw.Invoke(ctx, assets.JudgeSystemPrompt,
		assets.RenderJudgePrompt(caption, diagnosisAnswer, managementAnswer, question), nil)
	if err != nil {
		return JudgeOutcome{}, fmt.Errorf("judge: %w", err)
	}

	obj, ok := jsonutil.DecodeObject(raw)
	if !ok {
		log.Debug().Msg("Judge response carried no decodable JSON object; using raw text as combined answer")
		return JudgeOutcome{
			Selection:   SelectionCombined,
			FinalAnswer: raw,
			Reasoning:   fallbackReasoning,
		}, nil
	}

	out := JudgeOutcome{
		Selection:   normalizeSelection(jsonutil.StringOr(obj, "selection", string(SelectionCombined))),
		FinalAnswer: jsonutil.StringOr(obj, "finalAnswer", raw),
		Reasoning:   jsonutil.StringOr(obj, "reasoning", ""),
	}

	log.Debug().
		Str("selection", string(out.Selection)).
		Int("final_answer_length", len(out.FinalAnswer)).
		Msg("Judge stage complete")

	return out, nil
}

// normalizeSelection maps unrecognized selections to combined.
func normalizeSelection(s string) Selection {
	switch Selection(s) {
	case SelectionDiagnosis, SelectionManagement, SelectionCombined:
		return Selection(s)
	default:
		return SelectionCombined
	}
}
