package cpj

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/assets"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/gateway"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/metrics"
)

// metricsNamespace groups all pipeline metrics.
const metricsNamespace = "LettuceDiagnosis"

// Synthetic sub-fields recorded when the unified mode collapses the three
// stages into one call.
const (
	unifiedCaption      = "Unified diagnosis mode"
	unifiedQualityScore = 10
	unifiedReasoning    = "Single-call diagnosis; no separate answers to reconcile"
)

// Pipeline runs the diagnosis pipeline over one image in the configured mode.
type Pipeline struct {
	Gateway gateway.Model
	Mode    Mode
}

// Run executes the pipeline and returns the result record. The elapsed
// duration is reported even when the run fails, so callers can always log
// how long the attempt took.
func (p *Pipeline) Run(ctx context.Context, img gateway.Image, question string) (*PipelineResult, time.Duration, error) {
	start := time.Now()

	var result *PipelineResult
	var err error
	if p.Mode == ModeUnified {
		result, err = p.runUnified(ctx, img, question)
	} else {
		result, err = p.runStaged(ctx, img, question)
	}
	elapsed := time.Since(start)

	rec := metrics.New(metricsNamespace).
		Dimension("Mode", string(p.mode())).
		Metric("PipelineMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds)
	if err != nil {
		rec.Dimension("Result", "error").Count("PipelineErrors").Flush()
		return nil, elapsed, err
	}
	result.ProcessingMs = elapsed.Milliseconds()

	rec.Dimension("Result", "success").
		Metric("CaptionAttempts", float64(result.CaptionOutcome.Attempts), metrics.UnitCount).
		Property("Selection", string(result.JudgeOutcome.Selection)).
		Flush()

	log.Info().
		Str("mode", string(p.mode())).
		Int64("processing_ms", result.ProcessingMs).
		Str("selection", string(result.JudgeOutcome.Selection)).
		Msg("Pipeline complete")

	return result, elapsed, nil
}

// runStaged runs the three stages in strict order: caption, dual answers,
// judge.
func (p *Pipeline) runStaged(ctx context.Context, img gateway.Image, question string) (*PipelineResult, error) {
	caption, err := GenerateCaption(ctx, p.Gateway, img)
	if err != nil {
		return nil, err
	}

	answers, err := AnswerBoth(ctx, p.Gateway, caption.Caption, question)
	if err != nil {
		return nil, err
	}

	judge, err := Reconcile(ctx, p.Gateway, caption.Caption, answers.DiagnosisAnswer, answers.ManagementAnswer, question)
	if err != nil {
		return nil, err
	}

	return &PipelineResult{
		CaptionOutcome: caption,
		DualAnswer:     answers,
		JudgeOutcome:   judge,
	}, nil
}

// runUnified performs one consolidated model call and synthesizes a full
// result record so both modes present the same shape to callers.
func (p *Pipeline) runUnified(ctx context.Context, img gateway.Image, question string) (*PipelineResult, error) {
	answer, err := p.Gateway.Invoke(ctx, assets.UnifiedSystemPrompt, assets.RenderUnifiedPrompt(question), &img)
	if err != nil {
		return nil, fmt.Errorf("unified diagnosis: %w", err)
	}

	return &PipelineResult{
		CaptionOutcome: CaptionOutcome{
			Caption:      unifiedCaption,
			QualityScore: unifiedQualityScore,
			Attempts:     1,
		},
		DualAnswer: DualAnswer{
			DiagnosisAnswer:  answer,
			ManagementAnswer: answer,
		},
		JudgeOutcome: JudgeOutcome{
			Selection:   SelectionCombined,
			FinalAnswer: answer,
			Reasoning:   unifiedReasoning,
		},
	}, nil
}

// mode normalizes an unset mode to staged.
func (p *Pipeline) mode() Mode {
	if p.Mode == ModeUnified {
		return ModeUnified
	}
	return ModeStaged
}
