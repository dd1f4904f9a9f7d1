// Package cpj implements the Caption→VQA→Judge diagnosis pipeline: an image
// caption is generated under a quality-gated retry loop, two independent
// question-answering calls run over the caption, and a judge call reconciles
// them into one final answer.
package cpj

// Mode selects the orchestration policy.
type Mode string

const (
	// ModeStaged runs the full three-stage pipeline.
	ModeStaged Mode = "staged"
	// ModeUnified performs one consolidated model call and synthesizes the
	// result with fixed placeholder sub-fields.
	ModeUnified Mode = "unified"
)

// Selection identifies which answer the judge declared final.
type Selection string

const (
	SelectionDiagnosis  Selection = "diagnosis"
	SelectionManagement Selection = "management"
	SelectionCombined   Selection = "combined"
)

// CaptionOutcome is the result of the caption stage. The caption is always
// the last one generated, even when the quality gate was never satisfied.
type CaptionOutcome struct {
	Caption      string `json:"caption"`
	QualityScore int    `json:"qualityScore"`
	Attempts     int    `json:"attempts"`
}

// DualAnswer holds the two independent question-answering results produced
// from the same caption.
type DualAnswer struct {
	DiagnosisAnswer  string `json:"diagnosisAnswer"`
	ManagementAnswer string `json:"managementAnswer"`
}

// JudgeOutcome is the judge's reconciliation of the two answers.
type JudgeOutcome struct {
	Selection   Selection `json:"selection"`
	FinalAnswer string    `json:"finalAnswer"`
	Reasoning   string    `json:"reasoning"`
}

// PipelineResult is the sole externally visible artifact of one pipeline
// invocation.
type PipelineResult struct {
	CaptionOutcome CaptionOutcome `json:"captionOutcome"`
	DualAnswer     DualAnswer     `json:"dualAnswer"`
	JudgeOutcome   JudgeOutcome   `json:"judgeOutcome"`
	ProcessingMs   int64          `json:"processingTimeMs"`
}
