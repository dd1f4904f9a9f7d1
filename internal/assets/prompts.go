// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at
// compile time. Static prompts are exposed as strings; prompts that embed
// pipeline data are pre-parsed text/template templates with Render* helpers.
package assets

import (
	"bytes"
	_ "embed"
	"text/template"
)

// --- Static prompts (no dynamic data) ---

// CaptionSystemPrompt is the system instruction for image caption generation.
//
//go:embed prompts/caption-system.txt
var CaptionSystemPrompt string

// CaptionUserPrompt is the user instruction for image caption generation.
//
//go:embed prompts/caption-user.txt
var CaptionUserPrompt string

// QualitySystemPrompt is the system instruction for caption quality scoring.
// It instructs the model to answer in a fixed JSON shape.
//
//go:embed prompts/quality-system.txt
var QualitySystemPrompt string

// DiagnosisSystemPrompt is the system instruction for the diagnosis-oriented
// question-answering call.
//
//go:embed prompts/diagnosis-system.txt
var DiagnosisSystemPrompt string

// ManagementSystemPrompt is the system instruction for the management-oriented
// question-answering call.
//
//go:embed prompts/management-system.txt
var ManagementSystemPrompt string

// JudgeSystemPrompt is the system instruction for reconciling the two answers.
//
//go:embed prompts/judge-system.txt
var JudgeSystemPrompt string

// UnifiedSystemPrompt is the system instruction for single-call unified
// diagnosis mode.
//
//go:embed prompts/unified-system.txt
var UnifiedSystemPrompt string

// --- Dynamic prompt templates (require pipeline data) ---

//go:embed prompts/quality-user.txt
var qualityUserTemplate string

//go:embed prompts/diagnosis-user.txt
var diagnosisUserTemplate string

//go:embed prompts/management-user.txt
var managementUserTemplate string

//go:embed prompts/judge-user.txt
var judgeUserTemplate string

//go:embed prompts/unified-user.txt
var unifiedUserTemplate string

// Pre-parsed templates for efficiency. template.Must panics on malformed
// templates, catching errors at program startup rather than at call time.
var (
	qualityUserTmpl    = template.Must(template.New("quality").Parse(qualityUserTemplate))
	diagnosisUserTmpl  = template.Must(template.New("diagnosis").Parse(diagnosisUserTemplate))
	managementUserTmpl = template.Must(template.New("management").Parse(managementUserTemplate))
	judgeUserTmpl      = template.Must(template.New("judge").Parse(judgeUserTemplate))
	unifiedUserTmpl    = template.Must(template.New("unified").Parse(unifiedUserTemplate))
)

// promptData holds the dynamic data injected into prompt templates.
type promptData struct {
	Caption          string
	Question         string
	DiagnosisAnswer  string
	ManagementAnswer string
}

// RenderQualityPrompt renders the caption quality-evaluation user prompt.
func RenderQualityPrompt(caption string) string {
	return renderTemplate(qualityUserTmpl, promptData{Caption: caption})
}

// RenderDiagnosisPrompt renders the diagnosis-oriented question-answering
// user prompt. question may be empty.
func RenderDiagnosisPrompt(caption, question string) string {
	return renderTemplate(diagnosisUserTmpl, promptData{Caption: caption, Question: question})
}

// RenderManagementPrompt renders the management-oriented question-answering
// user prompt. question may be empty.
func RenderManagementPrompt(caption, question string) string {
	return renderTemplate(managementUserTmpl, promptData{Caption: caption, Question: question})
}

// RenderJudgePrompt renders the judge user prompt embedding the caption, both
// answers, and the optional question.
func RenderJudgePrompt(caption, diagnosisAnswer, managementAnswer, question string) string {
	return renderTemplate(judgeUserTmpl, promptData{
		Caption:          caption,
		Question:         question,
		DiagnosisAnswer:  diagnosisAnswer,
		ManagementAnswer: managementAnswer,
	})
}

// RenderUnifiedPrompt renders the single-call unified diagnosis user prompt.
// question may be empty.
func RenderUnifiedPrompt(question string) string {
	return renderTemplate(unifiedUserTmpl, promptData{Question: question})
}

// renderTemplate executes a pre-parsed template with the given data.
func renderTemplate(tmpl *template.Template, data promptData) string {
	var buf bytes.Buffer
	// Template execution errors are not expected with our simple templates,
	// but we handle them gracefully by returning whatever was rendered.
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}
