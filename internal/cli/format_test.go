package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/cpj"
)

func TestFormatDurationShort(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Second, "0:42"},
		{3 * time.Minute, "3:00"},
		{90 * time.Minute, "1:30:00"},
		{0, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatDurationShort(tt.d); got != tt.want {
			t.Errorf("FormatDurationShort(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func sampleResult() *cpj.PipelineResult {
	return &cpj.PipelineResult{
		CaptionOutcome: cpj.CaptionOutcome{
			Caption:      "romaine with tip burn on inner leaves",
			QualityScore: 9,
			Attempts:     2,
		},
		DualAnswer: cpj.DualAnswer{
			DiagnosisAnswer:  "calcium transport issue",
			ManagementAnswer: "reduce EC, improve airflow",
		},
		JudgeOutcome: cpj.JudgeOutcome{
			Selection:   cpj.SelectionCombined,
			FinalAnswer: "tip burn; reduce EC and improve airflow",
			Reasoning:   "answers are complementary",
		},
		ProcessingMs: 4210,
	}
}

func TestPrintResult(t *testing.T) {
	var sb strings.Builder
	PrintResult(&sb, sampleResult())
	out := sb.String()

	for _, want := range []string{
		"tip burn; reduce EC and improve airflow",
		"combined",
		"9/10 (2 attempt(s))",
		"0:04",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintResultVerbose_IncludesIntermediates(t *testing.T) {
	var sb strings.Builder
	PrintResultVerbose(&sb, sampleResult())
	out := sb.String()

	for _, want := range []string{
		"romaine with tip burn on inner leaves",
		"calcium transport issue",
		"reduce EC, improve airflow",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose output missing %q", want)
		}
	}
}
