package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sukyumee/lettuce-diagnosis-app/internal/cpj"
	"github.com/sukyumee/lettuce-diagnosis-app/internal/imagefile"
)

// FormatDurationShort formats a duration in a short format (M:SS or H:MM:SS).
func FormatDurationShort(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// PrintResult renders a pipeline result for the terminal.
func PrintResult(w io.Writer, result *cpj.PipelineResult) {
	divider := strings.Repeat("=", 60)

	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, "DIAGNOSIS")
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, result.JudgeOutcome.FinalAnswer)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Selection:      %s\n", result.JudgeOutcome.Selection)
	if result.JudgeOutcome.Reasoning != "" {
		fmt.Fprintf(w, "Reasoning:      %s\n", result.JudgeOutcome.Reasoning)
	}
	fmt.Fprintf(w, "Caption score:  %d/10 (%d attempt(s))\n",
		result.CaptionOutcome.QualityScore, result.CaptionOutcome.Attempts)
	fmt.Fprintf(w, "Processing:     %s\n",
		FormatDurationShort(time.Duration(result.ProcessingMs)*time.Millisecond))
}

// PrintResultVerbose renders the full result including the intermediate
// caption and both answers.
func PrintResultVerbose(w io.Writer, result *cpj.PipelineResult) {
	divider := strings.Repeat("-", 60)

	fmt.Fprintln(w, "CAPTION")
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, result.CaptionOutcome.Caption)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "DIAGNOSIS ANSWER")
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, result.DualAnswer.DiagnosisAnswer)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "MANAGEMENT ANSWER")
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, result.DualAnswer.ManagementAnswer)
	fmt.Fprintln(w)

	PrintResult(w, result)
}

// PrintImageMetadata renders capture context when a photo carries EXIF data.
func PrintImageMetadata(w io.Writer, md *imagefile.Metadata) {
	if md == nil {
		return
	}
	if md.HasDate {
		fmt.Fprintf(w, "Photo taken:    %s\n", md.DateTaken.Format("2006-01-02 15:04"))
	}
	if md.HasGPS {
		fmt.Fprintf(w, "Location:       %.5f, %.5f\n", md.Latitude, md.Longitude)
	}
	if md.CameraMake != "" || md.CameraModel != "" {
		fmt.Fprintf(w, "Camera:         %s %s\n", md.CameraMake, md.CameraModel)
	}
}
