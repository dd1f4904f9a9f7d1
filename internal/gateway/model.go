package gateway

import "os"

// Gemini model IDs.
const (
	// ModelGemini3FlashPreview is best for speed + intelligence.
	ModelGemini3FlashPreview = "gemini-3-flash-preview"

	// ModelGemini25Pro is stable, for high-reasoning tasks.
	ModelGemini25Pro = "gemini-2.5-pro"

	// ModelGemini25Flash is stable, balanced performance.
	ModelGemini25Flash = "gemini-2.5-flash"
)

// DefaultModelName is the default Gemini model to use.
// Can be overridden via the GEMINI_MODEL environment variable.
const DefaultModelName = ModelGemini3FlashPreview

// GetModelName returns the Gemini model to use, resolved from:
//  1. GEMINI_MODEL environment variable (if set)
//  2. Default: gemini-3-flash-preview
func GetModelName() string {
	if env := os.Getenv("GEMINI_MODEL"); env != "" {
		return env
	}
	return DefaultModelName
}
