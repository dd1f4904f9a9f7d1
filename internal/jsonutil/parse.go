// Package jsonutil provides utilities for extracting and parsing JSON from
// LLM responses that may be wrapped in markdown code fences or embedded in prose.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripMarkdownFences removes ```json ... ``` or ``` ... ``` wrapping from text.
// Returns the content between the fences, or the original text if no fences are found.
func StripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	startIdx := 1 // skip the opening ``` line
	endIdx := len(lines) - 1

	// Find the closing ```
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}

	return strings.Join(lines[startIdx:endIdx], "\n")
}

// ExtractJSON finds and returns the JSON object from text that may contain
// surrounding non-JSON content. It takes the span from the first { to the
// last }, a greedy match rather than a balanced-brace parse. Models are
// trusted to emit at most one JSON object per response.
func ExtractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return "", fmt.Errorf("no JSON object found")
	}

	text = text[startIdx:]
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 {
		return "", fmt.Errorf("no closing } found")
	}

	return text[:endIdx+1], nil
}

// DecodeObject strips markdown fences from raw LLM response text, extracts the
// JSON object span, and decodes it into a generic map. The second return is
// false when no span exists or the span fails to decode; callers supply their
// own defaults on a miss rather than failing.
func DecodeObject(raw string) (map[string]any, bool) {
	text := StripMarkdownFences(raw)
	jsonStr, err := ExtractJSON(text)
	if err != nil {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// StringOr returns the string value of obj[key], or fallback when the key is
// absent, empty, or not a string.
func StringOr(obj map[string]any, key, fallback string) string {
	if v, ok := obj[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// NumberOr returns the numeric value of obj[key], or fallback when the key is
// absent or not a number.
func NumberOr(obj map[string]any, key string, fallback float64) float64 {
	if v, ok := obj[key].(float64); ok {
		return v
	}
	return fallback
}
