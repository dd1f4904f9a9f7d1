// Package gateway wraps calls to the hosted model capability behind a small
// interface so the pipeline stages can be exercised against test doubles.
package gateway

import "context"

// Image is an inline image payload sent alongside a user instruction.
type Image struct {
	Data     []byte
	MIMEType string
}

// Model sends one instruction pair (and optionally an image) to the hosted
// model and returns the concatenated text of the response. Implementations
// make exactly one outbound call per invocation; retry policy belongs to
// the caller.
type Model interface {
	Invoke(ctx context.Context, system, user string, image *Image) (string, error)
}

// supportedMediaTypes is the fixed set of image media types the model
// capability accepts.
var supportedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// SupportedMediaType reports whether the model capability accepts mediaType
// for inline image payloads.
func SupportedMediaType(mediaType string) bool {
	return supportedMediaTypes[mediaType]
}
