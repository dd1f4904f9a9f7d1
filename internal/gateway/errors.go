package gateway

import "errors"

// ErrorKind categorizes gateway failures.
type ErrorKind int

const (
	// KindValidation indicates a malformed request (empty instructions or an
	// unsupported media type) detected before any outbound call.
	KindValidation ErrorKind = iota
	// KindConfiguration indicates no credential is available to reach the
	// model capability.
	KindConfiguration
	// KindUpstream indicates the remote call failed or returned an unusable
	// transport response.
	KindUpstream
	// KindTimeout indicates the call exceeded its deadline or was cancelled.
	KindTimeout
)

// Error is a gateway failure with a categorized kind. It propagates unmodified
// through the pipeline stages up to the orchestrator.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind of err, or KindUpstream when err is not a
// gateway error.
func KindOf(err error) ErrorKind {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return KindUpstream
}
