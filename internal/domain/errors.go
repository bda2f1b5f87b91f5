package domain

import "errors"

var (
	// ErrSubmission indicates the render job could not be started.
	ErrSubmission = errors.New("render job could not be started")
	// ErrRenderTimeout indicates the poll attempt budget was exhausted
	// without a terminal result.
	ErrRenderTimeout = errors.New("render polling timed out")
	// ErrCompose indicates a source image could not be decoded or the
	// document merge failed.
	ErrCompose = errors.New("artifact composition failed")
	// ErrUpload indicates a storage write failure or an unsupported media
	// kind.
	ErrUpload = errors.New("artifact upload failed")
)

// GenerationError is the umbrella error surfaced to callers of the
// orchestrator. Message is safe to show to an end user; Err preserves the
// underlying cause for logs and errors.Is checks.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }
