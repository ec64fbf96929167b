package core

import (
	"errors"
	"fmt"
)

// ErrEmptyReply is returned when a model answers with no content.
var ErrEmptyReply = errors.New("model returned an empty reply")

// ModelFailure wraps an error from a text-generation backend.
type ModelFailure struct {
	Backend string
	Err     error
}

func (e *ModelFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

func (e *ModelFailure) Unwrap() error { return e.Err }

// OCRFailure wraps an error from the text recognition engine.
type OCRFailure struct {
	Err error
}

func (e *OCRFailure) Error() string {
	return fmt.Sprintf("ocr: %v", e.Err)
}

func (e *OCRFailure) Unwrap() error { return e.Err }
