package repository

import (
	"errors"
	"fmt"
)

// Sentinel failures for the two hard gates of the capture stage and the
// post-processing validation rules.
var (
	ErrNoPrintTrigger = errors.New("no print trigger matched any selector")
	ErrNoDocumentData = errors.New("print-to-PDF returned no document data")
	ErrEmptyMessage   = errors.New("overlay message is empty")
	ErrNoPages        = errors.New("captured document has no pages")
)

// NavigationError reports that the browser could not complete an
// authentication or navigation step: a control was missing, not
// interactable, or a page was unreachable.
type NavigationError struct {
	Step string
	Err  error
}

func (e *NavigationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("navigation failed at %q: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("navigation failed at %q", e.Step)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ProcessingError reports that the capture produced no usable document or
// that post-processing could not even fall back to a byte copy.
type ProcessingError struct {
	Op  string
	Err error
}

func (e *ProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pdf processing failed during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pdf processing failed during %s", e.Op)
}

func (e *ProcessingError) Unwrap() error { return e.Err }
