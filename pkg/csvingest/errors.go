package csvingest

import (
	"errors"
	"fmt"
)

var (
	// ErrReadFailure reports that the file content could not be read as text.
	ErrReadFailure = errors.New("csvingest: read failure")
	// ErrEmptyResult reports that the file produced zero data rows.
	ErrEmptyResult = errors.New("csvingest: empty result")
)

// Kind classifies an ingestion failure.
type Kind string

const (
	KindReadFailure Kind = "ReadFailure"
	KindEmptyResult Kind = "EmptyResult"
)

// IngestionError carries the failure kind, the file name and the cause.
// errors.Is matches it against ErrReadFailure or ErrEmptyResult.
type IngestionError struct {
	Kind Kind
	File string
	Err  error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("csvingest: %s %q: %v", e.Kind, e.File, e.Err)
	}
	return fmt.Sprintf("csvingest: %s %q", e.Kind, e.File)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *IngestionError) Is(target error) bool {
	switch target {
	case ErrReadFailure:
		return e.Kind == KindReadFailure
	case ErrEmptyResult:
		return e.Kind == KindEmptyResult
	default:
		return false
	}
}

func readFailure(file string, err error) error {
	return &IngestionError{Kind: KindReadFailure, File: file, Err: err}
}

func emptyResult(file string) error {
	return &IngestionError{Kind: KindEmptyResult, File: file}
}
