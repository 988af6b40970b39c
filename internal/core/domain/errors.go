package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("domain: not found")
	ErrDatasetLoad  = errors.New("dataset load failed")
	ErrNoMatch      = errors.New("no valid songs found")
	ErrInvalidInput = errors.New("invalid input")
)

// DatasetLoadError reports a dataset that cannot back a catalog.
type DatasetLoadError struct {
	Source string
	Reason string
	Err    error
}

func (e DatasetLoadError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrDatasetLoad.Error(), e.Reason)
	if e.Source != "" {
		msg = fmt.Sprintf("%s: %s: %s", ErrDatasetLoad.Error(), e.Source, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e DatasetLoadError) Unwrap() error {
	return e.Err
}

func (e DatasetLoadError) Is(target error) bool {
	return target == ErrDatasetLoad
}

// NoMatchError is returned when none of the seed names resolve to a track.
type NoMatchError struct {
	Names []string
}

func (e NoMatchError) Error() string {
	return ErrNoMatch.Error()
}

// Detail lists the names that failed to resolve, for logs.
func (e NoMatchError) Detail() string {
	quoted := make([]string, len(e.Names))
	for i, n := range e.Names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return fmt.Sprintf("%s: %s", ErrNoMatch.Error(), strings.Join(quoted, ", "))
}

func (e NoMatchError) Is(target error) bool {
	return target == ErrNoMatch
}

// InvalidInputError signals a structurally invalid request.
type InvalidInputError struct {
	Reason string
}

func (e InvalidInputError) Error() string {
	if e.Reason == "" {
		return ErrInvalidInput.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput.Error(), e.Reason)
}

func (e InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
