// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package provision

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFatal marks an adapter error after which the batch cannot continue,
// such as a lost connection or a savepoint that could not be restored.
var ErrFatal = errors.New("fatal connection error")

// Fatal wraps err so that errors.Is(err, ErrFatal) holds.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrFatal, err)
}

// StatementError carries a structured driver code alongside a statement error.
// Adapters set Code when the driver exposes one; Duplicate tells whether that
// code denotes an object-already-exists or duplicate-key condition.
type StatementError struct {
	Code      string
	Duplicate bool
	Err       error
}

func (e *StatementError) Error() string {
	if e.Err == nil {
		return "statement failed"
	}
	return e.Err.Error()
}

func (e *StatementError) Unwrap() error { return e.Err }

// Classifier decides whether a failed statement can be ignored.
type Classifier interface {
	Classify(err error) Kind
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(err error) Kind

// Classify calls f(err).
func (f ClassifierFunc) Classify(err error) Kind { return f(err) }

// duplicateMarkers are matched against the lower-cased error message when no
// structured code is available. This is a heuristic: it depends on the
// server's message language and wording.
var duplicateMarkers = []string{"already exists", "duplicate"}

// DefaultClassifier prefers the structured code on a StatementError and falls
// back to substring matching on the message.
var DefaultClassifier Classifier = ClassifierFunc(classify)

func classify(err error) Kind {
	if err == nil {
		return Success
	}
	var se *StatementError
	if errors.As(err, &se) && se.Code != "" {
		if se.Duplicate {
			return Ignored
		}
		return Reported
	}
	if IsDuplicateMessage(err.Error()) {
		return Ignored
	}
	return Reported
}

// IsDuplicateMessage reports whether msg looks like an object-already-exists
// or duplicate error.
func IsDuplicateMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range duplicateMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
