// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package provision

import "fmt"

// Kind classifies what happened to a single statement.
type Kind int

const (
	// Success means the statement ran without error.
	Success Kind = iota
	// Ignored means the statement failed because its object already exists.
	Ignored
	// Reported means the statement failed for any other reason.
	Reported
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Ignored:
		return "ignored"
	case Reported:
		return "reported"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of running one statement.
type Outcome struct {
	// Index is the zero-based position of the statement in the batch.
	Index int
	// Statement is the SQL text that was run.
	Statement string
	Kind      Kind
	// Err is set for Ignored and Reported outcomes.
	Err error
}

// Message returns the underlying error message, or "" on success.
func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Result aggregates the outcomes of a batch.
type Result struct {
	// Success is true when the batch committed. Reported statement failures
	// do not clear it.
	Success bool
	// Executed counts statements that ran without error.
	Executed int
	// Ignored counts statements skipped as already existing.
	Ignored int
	// Failures lists the Reported outcomes in order.
	Failures []Outcome
	// Outcomes lists every outcome in order.
	Outcomes []Outcome
	// Err holds the batch-level error when Success is false.
	Err error
}

// Clean reports whether the batch committed with no reported failures.
func (r *Result) Clean() bool {
	return r.Success && len(r.Failures) == 0
}

func (r *Result) record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Kind {
	case Success:
		r.Executed++
	case Ignored:
		r.Ignored++
	case Reported:
		r.Failures = append(r.Failures, o)
	}
}
