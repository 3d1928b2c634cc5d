// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package provision applies a batch of SQL statements over a single
// connection while tolerating statements whose target object already exists.
//
// Statements run strictly in order. A failed statement is classified as
// Ignored (duplicate/already exists) or Reported (anything else); neither
// stops the batch. After the last statement the batch is committed. Only a
// batch-level failure (commit error, fatal adapter error, cancellation or a
// panic while running a statement) rolls the batch back and clears
// Result.Success.
package provision

import (
	"context"
	"errors"
	"fmt"
)

// Conn is the connection handle a batch runs on. Implementations are not
// required to be safe for concurrent use; Execute never calls them
// concurrently.
type Conn interface {
	// Run executes one statement inside the batch transaction.
	Run(ctx context.Context, sql string) error
	// Commit finalizes the batch.
	Commit(ctx context.Context) error
	// Rollback discards the batch.
	Rollback(ctx context.Context) error
	// Close releases the connection.
	Close(ctx context.Context) error
}

// Observer is called after each statement with its outcome.
type Observer func(Outcome)

type options struct {
	classifier Classifier
	observer   Observer
}

// Option configures Execute.
type Option func(*options)

// WithClassifier replaces DefaultClassifier.
func WithClassifier(c Classifier) Option {
	return func(o *options) {
		if c != nil {
			o.classifier = c
		}
	}
}

// WithObserver registers a per-statement callback.
func WithObserver(fn Observer) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// Execute runs statements over conn in order and commits the batch.
// It never closes conn.
func Execute(ctx context.Context, conn Conn, statements []string, opts ...Option) (result *Result) {
	o := options{classifier: DefaultClassifier}
	for _, opt := range opts {
		opt(&o)
	}

	result = &Result{}
	defer func() {
		if r := recover(); r != nil {
			result.fail(ctx, conn, fmt.Errorf("panic while running statement %d: %v", len(result.Outcomes)+1, r))
		}
	}()

	for i, stmt := range statements {
		if err := ctx.Err(); err != nil {
			result.fail(ctx, conn, fmt.Errorf("interrupted before statement %d: %w", i+1, err))
			return result
		}

		err := conn.Run(ctx, stmt)
		if err != nil && errors.Is(err, ErrFatal) {
			result.fail(ctx, conn, fmt.Errorf("statement %d: %w", i+1, err))
			return result
		}

		outcome := Outcome{Index: i, Statement: stmt, Kind: Success}
		if err != nil {
			outcome.Kind = o.classifier.Classify(err)
			if outcome.Kind == Success {
				// a classifier may not turn an error into a success
				outcome.Kind = Reported
			}
			outcome.Err = err
		}
		result.record(outcome)
		if o.observer != nil {
			o.observer(outcome)
		}
	}

	if err := conn.Commit(ctx); err != nil {
		result.fail(ctx, conn, fmt.Errorf("commit failed: %w", err))
		return result
	}
	result.Success = true
	return result
}

// fail rolls back the batch once and records the cause.
func (r *Result) fail(ctx context.Context, conn Conn, cause error) {
	r.Success = false
	// rollback must still reach the server after cancellation
	rbCtx := context.WithoutCancel(ctx)
	if err := conn.Rollback(rbCtx); err != nil {
		cause = fmt.Errorf("%w (rollback failed: %v)", cause, err)
	}
	r.Err = cause
}
