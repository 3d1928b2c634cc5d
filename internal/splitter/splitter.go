// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package splitter turns a raw SQL script into an ordered list of statements.
//
// Two modes are available. The naive mode splits on every ';' and has no
// notion of quoting, so a semicolon inside a string literal or comment breaks
// the statement in two. The aware mode scans quotes, dollar-quoted bodies and
// comments before splitting. Neither mode validates SQL.
package splitter

import (
	"fmt"
	"strings"
)

// Terminator separates statements in a script.
const Terminator = ";"

// CommentMarker starts a line comment.
const CommentMarker = "--"

// Mode selects the splitting strategy.
type Mode string

const (
	// ModeNaive splits on every terminator.
	ModeNaive Mode = "naive"
	// ModeAware ignores terminators inside quotes, dollar quotes and comments.
	ModeAware Mode = "aware"
)

// ParseMode converts a config or flag value into a Mode. Empty selects ModeNaive.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeNaive:
		return ModeNaive, nil
	case ModeAware:
		return ModeAware, nil
	default:
		return "", fmt.Errorf("unknown split mode %q (use %q or %q)", s, ModeNaive, ModeAware)
	}
}

// Split splits text using the mode's strategy.
func (m Mode) Split(text string) []string {
	if m == ModeAware {
		return SplitAware(text)
	}
	return Split(text)
}

// Split partitions text on ';' and returns the trimmed, non-empty,
// non-comment fragments in textual order.
func Split(text string) []string {
	return filter(strings.Split(text, Terminator))
}

// filter trims fragments and drops the ones that carry no statement.
func filter(fragments []string) []string {
	statements := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		if stmt := clean(fragment); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// clean trims a fragment and strips whole comment lines at its head.
// A fragment made only of comment lines becomes empty.
func clean(fragment string) string {
	stmt := strings.TrimSpace(fragment)
	for strings.HasPrefix(stmt, CommentMarker) {
		nl := strings.IndexByte(stmt, '\n')
		if nl < 0 {
			return ""
		}
		stmt = strings.TrimSpace(stmt[nl+1:])
	}
	return stmt
}
