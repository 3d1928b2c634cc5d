// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal provides utilities for terminal detection and for
// clearing previously printed text.
package terminal

import (
	"os"

	"atomicgo.dev/cursor"
	"golang.org/x/term"
)

// DefaultWidth is assumed when the terminal size cannot be read.
const DefaultWidth = 80

// IsInteractive reports whether stdout is a terminal. Spinners and in-place
// updates are disabled when it is not.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Width returns the terminal width, or DefaultWidth when unknown.
func Width() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return DefaultWidth
}

// LinesFor returns how many terminal rows textLength characters occupy at
// the given width.
func LinesFor(textLength, width int) int {
	if width <= 0 {
		width = DefaultWidth
	}
	lines := (textLength + width - 1) / width
	if lines < 1 {
		lines = 1
	}
	return lines
}

// ClearPreviousLines removes a prompt and the user's answer from the
// terminal. textLength is the length of prompt plus input; one extra line is
// cleared for the newline the user typed.
func ClearPreviousLines(textLength int) {
	if !IsInteractive() {
		return
	}
	cursor.ClearLinesUp(LinesFor(textLength, Width()) + 1)
	cursor.StartOfLine()
}

// ReadSecret reads a line from stdin without echo when stdin is a terminal.
func ReadSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", os.ErrInvalid
	}
	b, err := term.ReadPassword(fd)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
