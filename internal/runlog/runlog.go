// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package runlog persists a summary of the last apply run in the XDG state
// directory so that `dbprovision status` can show it later.
package runlog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"dbprovision/cli/internal/logging"
	"dbprovision/cli/internal/provision"
	"dbprovision/cli/internal/xdg"
)

// FileName is the state file name inside the XDG state dir.
const FileName = "last-run.json"

// ErrNoRun is returned by Load when no run has been recorded.
var ErrNoRun = errors.New("no run recorded yet")

// statementLimit caps the recorded statement text, in runes.
const statementLimit = 500

// Failure is a reported statement failure. Statement is masked and truncated.
type Failure struct {
	Index     int    `json:"index"`
	Statement string `json:"statement"`
	Message   string `json:"message"`
}

// Record summarizes one apply run. Connection strings are stored masked.
type Record struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	File       string    `json:"file"`
	Connection string    `json:"connection"`
	Statements int       `json:"statements"`
	Success    bool      `json:"success"`
	Executed   int       `json:"executed"`
	Ignored    int       `json:"ignored"`
	Failures   []Failure `json:"failures,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// NewRecord builds a record from a finished batch.
func NewRecord(file, connString string, statements int, started time.Time, res *provision.Result) Record {
	rec := Record{
		StartedAt:  started.UTC(),
		FinishedAt: time.Now().UTC(),
		File:       file,
		Connection: logging.Mask(connString),
		Statements: statements,
		Success:    res.Success,
		Executed:   res.Executed,
		Ignored:    res.Ignored,
	}
	for _, f := range res.Failures {
		rec.Failures = append(rec.Failures, Failure{
			Index:     f.Index,
			Statement: logging.Truncate(logging.Mask(f.Statement), statementLimit),
			Message:   logging.Mask(f.Message()),
		})
	}
	if res.Err != nil {
		rec.Error = logging.Mask(res.Err.Error())
	}
	return rec
}

func path() (string, error) {
	dir, err := xdg.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Save writes rec with 0600 permissions, replacing the previous record.
func Save(rec Record) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// Load reads the last record. It returns ErrNoRun when none exists.
func Load() (Record, error) {
	var rec Record
	p, err := path()
	if err != nil {
		return rec, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return rec, ErrNoRun
	}
	if err != nil {
		return rec, err
	}
	err = json.Unmarshal(data, &rec)
	return rec, err
}

// Clear removes the recorded run.
func Clear() error {
	p, err := path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
