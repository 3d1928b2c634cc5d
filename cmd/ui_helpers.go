// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"dbprovision/cli/internal/dbconn"
	"dbprovision/cli/internal/logging"
)

var spinnerFrames = []string{"-", "\\", "|", "/"}

// startInlineSpinner starts a simple inline spinner animation on a single line.
// It displays rotating animation frames followed by text, updating the same
// line. The returned function stops the spinner and clears the line.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	cursor.Hide()
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
			select {
			case <-stop:
				// clear the spinner line completely
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s", line)
				i++
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			cursor.Show()
		})
	}
}

func stringListToBulletItems(items []string) (out []pterm.BulletListItem) {
	for _, s := range items {
		out = append(out, pterm.BulletListItem{Level: 0, Text: s})
	}
	return out
}

// serverInfoText formats what Describe reported, one field per line.
func serverInfoText(info *dbconn.ServerInfo) string {
	tables := "(none yet)"
	if len(info.Tables) > 0 {
		tables = strings.Join(info.Tables, ", ")
	}
	return fmt.Sprintf("Server:   %s\nTables:   %s", logging.Truncate(info.Version, 60), tables)
}
