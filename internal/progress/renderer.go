// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package progress renders the per-statement progress of an apply run: a
// live spinner line on terminals, plain status lines elsewhere, inline
// warnings for reported failures and a closing summary box.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"dbprovision/cli/internal/logging"
	"dbprovision/cli/internal/provision"
)

// WarningWidth is how many characters of a failure message are shown inline.
const WarningWidth = 100

// braille spinner frames similar to docker CLI
var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const tick = 120 * time.Millisecond

// Renderer prints statement outcomes. Observe is safe to use as a
// provision.Observer.
type Renderer struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	verbose     bool

	total    int
	done     int
	ignored  int
	reported int
	frameIdx int

	area *pterm.AreaPrinter
	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates a renderer writing to out. interactive enables the live
// spinner area; verbose prints a line for every statement.
func New(out io.Writer, interactive, verbose bool) *Renderer {
	return &Renderer{out: out, interactive: interactive, verbose: verbose}
}

// Start begins rendering a batch of total statements.
func (r *Renderer) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
	fmt.Fprintln(r.out, pterm.NewStyle(pterm.FgLightCyan).Sprintf("→ Applying %d statements", total))
	r.startArea()
}

// Observe records one statement outcome.
func (r *Renderer) Observe(o provision.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	switch o.Kind {
	case provision.Ignored:
		r.ignored++
	case provision.Reported:
		r.reported++
	}

	line := ""
	if o.Kind == provision.Reported {
		line = WarningLine(o)
	} else if r.verbose {
		line = StatusLine(o)
	}
	if line == "" {
		return
	}
	// the live area must be removed before anything else is printed
	r.stopArea()
	fmt.Fprintln(r.out, line)
	if r.done < r.total {
		r.startArea()
	}
}

// Finish stops the spinner and prints the summary for res.
func (r *Renderer) Finish(res *provision.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopArea()
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, Summary(res))
}

func (r *Renderer) startArea() {
	if !r.interactive || r.area != nil {
		return
	}
	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return
	}
	area.SetWriter(r.out)
	r.area = area
	r.stop = make(chan struct{})
	r.wg.Add(1)
	go func(stop chan struct{}) {
		defer r.wg.Done()
		t := time.NewTicker(tick)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				r.mu.Lock()
				if r.area != nil {
					r.frameIdx++
					r.area.Update(r.spinnerLine())
				}
				r.mu.Unlock()
			case <-stop:
				return
			}
		}
	}(r.stop)
}

// stopArea must be called with r.mu held.
func (r *Renderer) stopArea() {
	if r.area == nil {
		return
	}
	close(r.stop)
	// the ticker goroutine may be waiting on r.mu
	r.mu.Unlock()
	r.wg.Wait()
	r.mu.Lock()
	_ = r.area.Stop()
	r.area = nil
	cursor.Show()
}

func (r *Renderer) spinnerLine() string {
	return fmt.Sprintf("%s applying statement %d/%d", frames[r.frameIdx%len(frames)], r.done+1, r.total)
}

// StatusLine describes a single outcome on one line.
func StatusLine(o provision.Outcome) string {
	n := o.Index + 1
	head := logging.Truncate(logging.Mask(firstLine(o.Statement)), 60)
	switch o.Kind {
	case provision.Success:
		return pterm.NewStyle(pterm.FgGreen).Sprint("✓ ") + fmt.Sprintf("[%d] %s", n, head)
	case provision.Ignored:
		return pterm.NewStyle(pterm.FgGray).Sprint("↷ ") + fmt.Sprintf("[%d] %s (already exists)", n, head)
	default:
		return WarningLine(o)
	}
}

// WarningLine renders a reported failure with its message cut to
// WarningWidth characters. Credentials in the message are masked.
func WarningLine(o provision.Outcome) string {
	msg := logging.Truncate(logging.Mask(firstLine(o.Message())), WarningWidth)
	return pterm.NewStyle(pterm.FgYellow).Sprint("⚠ ") + fmt.Sprintf("Warning on statement %d: %s", o.Index+1, msg)
}

// Summary renders the closing box for res.
func Summary(res *provision.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Executed: %d\n", res.Executed)
	fmt.Fprintf(&b, "Already existed: %d\n", res.Ignored)
	fmt.Fprintf(&b, "Failed: %d", len(res.Failures))

	title := pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint("Setup complete")
	switch {
	case !res.Success:
		title = pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Setup rolled back")
		if res.Err != nil {
			fmt.Fprintf(&b, "\nCause: %s", logging.Truncate(logging.Mask(res.Err.Error()), WarningWidth))
		}
	case !res.Clean():
		title = pterm.NewStyle(pterm.FgYellow, pterm.Bold).Sprint("Setup complete with warnings")
	}
	return pterm.DefaultBox.WithTitle(title).WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).Sprint(b.String())
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i]) + " …"
	}
	return s
}
