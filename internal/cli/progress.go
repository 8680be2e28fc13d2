package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// encodeProgressReporter draws a one-line spinner while roots are encoded.
// Update is called from the export workers, so the line is guarded by mu.
type encodeProgressReporter struct {
	mu      sync.Mutex
	out     io.Writer
	enabled bool
	label   string
	start   time.Time
	spinner int
	lastLen int
}

func newEncodeProgressReporter(out io.Writer, label string, asJSON bool) *encodeProgressReporter {
	return &encodeProgressReporter{
		out:     out,
		enabled: isTerminal(out) && !asJSON,
		label:   label,
		start:   time.Now(),
	}
}

func (r *encodeProgressReporter) Update(done, total int, name string) {
	if !r.enabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	name = truncateName(strings.TrimSpace(name), maxProgressName)
	r.printStatus(fmt.Sprintf("%s %s %d/%d %s", frame, r.label, done, total, name))
}

func (r *encodeProgressReporter) Done(count int) {
	if !r.enabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.start).Round(time.Millisecond)
	r.printStatus(fmt.Sprintf("%s complete (%d definitions in %s)", r.label, count, elapsed))
	fmt.Fprintln(r.out)
}

func (r *encodeProgressReporter) printStatus(status string) {
	width := utf8.RuneCountInString(status)
	if r.lastLen > width {
		status += strings.Repeat(" ", r.lastLen-width)
		width = r.lastLen
	}
	r.lastLen = width
	fmt.Fprintf(r.out, "\r%s", status)
}

const maxProgressName = 72

// truncateName shortens name to at most max runes, marking the cut with "...".
func truncateName(name string, max int) string {
	if utf8.RuneCountInString(name) <= max {
		return name
	}
	runes := []rune(name)
	return string(runes[:max-3]) + "..."
}
