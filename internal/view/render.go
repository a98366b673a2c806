// Package view renders the food inventory in a terminal: the food list with
// its loading and error states, the new-food form and the interactive page.
package view

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/mamadbah2/frdg/internal/domain/models"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGrey   = "\x1b[90m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiBold   = "\x1b[1m"
)

// Messages shown by the views.
const (
	MessageLoading = "Loading..."
	MessageError   = "Oops, something went wrong!"
	MessageEmpty   = "Nothing in the fridge."
	Title          = "FRDG"
)

// Styler decorates text with ANSI colours when the output is a terminal.
type Styler struct {
	Color bool
}

// StylerFor enables colour only when w is a terminal.
func StylerFor(w io.Writer) Styler {
	f, ok := w.(*os.File)
	if !ok {
		return Styler{}
	}
	return Styler{Color: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())}
}

// Severity styles a best-before line. Without colour, non-neutral severities
// get a textual marker instead.
func (s Styler) Severity(text string, severity models.Severity) string {
	if !s.Color {
		if severity == models.SeverityNeutral {
			return text
		}
		return fmt.Sprintf("%s [%s]", text, severity)
	}

	switch severity {
	case models.SeverityWarning:
		return ansiYellow + text + ansiReset
	case models.SeverityAlert:
		return ansiRed + text + ansiReset
	default:
		return ansiGrey + text + ansiReset
	}
}

// Bold styles headings.
func (s Styler) Bold(text string) string {
	if !s.Color {
		return text
	}
	return ansiBold + text + ansiReset
}

// syncWriter serializes writes from the page and from cache notifications.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newSyncWriter(w io.Writer) *syncWriter {
	if sw, ok := w.(*syncWriter); ok {
		return sw
	}
	return &syncWriter{w: w}
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *syncWriter) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.w, format, args...)
}
