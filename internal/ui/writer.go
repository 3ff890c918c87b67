// Package ui provides formatted console output for the agent run.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	grayColor    = color.New(color.FgWhite, color.Faint)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.FgCyan, color.Bold)
	addedColor   = color.New(color.FgGreen)
	removedColor = color.New(color.FgRed)
)

// Writer prints agent progress with consistent prefixes and colors.
type Writer struct {
	quiet bool
	out   io.Writer
}

// NewWriter returns a Writer printing to stdout.
func NewWriter() *Writer {
	return &Writer{out: os.Stdout}
}

// SetOutput redirects output, used by tests.
func (w *Writer) SetOutput(out io.Writer) { w.out = out }

// SetQuiet suppresses everything except errors and the final result.
func (w *Writer) SetQuiet(quiet bool) { w.quiet = quiet }

// Round announces the start of a generation round.
func (w *Writer) Round(n, max int) {
	if w.quiet {
		return
	}
	headerColor.Fprintf(w.out, "=== round %d/%d ===\n", n, max)
}

// Info prints an info message with [info] prefix in gray.
func (w *Writer) Info(msg string) {
	if w.quiet {
		return
	}
	grayColor.Fprintf(w.out, "[info] %s\n", msg)
}

// Warn prints a warning message with [warn] prefix in yellow.
func (w *Writer) Warn(msg string) {
	if w.quiet {
		return
	}
	warnColor.Fprintf(w.out, "[warn] %s\n", msg)
}

// Error prints an error message with [error] prefix in red. Not silenced
// by quiet mode.
func (w *Writer) Error(msg string) {
	errorColor.Fprintf(w.out, "[error] %s\n", msg)
}

// Result prints the final outcome. Not silenced by quiet mode.
func (w *Writer) Result(msg string) {
	fmt.Fprintf(w.out, "%s\n", msg)
}

// Diff prints a unified diff with added lines in green and removed lines
// in red.
func (w *Writer) Diff(diff string) {
	if w.quiet || diff == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			grayColor.Fprintln(w.out, line)
		case strings.HasPrefix(line, "+"):
			addedColor.Fprintln(w.out, line)
		case strings.HasPrefix(line, "-"):
			removedColor.Fprintln(w.out, line)
		case strings.HasPrefix(line, "@@"):
			headerColor.Fprintln(w.out, line)
		default:
			fmt.Fprintln(w.out, line)
		}
	}
}

// Output prints captured program output, indented for visual grouping.
func (w *Writer) Output(output string) {
	if w.quiet || output == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(output, "\n"), "\n") {
		grayColor.Fprintf(w.out, "    %s\n", line)
	}
}
