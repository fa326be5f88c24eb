// Package status prints build-tool style progress lines: a right-aligned
// verb followed by a message, e.g.
//
//	  Generating `api_server`
//	   Generated `api_server` in 0.412s
//
// Color and hyperlink handling belong to the terminal layer and are out of
// scope here; output is plain text.
package status

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Verbosity controls how much a Shell prints.
type Verbosity int

const (
	// Normal prints status lines and errors.
	Normal Verbosity = iota
	// Quiet suppresses status lines but never errors.
	Quiet
)

// Shell writes status and error lines to a single destination.
type Shell struct {
	out       io.Writer
	verbosity Verbosity
}

// New returns a Shell writing to out with the given verbosity.
func New(out io.Writer, verbosity Verbosity) *Shell {
	return &Shell{out: out, verbosity: verbosity}
}

// Verbosity returns the shell's configured verbosity.
func (s *Shell) Verbosity() Verbosity {
	return s.verbosity
}

// Status prints one right-aligned status line unless the shell is quiet.
func (s *Shell) Status(verb, message string) {
	if s.verbosity == Quiet {
		return
	}
	fmt.Fprintf(s.out, "%12s %s\n", verb, message)
}

// Error prints an error headline. It is never suppressed.
func (s *Shell) Error(message string) {
	fmt.Fprintf(s.out, "error: %s\n", message)
}

// ErrorChain prints err's message followed by each wrapped cause, indented
// under a "Caused by:" header, so the underlying tool's diagnostics stay
// visible.
func (s *Shell) ErrorChain(err error) {
	s.Error(err.Error())
	for cause := unwrap(err); cause != nil; cause = unwrap(cause) {
		fmt.Fprintf(s.out, "\nCaused by:\n%s\n", indent(cause.Error(), "    "))
	}
}

func unwrap(err error) error {
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		return u.Unwrap()
	}
	return nil
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimFunc(line, unicode.IsSpace) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
