package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Mode is what the invocation asks wsgen to do.
type Mode int

const (
	// ModeGenerate runs the generation phase and then forwards the command
	// to the build tool.
	ModeGenerate Mode = iota
	// ModeVerify runs the verification phase and stops; nothing is ever
	// forwarded.
	ModeVerify
	// ModeForward forwards the command without any generation. Used for
	// subcommands whose outcome cannot be affected by stale generated code.
	ModeForward
)

// Options is the parsed invocation.
type Options struct {
	Mode Mode
	// Passthrough is the subcommand plus every following argument, verbatim,
	// exactly as it will be handed to the build tool.
	Passthrough []string

	// Recognized package-selection flags, scanned out of the passthrough
	// arguments without consuming them.
	Packages  []string
	Excludes  []string
	Workspace bool

	Quiet     bool
	Tool      string
	LogLevel  string
	LogFormat string
}

// delegatedFamily lists the build-tool subcommands whose outcome can be
// affected by code generation, so generation must run first.
var delegatedFamily = map[string]bool{
	"build": true, "b": true,
	"check": true, "c": true,
	"test": true, "t": true,
	"run": true, "r": true,
	"doc": true, "d": true,
	"bench":   true,
	"publish": true,
}

// VerifySubcommand triggers the freshness-verification phase.
const VerifySubcommand = "verify-freshness"

// Parse processes command-line arguments. wsgen's own flags come before the
// subcommand; everything from the subcommand onward is passed through to the
// build tool verbatim. It returns the parsed options, a boolean indicating a
// clean early exit (help), or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("wsgen", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `wsgen - workspace code-generation orchestrator.

Runs the code generators declared by your workspace packages, in dependency
order, before handing your command to the build tool.

Usage:
  wsgen [options] <subcommand> [build tool arguments...]
  wsgen [options] verify-freshness

Options:
`)
		flagSet.PrintDefaults()
	}

	toolFlag := flagSet.String("tool", "", "Build tool executable to delegate to.")
	quietFlag := flagSet.Bool("q", false, "Suppress status output (shorthand).")
	quietLongFlag := flagSet.Bool("quiet", false, "Suppress status output.")
	logLevelFlag := flagSet.String("log-level", "", "Logging level: 'debug', 'info', 'warn', or 'error'.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format: 'text' or 'json'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if level := strings.ToLower(*logLevelFlag); level != "" {
		switch level {
		case "debug", "info", "warn", "error":
		default:
			return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
		}
	}
	if format := strings.ToLower(*logFormatFlag); format != "" && format != "text" && format != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	opts := &Options{
		Passthrough: rest,
		Quiet:       *quietFlag || *quietLongFlag,
		Tool:        *toolFlag,
		LogLevel:    strings.ToLower(*logLevelFlag),
		LogFormat:   strings.ToLower(*logFormatFlag),
	}

	subcommand := rest[0]
	switch {
	case subcommand == VerifySubcommand:
		opts.Mode = ModeVerify
	case delegatedFamily[subcommand]:
		opts.Mode = ModeGenerate
	default:
		opts.Mode = ModeForward
	}

	scanSelectionFlags(rest[1:], opts)

	return opts, false, nil
}

// scanSelectionFlags picks the recognized package-selection flags out of the
// delegated arguments. The arguments themselves stay untouched; anything we
// don't recognize passes through verbatim, and everything after "--" belongs
// to the invoked binary rather than the build tool.
func scanSelectionFlags(args []string, opts *Options) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return
		case arg == "-p" || arg == "--package":
			if i+1 < len(args) {
				i++
				opts.Packages = append(opts.Packages, args[i])
			}
		case strings.HasPrefix(arg, "--package="):
			opts.Packages = append(opts.Packages, strings.TrimPrefix(arg, "--package="))
		case strings.HasPrefix(arg, "-p") && len(arg) > 2:
			opts.Packages = append(opts.Packages, arg[2:])
		case arg == "--exclude":
			if i+1 < len(args) {
				i++
				opts.Excludes = append(opts.Excludes, args[i])
			}
		case strings.HasPrefix(arg, "--exclude="):
			opts.Excludes = append(opts.Excludes, strings.TrimPrefix(arg, "--exclude="))
		case arg == "--workspace":
			opts.Workspace = true
		case arg == "-q" || arg == "--quiet":
			opts.Quiet = true
		}
	}
}
