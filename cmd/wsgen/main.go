package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/wsgen/internal/app"
	"github.com/vk/wsgen/internal/cli"
	"github.com/vk/wsgen/internal/invoke"
	"github.com/vk/wsgen/internal/proxy"
	"github.com/vk/wsgen/internal/status"
	"github.com/vk/wsgen/internal/workspace"
)

// ToolEnv lets the calling environment pick the build tool without flags,
// the way build systems hand their own path down to sub-tools.
const ToolEnv = "WSGEN_BUILD_TOOL"

// main is the entrypoint for the wsgen application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		var delegated *proxy.DelegatedError
		if errors.As(err, &delegated) {
			// The delegated tool already printed its own diagnostics; our
			// only job is to propagate its exit status.
			os.Exit(delegated.Code)
		}
		status.New(os.Stderr, status.Normal).ErrorChain(err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(outW io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	workingDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine the working directory: %w", err)
	}
	envTool := os.Getenv(ToolEnv)

	root, rootErr := workspace.FindRoot(workingDir)
	if rootErr != nil {
		// Outside a workspace there is nothing to generate, but commands
		// with no generation step can still be forwarded.
		if opts.Mode == cli.ModeForward {
			tool := opts.Tool
			if tool == "" {
				tool = envTool
			}
			if tool == "" {
				tool = app.DefaultTool
			}
			return proxy.Forward(context.Background(), invoke.NewExecRunner(), tool, opts.Passthrough)
		}
		return rootErr
	}

	cfg, err := app.NewConfig(opts, root, workingDir, envTool)
	if err != nil {
		return err
	}

	wsgenApp := app.New(outW, os.Stderr, cfg, invoke.NewExecRunner())
	return wsgenApp.Run(context.Background())
}
