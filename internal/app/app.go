// Package app wires the components together and drives one wsgen invocation
// end to end.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/wsgen/internal/cli"
	"github.com/vk/wsgen/internal/ctxlog"
	"github.com/vk/wsgen/internal/dag"
	"github.com/vk/wsgen/internal/invoke"
	"github.com/vk/wsgen/internal/phase"
	"github.com/vk/wsgen/internal/proxy"
	"github.com/vk/wsgen/internal/status"
	"github.com/vk/wsgen/internal/target"
	"github.com/vk/wsgen/internal/task"
	"github.com/vk/wsgen/internal/workspace"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle for a single invocation.
type App struct {
	logger *slog.Logger
	shell  *status.Shell
	runner invoke.Runner
	cfg    *Config
}

// New constructs an App. The runner parameter exists so tests can substitute
// a fake process runner; production callers pass invoke.NewExecRunner().
func New(logW, statusW io.Writer, cfg *Config, runner invoke.Runner) *App {
	verbosity := status.Normal
	if cfg.Quiet {
		verbosity = status.Quiet
	}
	return &App{
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, logW),
		shell:  status.New(statusW, verbosity),
		runner: runner,
		cfg:    cfg,
	}
}

// Run executes the invocation: verify-only, generate-then-forward, or plain
// forward, per the parsed mode.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run started.", "mode", a.cfg.Mode, "workspace", a.cfg.WorkspaceDir)

	switch a.cfg.Mode {
	case cli.ModeVerify:
		return a.runPhase(ctx, task.KindVerify)
	case cli.ModeGenerate:
		if err := a.runPhase(ctx, task.KindGenerate); err != nil {
			return err
		}
		return proxy.Forward(ctx, a.runner, a.cfg.Tool, a.cfg.Passthrough)
	default:
		return proxy.Forward(ctx, a.runner, a.cfg.Tool, a.cfg.Passthrough)
	}
}

func (a *App) runPhase(ctx context.Context, kind task.Kind) error {
	logger := ctxlog.FromContext(ctx)

	ws, err := workspace.Load(ctx, a.cfg.WorkspaceDir)
	if err != nil {
		return fmt.Errorf("failed to load the workspace model: %w", err)
	}

	graph, err := dag.FromWorkspace(ws)
	if err != nil {
		return err
	}

	units, err := phase.Units(ws, kind)
	if err != nil {
		return err
	}
	logger.Debug("Task-holding packages resolved.", "phase", kind, "count", len(units))

	sel := target.Determine(ctx, ws, a.cfg.Packages, a.cfg.Excludes, a.cfg.Workspace, a.cfg.WorkingDir)
	units = target.Filter(units, sel, graph)
	if len(units) == 0 {
		logger.Debug("No tasks to run for this phase.", "phase", kind)
		return nil
	}

	runner := &phase.Runner{
		WS:    ws,
		Graph: graph,
		Invoker: &invoke.Invoker{
			Tool:   a.cfg.Tool,
			Runner: a.runner,
			Quiet:  a.shell.Verbosity() == status.Quiet,
		},
		Shell: a.shell,
	}
	return runner.Run(ctx, kind, units)
}
