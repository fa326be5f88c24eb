// Package invoke executes a single generation or verification task by
// shelling out to the underlying build tool.
//
// Every invocation receives its environment, arguments, and working directory
// explicitly; nothing reads or mutates ambient process state. That keeps the
// phase runner testable against a fake Runner.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/vk/wsgen/internal/ctxlog"
	"github.com/vk/wsgen/internal/task"
	"github.com/vk/wsgen/internal/workspace"
	"github.com/vk/wsgen/wsgenenv"
)

// Invocation is one fully specified subprocess call.
type Invocation struct {
	// Tool is the build tool executable to invoke.
	Tool string
	// Args is the complete argument list, including any trailing task
	// arguments after the "--" separator.
	Args []string
	// Env holds extra KEY=VALUE entries appended to the parent environment.
	Env []string
	// Dir is the working directory for the subprocess.
	Dir string
}

// Outcome is the result of one invocation attempt.
type Outcome struct {
	// ExitCode is the subprocess exit status. -1 when the process was
	// terminated by a signal or never started.
	ExitCode int
	// SpawnErr is set when the process could not be started at all. This is
	// a build or configuration problem, distinct from a task that ran and
	// failed.
	SpawnErr error
}

// Success reports whether the process started and exited zero.
func (o Outcome) Success() bool {
	return o.SpawnErr == nil && o.ExitCode == 0
}

func (o Outcome) String() string {
	if o.SpawnErr != nil {
		return fmt.Sprintf("spawn failed: %v", o.SpawnErr)
	}
	if o.ExitCode == -1 {
		return "terminated by signal"
	}
	return fmt.Sprintf("exit status %d", o.ExitCode)
}

// Runner executes one invocation and reports its outcome. Implementations
// block until the subprocess exits.
type Runner interface {
	Run(ctx context.Context, inv Invocation) Outcome
}

// ExecRunner is the os/exec implementation of Runner. The subprocess inherits
// the configured stdout and stderr so the underlying tool's diagnostics reach
// the user unmodified.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns an ExecRunner wired to the parent's stdout and
// stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) Outcome {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Spawning subprocess.", "tool", inv.Tool, "args", inv.Args, "dir", inv.Dir)

	cmd := exec.CommandContext(ctx, inv.Tool, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = append(os.Environ(), inv.Env...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()
	if err == nil {
		return Outcome{ExitCode: 0}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// ExitCode is -1 when the process was killed by a signal.
		return Outcome{ExitCode: exitErr.ExitCode()}
	}
	return Outcome{ExitCode: -1, SpawnErr: err}
}

// BinaryNotFoundError reports a task whose configured binary does not exist
// as a binary target anywhere in the workspace.
type BinaryNotFoundError struct {
	Binary  string
	Package string
	Kind    task.Kind
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf(
		"there is no binary named %q in the workspace, but it is listed as the %s binary for package %q",
		e.Binary, e.Kind, e.Package,
	)
}

// Invoker turns task descriptors into build-tool invocations.
type Invoker struct {
	// Tool is the underlying build tool executable.
	Tool string
	// Runner executes the invocations.
	Runner Runner
	// Quiet forwards the top-level quiet flag to the build tool.
	Quiet bool
}

// ResolveBinary locates the workspace member that defines the descriptor's
// binary target. The package being generated is excluded from the search:
// a generator lives next to, never inside, the package it generates.
func (iv *Invoker) ResolveBinary(ws *workspace.Workspace, pkg *workspace.Package, d *task.Descriptor) (*workspace.Package, error) {
	owner, ok := ws.BinaryOwner(d.Binary, pkg.Name)
	if !ok {
		return nil, &BinaryNotFoundError{Binary: d.Binary, Package: pkg.Name, Kind: d.Kind}
	}
	return owner, nil
}

// CompileBinary compiles the task's binary without running it:
//
//	<tool> build --package <owner> --bin <binary> [--quiet]
func (iv *Invoker) CompileBinary(ctx context.Context, ws *workspace.Workspace, owner *workspace.Package, d *task.Descriptor) Outcome {
	args := []string{"build", "--package", owner.Name, "--bin", d.Binary}
	if iv.Quiet {
		args = append(args, "--quiet")
	}
	return iv.Runner.Run(ctx, Invocation{
		Tool: iv.Tool,
		Args: args,
		Env:  []string{wsgenenv.WorkspaceManifestPathEnv + "=" + ws.RootManifest},
		Dir:  ws.RootDir,
	})
}

// RunBinary runs the task's binary against pkg:
//
//	<tool> run --package <owner> --bin <binary> [--quiet] -- <args...>
//
// The "--" separator keeps the build tool's options and the binary's own
// options from ever colliding. The two contract environment variables tell
// the binary which package it is generating and where the workspace is.
func (iv *Invoker) RunBinary(ctx context.Context, ws *workspace.Workspace, pkg, owner *workspace.Package, d *task.Descriptor) Outcome {
	args := []string{"run", "--package", owner.Name, "--bin", d.Binary}
	if iv.Quiet {
		args = append(args, "--quiet")
	}
	if len(d.Args) > 0 {
		args = append(args, "--")
		args = append(args, d.Args...)
	}
	return iv.Runner.Run(ctx, Invocation{
		Tool: iv.Tool,
		Args: args,
		Env: []string{
			wsgenenv.PkgManifestPathEnv + "=" + pkg.ManifestPath,
			wsgenenv.WorkspaceManifestPathEnv + "=" + ws.RootManifest,
		},
		Dir: ws.RootDir,
	})
}
