// Package phase drives one end-to-end phase — generate or verify — across
// the workspace: resolve the task-holding packages, schedule them in
// dependency order, and invoke each task in turn.
//
// Execution is strictly sequential. Generated output written by one task may
// be compiled into the very next one, so no cross-task parallelism is safe
// without proving independence beyond the dependency graph.
package phase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/wsgen/internal/ctxlog"
	"github.com/vk/wsgen/internal/dag"
	"github.com/vk/wsgen/internal/invoke"
	"github.com/vk/wsgen/internal/status"
	"github.com/vk/wsgen/internal/task"
	"github.com/vk/wsgen/internal/workspace"
)

// Unit is one package scheduled for the active phase, with its resolved
// descriptor.
type Unit struct {
	Pkg  *workspace.Package
	Desc *task.Descriptor
}

// TaskError reports the first failing task of a phase run. It wraps the
// underlying cause so exit details stay reachable through errors.As.
type TaskError struct {
	Package string
	Kind    task.Kind
	Cause   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s failed for package %q: %v", e.Kind, e.Package, e.Cause)
}

func (e *TaskError) Unwrap() error { return e.Cause }

// Units resolves the packages holding a task of the given kind, in workspace
// member order. Malformed task sections across the whole workspace are
// reported together; nothing may be invoked when any manifest is broken.
func Units(ws *workspace.Workspace, kind task.Kind) ([]Unit, error) {
	var units []Unit
	var errs []error
	for _, m := range ws.Members {
		d, err := task.For(m, kind)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if d != nil {
			units = append(units, Unit{Pkg: m, Desc: d})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return units, nil
}

// Runner executes one phase over a workspace.
type Runner struct {
	WS      *workspace.Workspace
	Graph   *dag.Graph
	Invoker *invoke.Invoker
	Shell   *status.Shell
}

// Run invokes every unit's task in dependency order and fails fast on the
// first failure: a package must never be generated or verified against
// dependencies whose own generation is known stale or broken.
func (r *Runner) Run(ctx context.Context, kind task.Kind, units []Unit) error {
	logger := ctxlog.FromContext(ctx)

	byName := make(map[string]Unit, len(units))
	holders := make([]string, 0, len(units))
	for _, u := range units {
		byName[u.Pkg.Name] = u
		holders = append(holders, u.Pkg.Name)
	}

	plan, err := dag.Plan(ctx, r.Graph, holders, r.WS.MemberIndex)
	if err != nil {
		return err
	}
	logger.Debug("Phase plan ready.", "phase", kind, "task_count", len(plan))

	for _, name := range plan {
		if err := r.runUnit(ctx, kind, byName[name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runUnit(ctx context.Context, kind task.Kind, u Unit) error {
	noun := "code generator"
	runVerb, doneVerb := "Generating", "Generated"
	if kind == task.KindVerify {
		noun = "verifier"
		runVerb, doneVerb = "Verifying", "Verified"
	}

	owner, err := r.Invoker.ResolveBinary(r.WS, u.Pkg, u.Desc)
	if err != nil {
		return &TaskError{Package: u.Pkg.Name, Kind: kind, Cause: err}
	}

	// Compile the binary first so compilation problems are attributed to the
	// generator, not to the package being generated.
	compileStart := time.Now()
	r.Shell.Status("Compiling", fmt.Sprintf("`%s`, the %s for `%s`", u.Desc.Binary, noun, u.Pkg.Name))
	if outcome := r.Invoker.CompileBinary(ctx, r.WS, owner, u.Desc); !outcome.Success() {
		return &TaskError{
			Package: u.Pkg.Name,
			Kind:    kind,
			Cause:   outcomeError(outcome, fmt.Sprintf("failed to compile `%s`, the %s for `%s`", u.Desc.Binary, noun, u.Pkg.Name)),
		}
	}
	r.Shell.Status("Compiled", fmt.Sprintf("`%s`, the %s for `%s`, in %.3fs", u.Desc.Binary, noun, u.Pkg.Name, time.Since(compileStart).Seconds()))

	runStart := time.Now()
	r.Shell.Status(runVerb, fmt.Sprintf("`%s`", u.Pkg.Name))
	if outcome := r.Invoker.RunBinary(ctx, r.WS, u.Pkg, owner, u.Desc); !outcome.Success() {
		return &TaskError{
			Package: u.Pkg.Name,
			Kind:    kind,
			Cause:   outcomeError(outcome, fmt.Sprintf("failed to run `%s`, the %s for `%s`", u.Desc.Binary, noun, u.Pkg.Name)),
		}
	}
	r.Shell.Status(doneVerb, fmt.Sprintf("`%s` in %.3fs", u.Pkg.Name, time.Since(runStart).Seconds()))
	return nil
}

// outcomeError turns a failed Outcome into an error that keeps the spawn
// failure, when there is one, in the unwrap chain.
func outcomeError(o invoke.Outcome, msg string) error {
	if o.SpawnErr != nil {
		return fmt.Errorf("%s: %w", msg, o.SpawnErr)
	}
	return fmt.Errorf("%s: %s", msg, o)
}
