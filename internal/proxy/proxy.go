// Package proxy forwards the user's original command to the underlying
// build tool once the generation phase has succeeded.
package proxy

import (
	"context"
	"fmt"

	"github.com/vk/wsgen/internal/ctxlog"
	"github.com/vk/wsgen/internal/invoke"
)

// DelegatedError carries the delegated command's non-zero exit code. It is
// not an orchestration failure; the code simply becomes wsgen's own exit
// status.
type DelegatedError struct {
	Code int
}

func (e *DelegatedError) Error() string {
	return fmt.Sprintf("delegated command exited with status %d", e.Code)
}

// Forward invokes the build tool with the original arguments, unmodified, in
// the current working directory. Stdio is inherited so the tool's output is
// indistinguishable from a direct invocation.
func Forward(ctx context.Context, runner invoke.Runner, tool string, args []string) error {
	ctxlog.FromContext(ctx).Debug("Forwarding command to the build tool.", "tool", tool, "args", args)

	outcome := runner.Run(ctx, invoke.Invocation{Tool: tool, Args: args})
	if outcome.SpawnErr != nil {
		return fmt.Errorf("failed to execute %q: %w", tool, outcome.SpawnErr)
	}
	if outcome.ExitCode != 0 {
		return &DelegatedError{Code: outcome.ExitCode}
	}
	return nil
}
