// Package testutil holds shared helpers for building throwaway workspaces
// and faking subprocess execution in tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/wsgen/internal/invoke"
)

// PkgSpec describes one member package of a test workspace.
type PkgSpec struct {
	Name     string
	Deps     []string
	Binaries []string
	// Generate and Verify are raw HCL bodies for the corresponding task
	// sections; empty means the section is absent.
	Generate string
	Verify   string
}

// TaskSection renders a minimal valid task section body for the given binary.
func TaskSection(bin string, args ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "kind = %q\nbin = %q\n", "workspace_binary", bin)
	if len(args) > 0 {
		quoted := make([]string, len(args))
		for i, a := range args {
			quoted[i] = fmt.Sprintf("%q", a)
		}
		fmt.Fprintf(&b, "args = [%s]\n", strings.Join(quoted, ", "))
	}
	return b.String()
}

// WriteWorkspace lays a workspace out under a temp directory: one root
// manifest listing every package in the given order, plus one directory and
// manifest per package. It returns the workspace root.
func WriteWorkspace(t *testing.T, pkgs ...PkgSpec) string {
	t.Helper()
	root := t.TempDir()

	members := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		members = append(members, fmt.Sprintf("%q", "pkgs/"+p.Name))
	}
	rootManifest := fmt.Sprintf("workspace {\n  members = [%s]\n}\n", strings.Join(members, ", "))
	require.NoError(t, os.WriteFile(filepath.Join(root, "workspace.hcl"), []byte(rootManifest), 0o644))

	for _, p := range pkgs {
		dir := filepath.Join(root, "pkgs", p.Name)
		require.NoError(t, os.MkdirAll(dir, 0o755))

		var b strings.Builder
		fmt.Fprintf(&b, "package %q {\n", p.Name)
		if len(p.Deps) > 0 {
			quoted := make([]string, len(p.Deps))
			for i, d := range p.Deps {
				quoted[i] = fmt.Sprintf("%q", d)
			}
			fmt.Fprintf(&b, "  deps = [%s]\n", strings.Join(quoted, ", "))
		}
		b.WriteString("}\n")
		for _, bin := range p.Binaries {
			fmt.Fprintf(&b, "\nbinary %q {}\n", bin)
		}
		if p.Generate != "" {
			fmt.Fprintf(&b, "\ngenerate {\n%s}\n", indentBody(p.Generate))
		}
		if p.Verify != "" {
			fmt.Fprintf(&b, "\nverify {\n%s}\n", indentBody(p.Verify))
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, "package.hcl"), []byte(b.String()), 0o644))
	}
	return root
}

func indentBody(body string) string {
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}

// FakeRunner records every invocation instead of spawning processes. By
// default everything succeeds; Outcome overrides the result per invocation.
type FakeRunner struct {
	mu    sync.Mutex
	calls []invoke.Invocation

	Outcome func(inv invoke.Invocation) invoke.Outcome
}

// Run implements invoke.Runner.
func (r *FakeRunner) Run(_ context.Context, inv invoke.Invocation) invoke.Outcome {
	r.mu.Lock()
	r.calls = append(r.calls, inv)
	r.mu.Unlock()

	if r.Outcome != nil {
		return r.Outcome(inv)
	}
	return invoke.Outcome{ExitCode: 0}
}

// Calls returns the invocations recorded so far, in order.
func (r *FakeRunner) Calls() []invoke.Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]invoke.Invocation, len(r.calls))
	copy(out, r.calls)
	return out
}

// RunCalls returns only the "run" invocations (the actual task executions,
// as opposed to compile steps and forwarded commands).
func (r *FakeRunner) RunCalls() []invoke.Invocation {
	var out []invoke.Invocation
	for _, c := range r.Calls() {
		if len(c.Args) > 0 && c.Args[0] == "run" {
			out = append(out, c)
		}
	}
	return out
}
