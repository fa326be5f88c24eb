// Package target decides which packages the user's invocation is aimed at,
// so the generation phase is not run for packages outside the requested
// build.
package target

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/vk/wsgen/internal/ctxlog"
	"github.com/vk/wsgen/internal/dag"
	"github.com/vk/wsgen/internal/phase"
	"github.com/vk/wsgen/internal/workspace"
)

// Selection is the resolved target set. When Restricted is false the whole
// workspace is in scope and Names is empty.
type Selection struct {
	Names      []string
	Restricted bool
}

// Determine resolves the target set from the recognized selection flags and
// the working directory:
//
//   - explicit package specs win; a spec naming a non-member falls back to
//     the whole workspace rather than guessing
//   - --workspace forces the whole workspace
//   - with no specs, the implicit target is the member whose directory is
//     the closest ancestor of the working directory
//   - excludes are removed from whatever set the above produced
func Determine(ctx context.Context, ws *workspace.Workspace, specs, excludes []string, wholeWorkspace bool, workingDir string) Selection {
	logger := ctxlog.FromContext(ctx)

	var names []string
	restricted := false

	switch {
	case wholeWorkspace:
		for _, m := range ws.Members {
			names = append(names, m.Name)
		}
		restricted = true
	case len(specs) > 0:
		for _, spec := range specs {
			if _, ok := ws.Member(spec); !ok {
				logger.Debug("Package spec does not name a workspace member, falling back to the whole workspace.", "spec", spec)
				names, restricted = nil, false
				break
			}
			names = append(names, spec)
			restricted = true
		}
	default:
		if name, ok := implicitTarget(ws, workingDir); ok {
			logger.Debug("Implicit target determined from the working directory.", "package", name)
			names = []string{name}
			restricted = true
		}
	}

	if len(excludes) > 0 {
		if !restricted {
			for _, m := range ws.Members {
				names = append(names, m.Name)
			}
			restricted = true
		}
		excluded := make(map[string]bool, len(excludes))
		for _, e := range excludes {
			excluded[e] = true
		}
		kept := names[:0]
		for _, n := range names {
			if !excluded[n] {
				kept = append(kept, n)
			}
		}
		names = kept
	}

	return Selection{Names: names, Restricted: restricted}
}

// Filter keeps the units whose package is a target or a dependency, direct
// or transitive, of one. An unrestricted selection keeps everything.
func Filter(units []phase.Unit, sel Selection, g *dag.Graph) []phase.Unit {
	if !sel.Restricted {
		return units
	}
	var kept []phase.Unit
	for _, u := range units {
		for _, t := range sel.Names {
			if t == u.Pkg.Name || g.DependsOn(t, u.Pkg.Name) {
				kept = append(kept, u)
				break
			}
		}
	}
	return kept
}

// implicitTarget returns the member whose manifest directory is the closest
// ancestor of workingDir.
func implicitTarget(ws *workspace.Workspace, workingDir string) (string, bool) {
	workingDir = filepath.Clean(workingDir)

	best := ""
	bestDepth := -1
	for _, m := range ws.Members {
		rel, err := filepath.Rel(m.Dir, workingDir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		depth := 0
		if rel != "." {
			depth = len(strings.Split(rel, string(filepath.Separator)))
		}
		if bestDepth == -1 || depth < bestDepth {
			best, bestDepth = m.Name, depth
		}
	}
	return best, bestDepth != -1
}
