package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/wsgen/internal/ctxlog"
)

// rootFile mirrors the top-level structure of workspace.hcl.
type rootFile struct {
	Workspace *rootBlock `hcl:"workspace,block"`
}

type rootBlock struct {
	// Members lists member directories relative to the workspace root.
	// Entries may be globs ("packages/*"); only directories containing a
	// package manifest match.
	Members []string `hcl:"members"`
}

// pkgFile mirrors the top-level structure of package.hcl. The generate and
// verify blocks stay opaque here; the task resolver owns their schema.
type pkgFile struct {
	Package  *pkgBlock   `hcl:"package,block"`
	Binaries []*binBlock `hcl:"binary,block"`
	Generate *taskBlock  `hcl:"generate,block"`
	Verify   *taskBlock  `hcl:"verify,block"`
}

type pkgBlock struct {
	Name string   `hcl:"name,label"`
	Deps []string `hcl:"deps,optional"`
}

type binBlock struct {
	Name string `hcl:"name,label"`
}

type taskBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Load reads the workspace rooted at rootDir and returns the full model.
// Member order follows the root manifest's members list; glob entries expand
// in lexical order so the model is deterministic across runs.
func Load(ctx context.Context, rootDir string) (*Workspace, error) {
	logger := ctxlog.FromContext(ctx)

	rootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root %q: %w", rootDir, err)
	}
	rootManifest := filepath.Join(rootDir, RootManifestName)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(rootManifest)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", rootManifest, diags)
	}

	var root rootFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", rootManifest, diags)
	}
	if root.Workspace == nil {
		return nil, fmt.Errorf("%s: missing required workspace block", rootManifest)
	}
	logger.Debug("Root manifest decoded.", "members", len(root.Workspace.Members))

	memberDirs, err := expandMembers(rootDir, root.Workspace.Members)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{
		RootDir:      rootDir,
		RootManifest: rootManifest,
		byName:       make(map[string]*Package),
	}
	for _, dir := range memberDirs {
		pkg, err := loadPackage(parser, dir)
		if err != nil {
			return nil, err
		}
		if _, exists := ws.byName[pkg.Name]; exists {
			return nil, fmt.Errorf("duplicate package name %q (second definition at %s)", pkg.Name, pkg.ManifestPath)
		}
		ws.Members = append(ws.Members, pkg)
		ws.byName[pkg.Name] = pkg
	}

	// Dependencies must resolve within the workspace; dangling names would
	// silently break the scheduler's ordering guarantee.
	for _, m := range ws.Members {
		for _, dep := range m.Deps {
			if _, ok := ws.byName[dep]; !ok {
				return nil, fmt.Errorf("package %q depends on %q, which is not a workspace member", m.Name, dep)
			}
		}
	}

	logger.Debug("Workspace loaded.", "root", rootDir, "member_count", len(ws.Members))
	return ws, nil
}

// expandMembers turns the members list into absolute member directories,
// preserving declaration order and expanding globs lexically.
func expandMembers(rootDir string, members []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)

	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, entry := range members {
		pattern := filepath.Join(rootDir, filepath.FromSlash(entry))
		if !strings.ContainsAny(entry, "*?[") {
			if _, err := os.Stat(filepath.Join(pattern, PkgManifestName)); err != nil {
				return nil, fmt.Errorf("workspace member %q has no %s: %w", entry, PkgManifestName, err)
			}
			add(pattern)
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid workspace member pattern %q: %w", entry, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if _, err := os.Stat(filepath.Join(m, PkgManifestName)); err == nil {
				add(m)
			}
		}
	}
	return dirs, nil
}

func loadPackage(parser *hclparse.Parser, dir string) (*Package, error) {
	manifest := filepath.Join(dir, PkgManifestName)
	file, diags := parser.ParseHCLFile(manifest)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", manifest, diags)
	}

	var pf pkgFile
	if diags := gohcl.DecodeBody(file.Body, nil, &pf); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", manifest, diags)
	}
	if pf.Package == nil {
		return nil, fmt.Errorf("%s: missing required package block", manifest)
	}

	pkg := &Package{
		Name:         pf.Package.Name,
		ManifestPath: manifest,
		Dir:          dir,
		Deps:         pf.Package.Deps,
	}
	for _, b := range pf.Binaries {
		pkg.Binaries = append(pkg.Binaries, b.Name)
	}
	if pf.Generate != nil {
		pkg.Generate = pf.Generate.Body
	}
	if pf.Verify != nil {
		pkg.Verify = pf.Verify.Body
	}
	return pkg, nil
}
