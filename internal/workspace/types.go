package workspace

import "github.com/hashicorp/hcl/v2"

// RootManifestName is the file that marks the root of a workspace.
const RootManifestName = "workspace.hcl"

// PkgManifestName is the per-package manifest file name.
const PkgManifestName = "package.hcl"

// Package is a single buildable unit within the workspace.
type Package struct {
	// Name is the unique package name within the workspace.
	Name string
	// ManifestPath is the absolute path to the package's manifest file.
	ManifestPath string
	// Dir is the absolute path to the directory holding the manifest.
	Dir string
	// Deps lists the names of the workspace members this package directly
	// depends on.
	Deps []string
	// Binaries lists the binary targets this package defines.
	Binaries []string
	// Generate and Verify hold the raw bodies of the corresponding task
	// sections, or nil when the section is absent.
	Generate hcl.Body
	Verify   hcl.Body
}

// Workspace is the loaded model of one workspace: the root plus its members
// in stable declaration order.
type Workspace struct {
	// RootDir is the absolute path to the workspace root directory.
	RootDir string
	// RootManifest is the absolute path to the root manifest file.
	RootManifest string
	// Members holds every package, in the order the root manifest declares
	// them. This order is the scheduler's tie-break, so it must be stable.
	Members []*Package

	byName map[string]*Package
}

// Member returns the package with the given name, if it exists.
func (w *Workspace) Member(name string) (*Package, bool) {
	p, ok := w.byName[name]
	return p, ok
}

// MemberIndex returns the position of the named package in the member list,
// or -1 when the name is unknown.
func (w *Workspace) MemberIndex(name string) int {
	for i, m := range w.Members {
		if m.Name == name {
			return i
		}
	}
	return -1
}

// BinaryOwner finds the member that defines the named binary target, skipping
// the package named by exclude. Generators live next to, never inside, the
// package they generate, so the owning package is excluded from the search.
func (w *Workspace) BinaryOwner(binary, exclude string) (*Package, bool) {
	for _, m := range w.Members {
		if m.Name == exclude {
			continue
		}
		for _, b := range m.Binaries {
			if b == binary {
				return m, true
			}
		}
	}
	return nil, false
}
