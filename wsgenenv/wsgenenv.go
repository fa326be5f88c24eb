// Package wsgenenv gives generator and verifier binaries typed access to the
// environment variables that wsgen sets before invoking them.
//
// The variable names are a stable public contract: generator binaries written
// against this package keep working across wsgen releases.
package wsgenenv

import "os"

// PkgManifestPathEnv names the environment variable holding the absolute
// path to the manifest of the package being generated or verified.
const PkgManifestPathEnv = "WSGEN_PKG_MANIFEST_PATH"

// WorkspaceManifestPathEnv names the environment variable holding the
// absolute path to the manifest defining the workspace.
const WorkspaceManifestPathEnv = "WSGEN_WORKSPACE_MANIFEST_PATH"

// MissingVarError reports that one of the wsgen contract variables is not
// set, which usually means the binary was run directly instead of through
// wsgen.
type MissingVarError struct {
	Name string
}

func (e *MissingVarError) Error() string {
	return "environment variable " + e.Name + " is not set; " +
		"it is set by wsgen when it invokes a generator or verifier binary"
}

// PkgManifestPath returns the path to the manifest of the package that must
// be generated or verified.
func PkgManifestPath() (string, error) {
	return lookup(PkgManifestPathEnv)
}

// WorkspaceManifestPath returns the path to the manifest defining the
// workspace.
func WorkspaceManifestPath() (string, error) {
	return lookup(WorkspaceManifestPathEnv)
}

func lookup(name string) (string, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", &MissingVarError{Name: name}
	}
	return v, nil
}
