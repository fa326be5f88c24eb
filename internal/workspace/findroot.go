package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindRoot walks up from startDir looking for the directory that contains
// the root manifest. It fails when no enclosing workspace exists.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", startDir, err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, RootManifestName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in %s or any parent directory", RootManifestName, startDir)
		}
		dir = parent
	}
}
