package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultName is the db name used when Params.Name is empty
	DefaultName = "persister"
	// Kind is the directory under the base dir holding all stores of this type
	Kind = "sqlite"

	appDir = "jobkeep"
)

// makePath resolves <baseDir>/<Kind>/<name>.db and creates missing directories.
// Empty baseDir means the user's application-data directory.
func makePath(baseDir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid store name %q", name)
	}

	if baseDir == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("can't get application data dir: %w", err)
		}
		baseDir = filepath.Join(cfgDir, appDir)
	}

	dir := filepath.Join(baseDir, Kind)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("can't make %s: %w", dir, err)
	}
	return filepath.Join(dir, name+".db"), nil
}
