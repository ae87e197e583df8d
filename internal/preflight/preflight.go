package preflight

import (
	"context"
	"path/filepath"

	"songpatch/internal/config"
	"songpatch/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the filesystem checks for the given config and song
// directory. Directories for disabled features are skipped.
func RunAll(_ context.Context, cfg *config.Config, songDir string) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result
	if songDir != "" {
		if abs, err := filepath.Abs(songDir); err == nil {
			songDir = abs
		}
		results = append(results, CheckDirectoryAccess("Song directory", songDir))
		results = append(results, CheckSongFiles(songDir))
	}
	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}
	if cfg.Logging.ToFile {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	return results
}

// CheckSystemDeps evaluates the external binaries for the given config.
// The doctor command and the pipeline share this list.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(ctx, deps.Requirements(cfg))
}
