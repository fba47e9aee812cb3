package preflight

import (
	"context"

	"inkwell/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Content directory", cfg.Paths.ContentDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
	}

	// Themes and apps are optional; only check them once created.
	if pathExists(cfg.Paths.ThemePath) {
		results = append(results, CheckDirectoryAccess("Theme directory", cfg.Paths.ThemePath))
	}
	if pathExists(cfg.Paths.AppsDir) {
		results = append(results, CheckDirectoryAccess("Apps directory", cfg.Paths.AppsDir))
	}

	if cfg.Ping.Enabled {
		for _, service := range cfg.Ping.Services {
			results = append(results, CheckPingService(ctx, service, cfg.PingTimeout()))
		}
	}
	return results
}
