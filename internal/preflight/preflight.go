package preflight

import (
	"context"

	"ytscribe/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config. YouTube is
// contacted only when checkNetwork is set.
func RunAll(ctx context.Context, cfg *config.Config, checkNetwork bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckWindowLock(cfg.LockPath()),
	}
	if checkNetwork {
		results = append(results, CheckYouTube(ctx, YouTubeTarget{
			UserAgent: cfg.YouTube.UserAgent,
			ProxyURL:  cfg.YouTube.ProxyURL,
		}))
	}
	return results
}
