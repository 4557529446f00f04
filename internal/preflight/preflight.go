package preflight

import (
	"context"
	"path/filepath"

	"ytharvest/internal/config"
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

	var results []Result
	for _, dir := range directories(cfg) {
		results = append(results, CheckDirectoryAccess(dir.name, dir.path))
	}
	results = append(results, CheckYouTube(ctx, cfg))
	results = append(results, CheckRedis(ctx, cfg.Cache.RedisURL))
	results = append(results, CheckNotifications(cfg))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

type namedDir struct {
	name string
	path string
}

// directories lists the distinct directories a harvest writes to.
func directories(cfg *config.Config) []namedDir {
	candidates := []namedDir{
		{"State directory", cfg.Paths.StateDir},
		{"Log directory", cfg.Paths.LogDir},
		{"Channel table directory", filepath.Dir(cfg.Paths.ChannelsFile)},
		{"Output directory", filepath.Dir(cfg.Paths.OutputFile)},
	}
	if cfg.UsesSQLiteChannels() {
		candidates[2] = namedDir{"Database directory", filepath.Dir(cfg.Storage.Database)}
	}
	seen := make(map[string]bool, len(candidates))
	out := make([]namedDir, 0, len(candidates))
	for _, c := range candidates {
		if c.path == "" || seen[c.path] {
			continue
		}
		seen[c.path] = true
		out = append(out, c)
	}
	return out
}
