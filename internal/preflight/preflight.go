package preflight

import (
	"context"

	"clipline/internal/config"
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

	results = append(results, CheckDirectoryAccess("Upload directory", cfg.Paths.UploadDir))
	results = append(results, CheckDirectoryAccess("Processed directory", cfg.Paths.ProcessedDir))
	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))

	results = append(results, CheckFreeSpace("Upload free space", cfg.Paths.UploadDir, cfg.Media.MinFreeBytes))

	for _, status := range CheckSystemDeps(cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Command
		}
		if !status.Available && status.Optional {
			// An optional tool that is missing is surfaced but not fatal.
			result.Passed = true
			result.Detail = status.Detail + " (optional)"
		}
		results = append(results, result)
	}

	// The translator only matters when uploads can request text edits, but a
	// bad key is worth knowing about before the first job fails.
	if cfg.LLM.APIKey != "" {
		results = append(results, CheckLLM(ctx, "Translation LLM", cfg.LLM))
	}

	return results
}

// AllPassed reports whether every check in the set passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
