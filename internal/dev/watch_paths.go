package dev

import (
	"path/filepath"

	"github.com/cannon-dev/cannon/internal/config"
)

// CollectWatchPaths returns the artifacts directory and the definition
// file of the project, cleaned and de-duplicated.
func CollectWatchPaths(cfg *config.Config) []string {
	paths := []string{
		cfg.ArtifactsPath(),
		cfg.DefinitionsPath(),
	}

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}

	return unique
}
