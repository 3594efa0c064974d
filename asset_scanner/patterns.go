package asset_scanner

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/ryanwalloh/assetkit/asset_scanner/models"
)

// minStemLength is the shortest extension-less name used as a pattern.
// A single-character stem ("a") occurs in nearly every file.
const minStemLength = 2

// ReferencePatterns returns the strings that count as a reference to asset:
// its path as given, its base name, its base name without extension and its
// path with forward slashes. Empty, too-short and repeated forms are dropped.
//
// The stem form also matches unrelated text, so results lean toward "used".
func ReferencePatterns(asset models.Asset) []string {
	given := asset.OSPath
	if given == "" {
		given = filepath.FromSlash(asset.Path)
	}

	slashed := strings.ReplaceAll(given, `\`, "/")
	base := path.Base(slashed)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" {
		stem = base
	}
	if len([]rune(stem)) < minStemLength {
		stem = ""
	}

	candidates := []string{
		given,
		base,
		stem,
		slashed,
	}

	patterns := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		if candidate == "" || candidate == "." || seen[candidate] {
			continue
		}
		seen[candidate] = true
		patterns = append(patterns, candidate)
	}
	return patterns
}

// isReferenced reports whether any pattern occurs in any of the contents.
func isReferenced(patterns []string, contents []string) bool {
	for _, content := range contents {
		for _, pattern := range patterns {
			if strings.Contains(content, pattern) {
				return true
			}
		}
	}
	return false
}
