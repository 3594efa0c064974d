package rewriter

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/ryanwalloh/assetkit/logger"
	"github.com/ryanwalloh/assetkit/mapping"
)

// ErrTargetNotFound is returned when the HTML file to rewrite does not exist.
var ErrTargetNotFound = errors.New("target file not found")

// BackupSuffix is appended to a rewritten file's path to name its backup.
const BackupSuffix = ".backup"

// rewrittenAttributes are the only attributes whose values are replaced.
var rewrittenAttributes = []string{"src", "href"}

// Result describes the outcome of rewriting one file.
type Result struct {
	Path         string
	Changed      bool
	Replacements int
	BackupPath   string
	Original     string
	Updated      string
}

// RewriteContent replaces every src/href attribute value that equals a
// mapping key exactly with the mapped URL. Entries are applied in store
// order. It returns the new content and the number of replacements.
func RewriteContent(content string, store *mapping.Store) (string, int) {
	replacements := 0
	for _, entry := range store.Entries() {
		for _, attr := range rewrittenAttributes {
			pattern := attributePattern(attr, entry.Ref)
			content = pattern.ReplaceAllStringFunc(content, func(match string) string {
				groups := pattern.FindStringSubmatch(match)
				replacements++
				return groups[1] + entry.URL + groups[2]
			})
		}
	}
	return content, replacements
}

// attributePattern matches attr="ref" or attr='ref'. The quotes are
// captured independently, as the original markup may mix them.
func attributePattern(attr string, ref string) *regexp.Regexp {
	return regexp.MustCompile(`(` + attr + `=["'])` + regexp.QuoteMeta(ref) + `(["'])`)
}

// PlanFile reads path and computes its rewrite without touching the disk.
func PlanFile(path string, store *mapping.Store) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	original := string(data)
	updated, count := RewriteContent(original, store)

	return &Result{
		Path:         path,
		Changed:      updated != original,
		Replacements: count,
		Original:     original,
		Updated:      updated,
	}, nil
}

// RewriteFile rewrites path in place. When the content changes, the
// original is first written to path+".backup"; otherwise nothing is written.
func RewriteFile(path string, store *mapping.Store) (*Result, error) {
	result, err := PlanFile(path, store)
	if err != nil {
		return nil, err
	}

	if !result.Changed {
		logger.Debug("No changes needed for %s", path)
		return result, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	mode := info.Mode().Perm()

	backupPath := path + BackupSuffix
	if err := os.WriteFile(backupPath, []byte(result.Original), mode); err != nil {
		return nil, fmt.Errorf("failed to write backup %s: %w", backupPath, err)
	}
	result.BackupPath = backupPath

	if err := os.WriteFile(path, []byte(result.Updated), mode); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Debug("Rewrote %d reference(s) in %s, backup at %s", result.Replacements, path, backupPath)
	return result, nil
}
