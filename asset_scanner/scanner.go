package asset_scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ryanwalloh/assetkit/asset_scanner/contracts"
	"github.com/ryanwalloh/assetkit/asset_scanner/models"
	"github.com/ryanwalloh/assetkit/identifier"
	"github.com/ryanwalloh/assetkit/logger"
	"github.com/ryanwalloh/assetkit/utils"
)

// DefaultCodeExtensions are the markup, stylesheet and script extensions searched for references.
var DefaultCodeExtensions = []string{".html", ".css", ".js"}

// Options configures a ReferenceScanner.
type Options struct {
	ExcludeDirs    []string
	CodeExtensions []string
	BucketRules    identifier.Rules
}

// ReferenceScanner decides which assets are still referenced by the site's code files.
type ReferenceScanner struct {
	exclusions     utils.ExcludeSet
	codeExtensions map[string]bool
	rules          identifier.Rules
	cache          *ContentCache
}

// NewReferenceScanner initializes a new ReferenceScanner.
func NewReferenceScanner(opts Options) contracts.IReferenceScanner {
	return newReferenceScanner(opts)
}

func newReferenceScanner(opts Options) *ReferenceScanner {
	extensions := opts.CodeExtensions
	if len(extensions) == 0 {
		extensions = DefaultCodeExtensions
	}
	extSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extSet[ext] = true
	}

	rules := opts.BucketRules
	if len(rules.Buckets) == 0 {
		rules = identifier.DefaultRules()
	}

	return &ReferenceScanner{
		exclusions:     utils.NewExcludeSet(opts.ExcludeDirs),
		codeExtensions: extSet,
		rules:          rules,
		cache:          NewContentCache(),
	}
}

// ListAssets returns every file under assetsRoot sorted by path. Paths are
// relative to sourceRoot when the assets live inside it, otherwise relative
// to the parent of assetsRoot.
func (scanner *ReferenceScanner) ListAssets(assetsRoot string, sourceRoot string) ([]models.Asset, error) {
	absAssets, err := filepath.Abs(assetsRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assets root %s: %w", assetsRoot, err)
	}
	info, err := os.Stat(absAssets)
	if err != nil {
		return nil, fmt.Errorf("assets root %s: %w", assetsRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assets root %s is not a directory", assetsRoot)
	}

	base := filepath.Dir(absAssets)
	if absSource, err := filepath.Abs(sourceRoot); err == nil && isWithin(absSource, absAssets) {
		base = absSource
	}

	var assets []models.Asset

	err = filepath.WalkDir(absAssets, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return skipUnreadable(absAssets, path, d, err)
		}

		relToRoot, _ := filepath.Rel(absAssets, path)
		if relToRoot != "." && scanner.exclusions.IsExcluded(relToRoot) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			logger.Debug("Skipping asset %s: %v", path, err)
			return nil
		}

		relativePath, err := filepath.Rel(base, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}
		slashPath := filepath.ToSlash(relativePath)

		assets = append(assets, models.Asset{
			Path:     slashPath,
			OSPath:   relativePath,
			FullPath: path,
			Category: scanner.rules.Bucket(slashPath),
			Size:     fileInfo.Size(),
			Exists:   true,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Path < assets[j].Path
	})

	return assets, nil
}

// ListCodeFiles returns the markup, stylesheet and script files under
// sourceRoot, skipping excluded directories. Order is not significant.
func (scanner *ReferenceScanner) ListCodeFiles(sourceRoot string) ([]string, error) {
	var codeFiles []string

	err := filepath.WalkDir(sourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return skipUnreadable(sourceRoot, path, d, err)
		}

		relativePath, err := filepath.Rel(sourceRoot, path)
		if err != nil {
			return nil
		}

		if relativePath != "." && scanner.exclusions.IsExcluded(relativePath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if scanner.codeExtensions[strings.ToLower(filepath.Ext(path))] {
			codeFiles = append(codeFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return codeFiles, nil
}

// Scan partitions every asset under assetsRoot into used and unused by
// searching the code files under sourceRoot for any of its reference
// patterns. Unreadable code files are skipped and reported.
func (scanner *ReferenceScanner) Scan(assetsRoot string, sourceRoot string) (*models.ScanResult, error) {
	assets, err := scanner.ListAssets(assetsRoot, sourceRoot)
	if err != nil {
		return nil, err
	}

	codePaths, err := scanner.ListCodeFiles(sourceRoot)
	if err != nil {
		return nil, err
	}
	scanner.cache.Retain(codePaths)

	result := &models.ScanResult{
		Assets:    assets,
		CodeFiles: len(codePaths),
		Used:      []string{},
		Unused:    []string{},
	}

	codeFiles := make([]models.CodeFile, 0, len(codePaths))
	for _, codePath := range codePaths {
		content, err := scanner.cache.Load(codePath)
		if err != nil {
			logger.Debug("Skipping unreadable code file %s: %v", codePath, err)
			result.Skipped = append(result.Skipped, codePath)
			continue
		}
		codeFiles = append(codeFiles, models.CodeFile{Path: codePath, Content: content})
	}
	sort.Strings(result.Skipped)

	contents := make([]string, len(codeFiles))
	for i, codeFile := range codeFiles {
		contents[i] = codeFile.Content
	}

	for _, asset := range assets {
		if isReferenced(ReferencePatterns(asset), contents) {
			result.Used = append(result.Used, asset.Path)
		} else {
			result.Unused = append(result.Unused, asset.Path)
		}
	}

	return result, nil
}

// GetCacheStats returns the content cache counters.
func (scanner *ReferenceScanner) GetCacheStats() map[string]interface{} {
	return scanner.cache.GetPerformanceStats()
}

// skipUnreadable aborts the walk only when the root itself cannot be read.
func skipUnreadable(root string, path string, d fs.DirEntry, err error) error {
	if path == root {
		return err
	}
	logger.Debug("Skipping unreadable path %s: %v", path, err)
	if d != nil && d.IsDir() {
		return filepath.SkipDir
	}
	return nil
}

// isWithin reports whether target is dir or lies below it.
func isWithin(dir string, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
