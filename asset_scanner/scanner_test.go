package asset_scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/ryanwalloh/assetkit/asset_scanner/models"
	"github.com/ryanwalloh/assetkit/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func newTestScanner() *ReferenceScanner {
	return newReferenceScanner(Options{ExcludeDirs: utils.DefaultExcludedDirs})
}

func TestScan_UsedAndUnusedScenario(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"assets/icons/a.png": "png-a",
		"assets/logo/b.png":  "png-b",
		"pages/home.html":    `<html><body><img src="assets/logo/b.png"></body></html>`,
	})

	result, err := newTestScanner().Scan(filepath.Join(root, "assets"), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"assets/icons/a.png"}, result.Unused)
	assert.Equal(t, []string{"assets/logo/b.png"}, result.Used)
	assert.Equal(t, 2, result.AssetCount())
	assert.Equal(t, 1, result.CodeFiles)
}

func TestScan_PartitionCoversEveryAssetOnce(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"assets/gallery/one.webp":   "1",
		"assets/gallery/two.webp":   "2",
		"assets/slideshow/s1.jpg":   "3",
		"assets/misc/notes.txt":     "4",
		"assets/fonts/brand.woff2":  "5",
		"index.html":                `<img src="assets/gallery/one.webp">`,
		"assets/css/site.css":       `body { background: url(../slideshow/s1.jpg); }`,
		"assets/js/script.js":       `const icon = "brand";`,
		"node_modules/pkg/index.js": `"two.webp"`,
	})

	scanner := newTestScanner()
	result, err := scanner.Scan(filepath.Join(root, "assets"), root)
	require.NoError(t, err)

	all := append(append([]string{}, result.Used...), result.Unused...)
	sort.Strings(all)

	var expected []string
	for _, asset := range result.Assets {
		expected = append(expected, asset.Path)
	}
	assert.Equal(t, expected, all)

	seen := make(map[string]bool)
	for _, path := range all {
		assert.False(t, seen[path], "asset %s listed twice", path)
		seen[path] = true
	}

	// node_modules is excluded, so its mention of two.webp does not count.
	assert.Contains(t, result.Unused, "assets/gallery/two.webp")
	assert.Contains(t, result.Used, "assets/gallery/one.webp")
	assert.Contains(t, result.Used, "assets/slideshow/s1.jpg")
	// "brand" appears as a bare word in script.js and matches the stem.
	assert.Contains(t, result.Used, "assets/fonts/brand.woff2")
}

func TestScan_FilenameInsideUnrelatedTokenCountsAsUsed(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"assets/img/cat.png": "x",
		"app.js":             `const concatenated = "xcat.pngx";`,
	})

	result, err := newTestScanner().Scan(filepath.Join(root, "assets"), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"assets/img/cat.png"}, result.Used)
	assert.Empty(t, result.Unused)
}

func TestScan_StemMatchIsPermissive(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"assets/logo.svg": "<svg/>",
		"style.css":       `.site-logo-wrapper { display: flex; }`,
	})

	result, err := newTestScanner().Scan(filepath.Join(root, "assets"), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"assets/logo.svg"}, result.Used)
}

func TestScan_TwoCharacterStemCountsAsUsed(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"assets/img/bg.png":   "png",
		"assets/js/script.js": `const name = "bg"; el.src = "assets/img/" + name + ".png";`,
	})

	result, err := newTestScanner().Scan(filepath.Join(root, "assets"), root)
	require.NoError(t, err)

	assert.Contains(t, result.Used, "assets/img/bg.png")
	assert.NotContains(t, result.Unused, "assets/img/bg.png")
}

func TestScan_DropsDeletedCodeFilesFromCache(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"assets/img/hero.png": "png",
		"index.html":          `<img src="assets/img/hero.png">`,
		"about.html":          `<p>about</p>`,
	})

	scanner := newTestScanner()
	_, err := scanner.Scan(filepath.Join(root, "assets"), root)
	require.NoError(t, err)
	assert.Equal(t, 2, scanner.GetCacheStats()["cached_files"])

	require.NoError(t, os.Remove(filepath.Join(root, "about.html")))

	result, err := scanner.Scan(filepath.Join(root, "assets"), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"assets/img/hero.png"}, result.Used)
	assert.Equal(t, 1, scanner.GetCacheStats()["cached_files"])
}

func TestScan_InvalidUTF8DoesNotAbort(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"assets/a.png": "a",
		"assets/b.png": "b",
	})
	raw := append([]byte{0xff, 0xfe, 0xfd}, []byte(`<img src="assets/a.png">`)...)
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), raw, 0644))

	result, err := newTestScanner().Scan(filepath.Join(root, "assets"), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"assets/a.png"}, result.Used)
	assert.Equal(t, []string{"assets/b.png"}, result.Unused)
	assert.Empty(t, result.Skipped)
}

func TestScan_UnreadableCodeFileIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"assets/a.png": "a",
		"ok.html":      `<img src="assets/a.png">`,
		"locked.html":  `nothing`,
	})
	locked := filepath.Join(root, "locked.html")
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0644) })

	result, err := newTestScanner().Scan(filepath.Join(root, "assets"), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"assets/a.png"}, result.Used)
	assert.Equal(t, []string{locked}, result.Skipped)
	assert.Equal(t, 2, result.CodeFiles)
}

func TestScan_MissingAssetsRoot(t *testing.T) {
	root := t.TempDir()

	_, err := newTestScanner().Scan(filepath.Join(root, "assets"), root)
	assert.Error(t, err)
}

func TestListAssets_SortedWithCategories(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"assets/slideshow/b.jpg": "b",
		"assets/gallery/a.jpg":   "a",
		"assets/z.png":           "z",
	})

	assets, err := newTestScanner().ListAssets(filepath.Join(root, "assets"), root)
	require.NoError(t, err)
	require.Len(t, assets, 3)

	assert.Equal(t, "assets/gallery/a.jpg", assets[0].Path)
	assert.Equal(t, "gallery", assets[0].Category)
	assert.Equal(t, "assets/slideshow/b.jpg", assets[1].Path)
	assert.Equal(t, "slideshow", assets[1].Category)
	assert.Equal(t, "assets/z.png", assets[2].Path)
	assert.Equal(t, "images", assets[2].Category)
	for _, asset := range assets {
		assert.True(t, asset.Exists)
		assert.FileExists(t, asset.FullPath)
	}
}

func TestListAssets_OutsideSourceRootKeepsDirectoryName(t *testing.T) {
	assetsParent := t.TempDir()
	writeFiles(t, assetsParent, map[string]string{"assets/a.png": "a"})

	assets, err := newTestScanner().ListAssets(filepath.Join(assetsParent, "assets"), t.TempDir())
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "assets/a.png", assets[0].Path)
}

func TestListCodeFiles_FiltersExtensionsAndExclusions(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"index.html":                  "",
		"pages/about.HTML":            "",
		"assets/css/site.css":         "",
		"assets/js/script.js":         "",
		"README.md":                   "",
		".git/hooks/pre-commit.js":    "",
		"fonts/transfonter/demo.html": "",
		".venv/lib/x.js":              "",
	})

	files, err := newTestScanner().ListCodeFiles(root)
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	sort.Strings(rel)

	assert.Equal(t, []string{"assets/css/site.css", "assets/js/script.js", "index.html", "pages/about.HTML"}, rel)
}

func TestReferencePatterns(t *testing.T) {
	patterns := ReferencePatterns(models.Asset{Path: "assets/icons/a.png", OSPath: filepath.FromSlash("assets/icons/a.png")})

	assert.Contains(t, patterns, "assets/icons/a.png")
	assert.Contains(t, patterns, "a.png")
	assert.NotContains(t, patterns, "a")
}

func TestReferencePatterns_KeepsTwoCharacterStem(t *testing.T) {
	patterns := ReferencePatterns(models.Asset{Path: "assets/slideshow/s1.jpg"})

	assert.Contains(t, patterns, "s1")
}

func TestReferencePatterns_IncludesStem(t *testing.T) {
	patterns := ReferencePatterns(models.Asset{Path: "assets/gallery/photo1.webp"})

	assert.Contains(t, patterns, "photo1")
	assert.Contains(t, patterns, "photo1.webp")
}

func TestReferencePatterns_BackslashPath(t *testing.T) {
	patterns := ReferencePatterns(models.Asset{OSPath: `assets\icons\logo.png`})

	assert.Equal(t, []string{`assets\icons\logo.png`, "logo.png", "logo", "assets/icons/logo.png"}, patterns)
}

func TestReferencePatterns_DotFileKeepsName(t *testing.T) {
	patterns := ReferencePatterns(models.Asset{Path: "assets/.htaccess"})

	assert.NotContains(t, patterns, "")
	assert.Contains(t, patterns, ".htaccess")
}

func TestFindDuplicates(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"assets/a.png":       "same-bytes",
		"assets/copy/a.png":  "same-bytes",
		"assets/other.png":   "different!",
		"assets/lonely.png":  "unique",
		"assets/z/third.png": "same-bytes",
	})

	scanner := newTestScanner()
	assets, err := scanner.ListAssets(filepath.Join(root, "assets"), root)
	require.NoError(t, err)

	groups, err := scanner.FindDuplicates(assets)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	assert.Equal(t, []string{"assets/a.png", "assets/copy/a.png", "assets/z/third.png"}, groups[0].Paths)
	assert.Len(t, groups[0].Fingerprint, 16)
}
