package rewriter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ryanwalloh/assetkit/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeWith(pairs ...string) *mapping.Store {
	store := mapping.New("unused.json")
	for i := 0; i+1 < len(pairs); i += 2 {
		store.InsertIfAbsent(pairs[i], pairs[i+1])
	}
	return store
}

func TestRewriteContent_RoundTrip(t *testing.T) {
	store := storeWith("assets/a.png", "https://cdn.example/a")

	out, count := RewriteContent(`<img src="assets/a.png">`, store)

	assert.Equal(t, `<img src="https://cdn.example/a">`, out)
	assert.Equal(t, 1, count)
}

func TestRewriteContent_QuotesAndAttributes(t *testing.T) {
	store := storeWith(
		"../assets/gallery/p.webp", "https://cdn.example/gallery/p",
		"../assets/favicon/f.ico", "https://cdn.example/favicon/f",
	)
	in := `<a href='../assets/gallery/p.webp'><img src="../assets/gallery/p.webp"></a>
<link rel="icon" href="../assets/favicon/f.ico">`

	out, count := RewriteContent(in, store)

	assert.Equal(t, `<a href='https://cdn.example/gallery/p'><img src="https://cdn.example/gallery/p"></a>
<link rel="icon" href="https://cdn.example/favicon/f">`, out)
	assert.Equal(t, 3, count)
}

func TestRewriteContent_OnlyExactAttributeValues(t *testing.T) {
	store := storeWith("assets/a.png", "https://cdn.example/a")
	in := `<img src="assets/a.png.bak"><img data-src="x" alt="assets/a.png"><p>assets/a.png</p><img src="/assets/a.png">`

	out, count := RewriteContent(in, store)

	assert.Equal(t, in, out)
	assert.Equal(t, 0, count)
}

func TestRewriteContent_RegexMetacharactersInKey(t *testing.T) {
	store := storeWith("assets/a+b (1).png", "https://cdn.example/$1/ab")

	out, count := RewriteContent(`<img src="assets/a+b (1).png"><img src="assets/aab (1)xpng">`, store)

	assert.Equal(t, `<img src="https://cdn.example/$1/ab"><img src="assets/aab (1)xpng">`, out)
	assert.Equal(t, 1, count)
}

func TestRewriteContent_Idempotent(t *testing.T) {
	store := storeWith(
		"assets/a.png", "https://cdn.example/a",
		"assets/b.png", "https://cdn.example/b",
	)
	in := `<img src="assets/a.png"><img src='assets/b.png'>`

	once, _ := RewriteContent(in, store)
	twice, count := RewriteContent(once, store)

	assert.Equal(t, once, twice)
	assert.Equal(t, 0, count)
}

func TestRewriteFile_WritesBackupAndContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "home.html")
	original := `<img src="assets/a.png">`
	require.NoError(t, os.WriteFile(path, []byte(original), 0640))

	result, err := RewriteFile(path, storeWith("assets/a.png", "https://cdn.example/a"))
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, 1, result.Replacements)
	assert.Equal(t, path+".backup", result.BackupPath)

	backup, err := os.ReadFile(path + ".backup")
	require.NoError(t, err)
	assert.Equal(t, original, string(backup))

	rewritten, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `<img src="https://cdn.example/a">`, string(rewritten))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestRewriteFile_SecondRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "home.html")
	require.NoError(t, os.WriteFile(path, []byte(`<img src="assets/a.png">`), 0644))
	store := storeWith("assets/a.png", "https://cdn.example/a")

	_, err := RewriteFile(path, store)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path+".backup"))

	result, err := RewriteFile(path, store)
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.Empty(t, result.BackupPath)
	assert.NoFileExists(t, path+".backup")
}

func TestRewriteFile_NoOpLeavesNoBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(`<p>nothing here</p>`), 0644))

	result, err := RewriteFile(path, storeWith("assets/a.png", "https://cdn.example/a"))
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.NoFileExists(t, path+".backup")
}

func TestRewriteFile_MissingTarget(t *testing.T) {
	_, err := RewriteFile(filepath.Join(t.TempDir(), "missing.html"), storeWith())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTargetNotFound))
}

func TestPreview(t *testing.T) {
	result := &Result{
		Path:     "pages/home.html",
		Changed:  true,
		Original: "<html>\n<img src=\"assets/a.png\">\n</html>",
		Updated:  "<html>\n<img src=\"https://cdn.example/a\">\n</html>",
	}

	assert.Equal(t, `--- pages/home.html
+++ pages/home.html
@@ -2 +2 @@
-<img src="assets/a.png">
+<img src="https://cdn.example/a">
`, Preview(result))
}

func TestPreview_Unchanged(t *testing.T) {
	assert.Empty(t, Preview(&Result{Path: "x.html"}))
	assert.Empty(t, Preview(nil))
}
