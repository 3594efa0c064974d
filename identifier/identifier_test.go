package identifier

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRules_Bucket(t *testing.T) {
	rules := DefaultRules()

	cases := map[string]string{
		"assets/favicon/favicon.png":       "favicon",
		"../assets/gallery/photo1.webp":    "gallery",
		"assets/slideshow/slide-2.jpg":     "slideshow",
		"assets/icons/github.svg":          "icons",
		"assets/mobileicons/menu.png":      "icons",
		"../assets/misc/banner.png":        "misc",
		"assets/logo/ryamazingwhite.png":   "images",
		"assets/gallery/icons/overlap.png": "gallery",
		"assets/misc/icons-x.png":          "misc",
	}

	for ref, want := range cases {
		t.Run(ref, func(t *testing.T) {
			assert.Equal(t, want, rules.Bucket(ref))
		})
	}
}

func TestRules_BucketFallsBackToStockDefault(t *testing.T) {
	rules := Rules{Buckets: []string{"", "hero"}}

	assert.Equal(t, "hero", rules.Bucket("assets/hero/a.png"))
	assert.Equal(t, DefaultBucket, rules.Bucket("assets/other/a.png"))
}

func TestRules_PublicID(t *testing.T) {
	rules := DefaultRules()

	cases := map[string]string{
		"../assets/gallery/photo1.webp": "gallery/gallery/photo1",
		"assets/icons/github.svg":       "icons/icons/github",
		`assets\misc\banner.png`:        "misc/misc/banner",
		"./assets/logo/b.png":           "images/logo/b",
		"../../assets/a.tar.gz":         "images/a.tar",
		"favicon.ico":                   "favicon/favicon",
	}

	for ref, want := range cases {
		t.Run(ref, func(t *testing.T) {
			assert.Equal(t, want, rules.PublicID(ref))
		})
	}
}

func TestRules_PublicIDIsDeterministic(t *testing.T) {
	rules := DefaultRules()
	ref := "../assets/gallery/photo1.webp"

	assert.Equal(t, rules.PublicID(ref), rules.PublicID(ref))
}

func TestResolveLocalPath(t *testing.T) {
	root := filepath.Join("site", "root")

	assert.Equal(t, filepath.Join(root, "assets", "gallery", "a.webp"), ResolveLocalPath(root, "../assets/gallery/a.webp"))
	assert.Equal(t, filepath.Join(root, "assets", "a.png"), ResolveLocalPath(root, "assets/a.png"))
	assert.Equal(t, filepath.Join(root, "assets", "a.png"), ResolveLocalPath(root, "./assets/a.png"))
}
