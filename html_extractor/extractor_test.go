package html_extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homePage = `<!DOCTYPE html>
<html>
<head>
  <link rel="icon" type="image/png" href="../assets/favicon/favicon.png">
  <link rel="stylesheet" href="../assets/css/site.css">
  <link rel="apple-touch-icon" href="../assets/favicon/apple.png">
</head>
<body>
  <img src="../assets/logo/ryamazingwhite.png" alt="logo">
  <a href="../assets/gallery/photo1.webp"><img src='../assets/gallery/photo1-thumb.webp'></a>
  <a href="about.html">About</a>
  <img src="../assets/logo/ryamazingwhite.png">
  <img src="https://res.cloudinary.com/demo/image/upload/gallery/x">
  <img src="data:image/gif;base64,R0lGODlhAQABAAAAACw=">
  <img src=../assets/misc/unquoted.jpg>
  <IMG SRC="../assets/misc/Upper.JPG"/>
</body>
</html>`

func TestExtractImageReferences(t *testing.T) {
	refs, err := ExtractImageReferences(context.Background(), []byte(homePage), ExtractOptions{LinkedImages: true})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"../assets/favicon/favicon.png",
		"../assets/gallery/photo1-thumb.webp",
		"../assets/gallery/photo1.webp",
		"../assets/logo/ryamazingwhite.png",
		"../assets/misc/Upper.JPG",
		"../assets/misc/unquoted.jpg",
	}, refs)
}

func TestExtractImageReferences_WithoutLinkedImages(t *testing.T) {
	refs, err := ExtractImageReferences(context.Background(), []byte(homePage), ExtractOptions{})
	require.NoError(t, err)

	assert.NotContains(t, refs, "../assets/gallery/photo1.webp")
	assert.Equal(t, []string{
		"../assets/favicon/favicon.png",
		"../assets/gallery/photo1-thumb.webp",
		"../assets/logo/ryamazingwhite.png",
		"../assets/misc/Upper.JPG",
		"../assets/misc/unquoted.jpg",
	}, refs)
}

func TestExtractImageReferences_Empty(t *testing.T) {
	refs, err := ExtractImageReferences(context.Background(), []byte(`<p>no images</p>`), ExtractOptions{LinkedImages: true})
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestParseTags(t *testing.T) {
	tags, err := ParseTags(context.Background(), []byte(`<link rel="icon" href="f.ico"><br/>`))
	require.NoError(t, err)
	require.Len(t, tags, 2)

	assert.Equal(t, "link", tags[0].Name)
	assert.Equal(t, map[string]string{"rel": "icon", "href": "f.ico"}, tags[0].Attributes)
	assert.Equal(t, "br", tags[1].Name)
}

func TestHasRelToken(t *testing.T) {
	assert.True(t, hasRelToken("shortcut icon", "icon"))
	assert.True(t, hasRelToken("ICON", "icon"))
	assert.False(t, hasRelToken("apple-touch-icon", "icon"))
	assert.False(t, hasRelToken("", "icon"))
}
