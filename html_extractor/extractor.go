package html_extractor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
)

// tagQuery captures every opening and self-closing tag in the document.
const tagQuery = `[(start_tag) (self_closing_tag)] @tag`

var (
	linkedImageExtensions = []string{".webp", ".jpg", ".jpeg", ".png", ".gif"}
	iconExtensions        = []string{".png", ".ico", ".svg"}
	remotePrefixes        = []string{"http:", "https:", "//", "data:"}
)

// Tag is one HTML tag with its attributes, values as written in the markup.
type Tag struct {
	Name       string
	Attributes map[string]string
}

// ParseTags parses content with tree-sitter and returns its tags in document order.
func ParseTags(ctx context.Context, content []byte) ([]Tag, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	lang := html.GetLanguage()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	defer tree.Close()

	query, err := sitter.NewQuery([]byte(tagQuery), lang)
	if err != nil {
		return nil, fmt.Errorf("failed to compile query: %w", err)
	}
	defer query.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, tree.RootNode())

	var tags []Tag
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			tags = append(tags, readTag(capture.Node, content))
		}
	}
	return tags, nil
}

func readTag(node *sitter.Node, content []byte) Tag {
	tag := Tag{Attributes: make(map[string]string)}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "tag_name":
			tag.Name = strings.ToLower(child.Content(content))
		case "attribute":
			name, value := readAttribute(child, content)
			if name == "" {
				continue
			}
			// The first occurrence wins, as in browsers.
			if _, exists := tag.Attributes[name]; !exists {
				tag.Attributes[name] = value
			}
		}
	}
	return tag
}

func readAttribute(node *sitter.Node, content []byte) (string, string) {
	var name, value string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "attribute_name":
			name = strings.ToLower(child.Content(content))
		case "attribute_value":
			value = child.Content(content)
		case "quoted_attribute_value":
			raw := child.Content(content)
			if len(raw) >= 2 {
				raw = raw[1 : len(raw)-1]
			}
			value = raw
		}
	}
	return name, value
}

// ExtractOptions selects which tags besides <img> and icon links are read.
type ExtractOptions struct {
	// LinkedImages also collects <a href> values pointing at an image file.
	LinkedImages bool
}

// ExtractImageReferences returns the sorted, unique image references of a
// page: every <img src>, every <link rel="icon" href> pointing at an icon
// file and, with LinkedImages, every <a href> pointing at an image file.
// Remote URLs are ignored.
func ExtractImageReferences(ctx context.Context, content []byte, opts ExtractOptions) ([]string, error) {
	tags, err := ParseTags(ctx, content)
	if err != nil {
		return nil, err
	}

	found := make(map[string]struct{})
	for _, tag := range tags {
		ref, ok := imageReference(tag, opts)
		if !ok || ref == "" || isRemote(ref) {
			continue
		}
		found[ref] = struct{}{}
	}

	refs := make([]string, 0, len(found))
	for ref := range found {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs, nil
}

func imageReference(tag Tag, opts ExtractOptions) (string, bool) {
	switch tag.Name {
	case "img":
		src, ok := tag.Attributes["src"]
		return src, ok
	case "a":
		if !opts.LinkedImages {
			return "", false
		}
		href, ok := tag.Attributes["href"]
		return href, ok && hasExtension(href, linkedImageExtensions)
	case "link":
		href, ok := tag.Attributes["href"]
		return href, ok && hasExtension(href, iconExtensions) && hasRelToken(tag.Attributes["rel"], "icon")
	default:
		return "", false
	}
}

func hasExtension(ref string, extensions []string) bool {
	lower := strings.ToLower(ref)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func hasRelToken(rel string, token string) bool {
	for _, field := range strings.Fields(rel) {
		if strings.EqualFold(field, token) {
			return true
		}
	}
	return false
}

func isRemote(ref string) bool {
	lower := strings.ToLower(ref)
	for _, prefix := range remotePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
