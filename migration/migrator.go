package migration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ryanwalloh/assetkit/identifier"
	"github.com/ryanwalloh/assetkit/logger"
	"github.com/ryanwalloh/assetkit/mapping"
	"github.com/ryanwalloh/assetkit/uploader/contracts"
)

// ErrAssetMissing marks an item whose local file does not exist.
var ErrAssetMissing = errors.New("local asset not found")

// LogoFolder is the remote folder logos are published under.
const LogoFolder = "logo"

// Item is one reference to publish.
type Item struct {
	Ref       string
	LocalPath string
	PublicID  string
}

// Logo is a configured logo file and the name it is published under.
type Logo struct {
	Path string `mapstructure:"path" yaml:"path"`
	Name string `mapstructure:"name" yaml:"name"`
}

// DefaultLogos are the site logos uploaded by upload-logos.
var DefaultLogos = []Logo{
	{Path: "assets/logo/ryamazingwhite.png", Name: "ryamazingwhite"},
	{Path: "assets/logo/ryamazingwblack.png", Name: "ryamazingwblack"},
}

// Summary counts what a run did with its items.
type Summary struct {
	Uploaded int
	Skipped  int
	Missing  int
	Failed   int
}

// Total is the number of items the run looked at.
func (s Summary) Total() int {
	return s.Uploaded + s.Skipped + s.Missing + s.Failed
}

// Migrator uploads items that are not yet in the mapping store.
type Migrator struct {
	uploader contracts.IAssetUploader
	store    *mapping.Store
}

// NewMigrator creates a Migrator recording results into store.
func NewMigrator(uploader contracts.IAssetUploader, store *mapping.Store) *Migrator {
	return &Migrator{uploader: uploader, store: store}
}

// ItemsFromReferences turns page references into upload items resolved
// against siteRoot.
func ItemsFromReferences(refs []string, siteRoot string, rules identifier.Rules) []Item {
	items := make([]Item, 0, len(refs))
	for _, ref := range refs {
		items = append(items, Item{
			Ref:       ref,
			LocalPath: identifier.ResolveLocalPath(siteRoot, ref),
			PublicID:  rules.PublicID(ref),
		})
	}
	return items
}

// ItemsFromLogos builds items for the configured logos. The mapping key is
// the logo path as configured.
func ItemsFromLogos(logos []Logo, siteRoot string) []Item {
	items := make([]Item, 0, len(logos))
	for _, logo := range logos {
		items = append(items, Item{
			Ref:       logo.Path,
			LocalPath: filepath.Join(siteRoot, filepath.FromSlash(logo.Path)),
			PublicID:  LogoFolder + "/" + logo.Name,
		})
	}
	return items
}

// Run processes items in order. Items already mapped are skipped without
// an upload. Missing files and failed uploads are reported and skipped,
// leaving the store untouched for them. Cancellation or an unavailable
// uploader stops the loop; the caller saves the store either way so
// completed uploads are kept.
func (m *Migrator) Run(ctx context.Context, items []Item) (Summary, error) {
	var summary Summary

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if m.store.Has(item.Ref) {
			logger.Info("⏭️  Skipping %s (already uploaded)", item.Ref)
			summary.Skipped++
			continue
		}

		url, err := m.uploadItem(ctx, item)
		switch {
		case errors.Is(err, ErrAssetMissing):
			logger.Warn("%s not found, skipping...", item.LocalPath)
			summary.Missing++
			continue
		case errors.Is(err, contracts.ErrUploaderUnavailable):
			return summary, err
		case err != nil:
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			logger.Error("Error uploading %s: %v", item.Ref, err)
			summary.Failed++
			continue
		}

		m.store.InsertIfAbsent(item.Ref, url)
		logger.Success("Uploaded: %s", url)
		summary.Uploaded++
	}

	return summary, nil
}

func (m *Migrator) uploadItem(ctx context.Context, item Item) (string, error) {
	info, err := os.Stat(item.LocalPath)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrAssetMissing, item.LocalPath)
	}

	logger.Info("📤 Uploading: %s -> %s", item.Ref, item.PublicID)
	return m.uploader.Upload(ctx, contracts.UploadRequest{
		LocalPath:    item.LocalPath,
		PublicID:     item.PublicID,
		Overwrite:    true,
		ResourceType: "image",
	})
}
