package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ryanwalloh/assetkit/config"
	"github.com/ryanwalloh/assetkit/constants/lipgloss"
	"github.com/ryanwalloh/assetkit/html_extractor"
	"github.com/ryanwalloh/assetkit/logger"
	"github.com/ryanwalloh/assetkit/mapping"
	"github.com/ryanwalloh/assetkit/migration"
	"github.com/ryanwalloh/assetkit/uploader/contracts"
	"github.com/spf13/cobra"
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload [target...]",
	Short: "Upload the images a page uses and record their hosted URLs",
	Long: `The 'upload' command extracts the image references of each target page
(<img src>, <link rel="icon" href> and, for targets with linked_images set,
<a href> to an image), uploads every one that is not yet in the target's
mapping file and records the hosted URL. References already
mapped are skipped, so the command can be rerun after an interruption.

Without arguments every configured target is processed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return handleUploadCommand(ctx, rootDependencies, args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func handleUploadCommand(ctx context.Context, rootDependencies *RootDependencies, targetNames []string, out io.Writer) error {
	cfg := rootDependencies.Config

	targets, err := cfg.FindTargets(targetNames)
	if err != nil {
		return err
	}

	uploader := newLazyUploader(rootDependencies)
	for _, target := range targets {
		if err := uploadTarget(ctx, cfg, uploader, target, out); err != nil {
			return err
		}
	}
	return nil
}

func uploadTarget(ctx context.Context, cfg *config.Config, uploader contracts.IAssetUploader, target config.Target, out io.Writer) error {
	pagePath := cfg.ResolveInSite(target.Page)
	content, err := os.ReadFile(pagePath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Error("%s not found!", target.Page)
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", pagePath, err)
	}

	fmt.Fprintln(out, lipgloss.Info.Render(fmt.Sprintf("🔍 Extracting images from %s...", target.Page)))
	refs, err := html_extractor.ExtractImageReferences(ctx, content, html_extractor.ExtractOptions{
		LinkedImages: target.LinkedImages,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n📋 Found %d images to upload:\n\n", len(refs))
	for _, ref := range refs {
		fmt.Fprintf(out, "  - %s\n", ref)
	}
	fmt.Fprintln(out, "\n🚀 Starting upload to Cloudinary...")
	fmt.Fprintln(out)

	items := migration.ItemsFromReferences(refs, cfg.SiteRoot, cfg.BucketRules())
	return runMigration(ctx, uploader, cfg.ResolveInSite(target.Mapping), items, out)
}

// runMigration uploads items into the mapping at mappingPath and always
// saves the mapping afterwards, so an interrupted run keeps its progress.
func runMigration(ctx context.Context, uploader contracts.IAssetUploader, mappingPath string, items []migration.Item, out io.Writer) error {
	store, err := mapping.Load(mappingPath)
	if err != nil {
		return err
	}

	summary, runErr := migration.NewMigrator(uploader, store).Run(ctx, items)

	if err := store.Save(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, lipgloss.BoxStyle.Render(fmt.Sprintf(
		"✨ Upload complete! %d new images uploaded.\n%d skipped, %d missing, %d failed.\n📝 Mapping saved to %s",
		summary.Uploaded, summary.Skipped, summary.Missing, summary.Failed, mappingPath,
	)))

	return runErr
}
