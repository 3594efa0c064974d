package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/ryanwalloh/assetkit/constants/lipgloss"
	"github.com/ryanwalloh/assetkit/migration"
	"github.com/spf13/cobra"
)

// uploadLogosCmd represents the upload-logos command
var uploadLogosCmd = &cobra.Command{
	Use:   "upload-logos",
	Short: "Upload the configured site logos under the logo folder",
	Long: `The 'upload-logos' command uploads each configured logo file as logo/<name>
and records it in the logos mapping file, keyed by the logo's configured path.
Logos already in the mapping are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return handleUploadLogosCommand(ctx, rootDependencies, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(uploadLogosCmd)
}

func handleUploadLogosCommand(ctx context.Context, rootDependencies *RootDependencies, out io.Writer) error {
	cfg := rootDependencies.Config

	uploader := newLazyUploader(rootDependencies)

	fmt.Fprintln(out, lipgloss.Info.Render("🚀 Uploading logos to Cloudinary..."))
	fmt.Fprintln(out)

	items := migration.ItemsFromLogos(cfg.Migration.Logos, cfg.SiteRoot)
	return runMigration(ctx, uploader, cfg.ResolveInSite(cfg.Migration.LogosMapping), items, out)
}
