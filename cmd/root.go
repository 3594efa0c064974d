package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pterm/pterm"
	"github.com/ryanwalloh/assetkit/asset_scanner"
	scanner_contracts "github.com/ryanwalloh/assetkit/asset_scanner/contracts"
	"github.com/ryanwalloh/assetkit/config"
	"github.com/ryanwalloh/assetkit/constants/lipgloss"
	"github.com/ryanwalloh/assetkit/logger"
	"github.com/ryanwalloh/assetkit/uploader/cloudinary"
	uploader_contracts "github.com/ryanwalloh/assetkit/uploader/contracts"
	"github.com/spf13/cobra"
)

// RootDependencies is what every subcommand works with.
type RootDependencies struct {
	Cwd         string
	Config      *config.Config
	Scanner     scanner_contracts.IReferenceScanner
	NewUploader func(cfg *config.Config) (uploader_contracts.IAssetUploader, error)
}

var rootCmd = &cobra.Command{
	Use:   "assetkit",
	Short: "Audit, upload and rewrite the image assets of a static website",
	Long: `assetkit keeps the image assets of a static site in order.

It finds assets no markup, stylesheet or script refers to, uploads the images a
page uses to Cloudinary while recording a local-reference to hosted-URL mapping,
and rewrites pages to point at the hosted URLs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			fmt.Fprintln(cmd.OutOrStdout(), config.DefaultConfig.Version)
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	config.InitFlags(rootCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	defer func() { _ = logger.Close() }()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("❌ %v", err)))
		_ = logger.Close()
		os.Exit(1)
	}
}

// handleRootCommand loads the configuration and wires the shared dependencies.
func handleRootCommand(cmd *cobra.Command) (*RootDependencies, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigs(cmd.Root(), cwd)
	if err != nil {
		return nil, err
	}

	return newRootDependencies(cwd, cfg), nil
}

func newRootDependencies(cwd string, cfg *config.Config) *RootDependencies {
	logger.SetVerbose(cfg.Verbose)
	logger.SetLogFile(cfg.Logfile)

	return &RootDependencies{
		Cwd:    cwd,
		Config: cfg,
		Scanner: asset_scanner.NewReferenceScanner(asset_scanner.Options{
			ExcludeDirs:    cfg.ExcludeDirs,
			CodeExtensions: cfg.CodeExtensions,
			BucketRules:    cfg.BucketRules(),
		}),
		NewUploader: newCloudinaryUploader,
	}
}

func newCloudinaryUploader(cfg *config.Config) (uploader_contracts.IAssetUploader, error) {
	credentials := cfg.CloudinaryCredentials().WithKeyringSecret()
	return cloudinary.NewCloudinaryUploader(&cloudinary.CloudinaryConfig{
		Credentials:       credentials,
		RequestsPerSecond: cfg.Cloudinary.RequestsPerSecond,
	})
}

// lazyUploader builds the real uploader on the first upload, so runs where
// every item is already mapped need no credentials.
type lazyUploader struct {
	build    func() (uploader_contracts.IAssetUploader, error)
	once     sync.Once
	uploader uploader_contracts.IAssetUploader
	err      error
}

func newLazyUploader(rootDependencies *RootDependencies) *lazyUploader {
	return &lazyUploader{
		build: func() (uploader_contracts.IAssetUploader, error) {
			return rootDependencies.NewUploader(rootDependencies.Config)
		},
	}
}

func (l *lazyUploader) Upload(ctx context.Context, request uploader_contracts.UploadRequest) (string, error) {
	l.once.Do(func() {
		l.uploader, l.err = l.build()
	})
	if l.err != nil {
		return "", fmt.Errorf("%w: %w", uploader_contracts.ErrUploaderUnavailable, l.err)
	}
	return l.uploader.Upload(ctx, request)
}

func newSpinner() *pterm.SpinnerPrinter {
	return pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true)
}
