package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/ryanwalloh/assetkit/asset_scanner"
	"github.com/ryanwalloh/assetkit/asset_scanner/models"
	"github.com/ryanwalloh/assetkit/constants/lipgloss"
	"github.com/ryanwalloh/assetkit/logger"
	"github.com/spf13/cobra"
)

// ScanOptions are the scan command's flags.
type ScanOptions struct {
	Duplicates bool
	Watch      bool
	Stats      bool
}

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the assets no code file refers to",
	Long: `The 'scan' command walks the assets directory and searches every HTML, CSS and
JavaScript file of the site for each asset's path, file name or file stem.
Assets matched by none of them are reported as unused. The match is a plain
substring search, so an asset is only reported unused when nothing mentions it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts ScanOptions
		opts.Duplicates, _ = cmd.Flags().GetBool("duplicates")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.Stats, _ = cmd.Flags().GetBool("stats")

		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return handleScanCommand(ctx, rootDependencies, opts, cmd.OutOrStdout())
	},
}

func init() {
	scanCmd.Flags().BoolP("duplicates", "d", false, "Also report assets with identical content")
	scanCmd.Flags().BoolP("watch", "w", false, "Rescan whenever a file under the site root changes")
	scanCmd.Flags().BoolP("stats", "s", false, "Show content cache statistics after each scan")

	rootCmd.AddCommand(scanCmd)
}

func handleScanCommand(ctx context.Context, rootDependencies *RootDependencies, opts ScanOptions, out io.Writer) error {
	if err := runScan(rootDependencies, opts, out); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	watcher, err := asset_scanner.NewWatcher(rootDependencies.Config.SiteRoot, rootDependencies.Config.ExcludeDirs, func() {
		fmt.Fprintln(out, lipgloss.Gray.Render("Change detected, rescanning..."))
		if err := runScan(rootDependencies, opts, out); err != nil {
			logger.Error("Scan failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	defer watcher.Close()

	fmt.Fprintln(out, lipgloss.Info.Render(fmt.Sprintf("👀 Watching %s for changes (Ctrl+C to stop)", rootDependencies.Config.SiteRoot)))
	return watcher.Watch(ctx)
}

func runScan(rootDependencies *RootDependencies, opts ScanOptions, out io.Writer) error {
	cfg := rootDependencies.Config
	scanner := rootDependencies.Scanner

	spinnerScan, _ := newSpinner().Start("Scanning assets and checking for usage...")
	result, err := scanner.Scan(cfg.AssetsRoot, cfg.SiteRoot)
	if err == nil && opts.Duplicates {
		result.Duplicates, err = scanner.FindDuplicates(result.Assets)
	}
	if spinnerScan != nil {
		_ = spinnerScan.Stop()
	}
	if err != nil {
		return err
	}

	printScanReport(out, result)

	if opts.Stats {
		printCacheStats(out, scanner.GetCacheStats())
	}
	return nil
}

func printScanReport(out io.Writer, result *models.ScanResult) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintf(out, "Found %d asset files\n", result.AssetCount())
	fmt.Fprintf(out, "Searching in %d code files\n\n", result.CodeFiles)

	for _, skipped := range result.Skipped {
		logger.Warn("Could not read %s, it was not searched", skipped)
	}

	fmt.Fprintln(out, separator)
	fmt.Fprintf(out, "RESULTS: %d unused assets found\n", len(result.Unused))
	fmt.Fprintln(out, separator)
	fmt.Fprintln(out)

	if len(result.Unused) > 0 {
		fmt.Fprintln(out, "UNUSED ASSETS:")
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, path := range result.Unused {
			fmt.Fprintln(out, path)
		}
	} else {
		fmt.Fprintln(out, lipgloss.Green.Render("All assets are being used!"))
	}

	if len(result.Duplicates) > 0 {
		fmt.Fprintln(out)
		printDuplicates(out, result.Duplicates)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, lipgloss.BoxStyle.Render(fmt.Sprintf("Summary: %d used, %d unused", len(result.Used), len(result.Unused))))
}

func printDuplicates(out io.Writer, groups []models.DuplicateGroup) {
	data := pterm.TableData{{"Fingerprint", "Assets"}}
	for _, group := range groups {
		data = append(data, []string{group.Fingerprint, strings.Join(group.Paths, "\n")})
	}

	fmt.Fprintln(out, lipgloss.Yellow.Render(fmt.Sprintf("DUPLICATE ASSETS: %d groups", len(groups))))
	table, err := pterm.DefaultTable.WithHasHeader().WithRowSeparator("-").WithData(data).Srender()
	if err != nil {
		logger.Error("Failed to render duplicates table: %v", err)
		return
	}
	fmt.Fprintln(out, table)
}

func printCacheStats(out io.Writer, stats map[string]interface{}) {
	fmt.Fprintln(out, lipgloss.Info.Render("Cache Statistics:"))
	if requests, ok := stats["total_requests"].(int64); ok {
		fmt.Fprintf(out, "  Requests: %d\n", requests)
	}
	if hits, ok := stats["cache_hits"].(int64); ok {
		fmt.Fprintf(out, "  Hits: %d\n", hits)
	}
	if hitRate, ok := stats["hit_rate_percent"].(float64); ok {
		fmt.Fprintf(out, "  Hit Rate: %.1f%%\n", hitRate)
	}
	if files, ok := stats["cached_files"].(int); ok {
		fmt.Fprintf(out, "  Cached Files: %d\n", files)
	}
	if size, ok := stats["total_size"].(int64); ok {
		fmt.Fprintf(out, "  Total Size: %.2f KB\n", float64(size)/1024)
	}
}
