package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ryanwalloh/assetkit/config"
	"github.com/ryanwalloh/assetkit/constants/lipgloss"
	"github.com/ryanwalloh/assetkit/logger"
	"github.com/ryanwalloh/assetkit/mapping"
	"github.com/ryanwalloh/assetkit/rewriter"
	"github.com/ryanwalloh/assetkit/utils"
	"github.com/spf13/cobra"
)

// rewriteCmd represents the rewrite command
var rewriteCmd = &cobra.Command{
	Use:   "rewrite [target...]",
	Short: "Point a page's image references at their hosted URLs",
	Long: `The 'rewrite' command replaces every src or href attribute value of a target page
that exactly equals a key of the target's mapping file with the mapped URL.
The original page is kept as <page>.backup. Pages that need no change are not
touched.

Every target's mapping file and page must exist, otherwise nothing is rewritten.
Use --dry-run to preview the changes as a diff.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return handleRewriteCommand(ctx, rootDependencies, args, dryRun, cmd.OutOrStdout())
	},
}

func init() {
	rewriteCmd.Flags().BoolP("dry-run", "n", false, "Show the changes without writing any file")

	rootCmd.AddCommand(rewriteCmd)
}

type rewriteJob struct {
	target   config.Target
	pagePath string
	store    *mapping.Store
}

func handleRewriteCommand(ctx context.Context, rootDependencies *RootDependencies, targetNames []string, dryRun bool, out io.Writer) error {
	cfg := rootDependencies.Config

	targets, err := cfg.FindTargets(targetNames)
	if err != nil {
		return err
	}

	jobs, err := prepareRewriteJobs(cfg, targets)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if dryRun {
			if err := previewRewrite(ctx, cfg, job, out); err != nil {
				return err
			}
			continue
		}

		result, err := rewriter.RewriteFile(job.pagePath, job.store)
		if err != nil {
			return err
		}
		if !result.Changed {
			fmt.Fprintln(out, lipgloss.Gray.Render(fmt.Sprintf("ℹ️  No changes needed for %s", job.target.Page)))
			continue
		}
		fmt.Fprintf(out, "💾 Backup created: %s\n", result.BackupPath)
		logger.Success("Updated %s with Cloudinary URLs (%d replacements)", job.target.Page, result.Replacements)
	}
	return nil
}

// prepareRewriteJobs loads every mapping and checks every page before any
// file is written.
func prepareRewriteJobs(cfg *config.Config, targets []config.Target) ([]rewriteJob, error) {
	jobs := make([]rewriteJob, 0, len(targets))
	for _, target := range targets {
		mappingPath := cfg.ResolveInSite(target.Mapping)
		store, err := mapping.LoadExisting(mappingPath)
		if err != nil {
			if errors.Is(err, mapping.ErrMappingNotFound) {
				return nil, fmt.Errorf("mapping file %s not found, run upload step first: %w", target.Mapping, err)
			}
			return nil, err
		}

		pagePath := cfg.ResolveInSite(target.Page)
		if _, err := os.Stat(pagePath); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", rewriter.ErrTargetNotFound, target.Page)
			}
			return nil, err
		}

		jobs = append(jobs, rewriteJob{target: target, pagePath: pagePath, store: store})
	}
	return jobs, nil
}

func previewRewrite(ctx context.Context, cfg *config.Config, job rewriteJob, out io.Writer) error {
	result, err := rewriter.PlanFile(job.pagePath, job.store)
	if err != nil {
		return err
	}
	if !result.Changed {
		fmt.Fprintln(out, lipgloss.Gray.Render(fmt.Sprintf("ℹ️  No changes needed for %s", job.target.Page)))
		return nil
	}

	fmt.Fprintln(out, lipgloss.Info.Render(fmt.Sprintf("%s: %d replacements (dry run)", job.target.Page, result.Replacements)))
	return utils.RenderDiff(ctx, out, rewriter.Preview(result), cfg.Theme)
}
