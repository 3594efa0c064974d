package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ryanwalloh/assetkit/config"
	"github.com/ryanwalloh/assetkit/constants/lipgloss"
	"github.com/ryanwalloh/assetkit/rewriter"
	"github.com/ryanwalloh/assetkit/utils"
	"github.com/spf13/cobra"
)

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore [target...]",
	Short: "Put a rewritten page back from its .backup copy",
	Long: `The 'restore' command copies <page>.backup over each target page, undoing the
last rewrite. Only the single most recent backup exists, so restoring twice has
no further effect. Targets without a backup are reported and left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return handleRestoreCommand(ctx, rootDependencies, args, force, bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
	},
}

func init() {
	restoreCmd.Flags().BoolP("force", "f", false, "Restore without confirmation")

	rootCmd.AddCommand(restoreCmd)
}

func handleRestoreCommand(ctx context.Context, rootDependencies *RootDependencies, targetNames []string, force bool, reader *bufio.Reader, out io.Writer) error {
	cfg := rootDependencies.Config

	targets, err := cfg.FindTargets(targetNames)
	if err != nil {
		return err
	}

	// Confirm restore (if not forced)
	if !force {
		ok, err := utils.ConfirmPromptWithContext(ctx, reader, fmt.Sprintf("Restore %d page(s) from their backups?", len(targets)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, lipgloss.Yellow.Render("Restore cancelled."))
			return nil
		}
	}

	spinnerRestore, _ := newSpinner().Start("Restoring pages...")
	var messages []string
	for _, target := range targets {
		message, err := restoreTarget(cfg, target)
		if err != nil {
			if spinnerRestore != nil {
				_ = spinnerRestore.Stop()
			}
			return err
		}
		messages = append(messages, message)
	}
	if spinnerRestore != nil {
		_ = spinnerRestore.Stop()
	}

	for _, message := range messages {
		fmt.Fprintln(out, message)
	}
	return nil
}

func restoreTarget(cfg *config.Config, target config.Target) (string, error) {
	pagePath := cfg.ResolveInSite(target.Page)
	backupPath := pagePath + rewriter.BackupSuffix

	backup, err := os.ReadFile(backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return lipgloss.Yellow.Render(fmt.Sprintf("⚠️  No backup for %s", target.Page)), nil
		}
		return "", fmt.Errorf("failed to read %s: %w", backupPath, err)
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(pagePath); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(pagePath, backup, mode); err != nil {
		return "", fmt.Errorf("failed to restore %s: %w", pagePath, err)
	}

	return lipgloss.Green.Render(fmt.Sprintf("✓ Restored %s from %s", target.Page, backupPath)), nil
}
