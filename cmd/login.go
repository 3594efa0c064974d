package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/ryanwalloh/assetkit/constants/lipgloss"
	"github.com/ryanwalloh/assetkit/uploader/cloudinary"
	"github.com/ryanwalloh/assetkit/utils"
	"github.com/spf13/cobra"
)

// readSecret asks for a value without echoing it.
var readSecret = func(label string) (string, error) {
	return pterm.DefaultInteractiveTextInput.WithMask("*").Show(label)
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the Cloudinary API secret in the OS keyring",
	Long: `The 'login' command asks for the Cloudinary API key and secret and stores the
secret in the operating system keyring, keyed by the API key. Uploads read it
from there when CLOUDINARY_API_SECRET and the configuration leave it unset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logout, _ := cmd.Flags().GetBool("logout")

		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return handleLoginCommand(ctx, rootDependencies, logout, bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
	},
}

func init() {
	loginCmd.Flags().Bool("logout", false, "Remove the stored API secret instead")

	rootCmd.AddCommand(loginCmd)
}

func handleLoginCommand(ctx context.Context, rootDependencies *RootDependencies, logout bool, reader *bufio.Reader, out io.Writer) error {
	apiKey := rootDependencies.Config.Cloudinary.APIKey
	if apiKey == "" {
		input, err := utils.InputPromptWithContext(ctx, reader, "Cloudinary API key:")
		if err != nil {
			return err
		}
		apiKey = input
	}
	if apiKey == "" {
		return fmt.Errorf("%w: an API key is required", cloudinary.ErrMissingCredentials)
	}

	if logout {
		if err := cloudinary.DeleteSecret(apiKey); err != nil {
			return err
		}
		fmt.Fprintln(out, lipgloss.Green.Render(fmt.Sprintf("✓ Removed the stored secret for API key %s", apiKey)))
		return nil
	}

	secret, err := readSecret("Cloudinary API secret")
	if err != nil {
		return err
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return fmt.Errorf("%w: the API secret is empty", cloudinary.ErrMissingCredentials)
	}

	if err := cloudinary.StoreSecret(apiKey, secret); err != nil {
		return err
	}

	fmt.Fprintln(out, lipgloss.Green.Render(fmt.Sprintf("✓ API secret stored in the keyring for API key %s", apiKey)))
	return nil
}
