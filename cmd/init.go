package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ryanwalloh/assetkit/config"
	"github.com/ryanwalloh/assetkit/constants/lipgloss"
	"github.com/ryanwalloh/assetkit/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	Long: `The 'init' command writes assetkit-config.yml (or the --config path) with every
setting at its default value, ready to edit. A --config path ending in .json is
written as JSON. The Cloudinary API secret is never written; use 'assetkit login'
or the CLOUDINARY_API_SECRET variable instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return handleInitCommand(ctx, config.ConfigFilePath(cwd), force, bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
	},
}

func init() {
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration file without asking")

	rootCmd.AddCommand(initCmd)
}

func handleInitCommand(ctx context.Context, path string, force bool, reader *bufio.Reader, out io.Writer) error {
	if _, err := os.Stat(path); err == nil && !force {
		ok, err := utils.ConfirmPromptWithContext(ctx, reader, fmt.Sprintf("%s already exists. Overwrite?", path))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, lipgloss.Yellow.Render("Init cancelled."))
			return nil
		}
	}

	data, err := marshalDefaultConfig(config.GetConfigFileType(path))
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintln(out, lipgloss.Green.Render(fmt.Sprintf("✓ Configuration written to %s", path)))
	return nil
}

// marshalDefaultConfig encodes the defaults as YAML, or as JSON when
// configType is "json".
func marshalDefaultConfig(configType string) ([]byte, error) {
	defaults := config.DefaultConfig
	cloudinaryDefaults := *defaults.Cloudinary
	cloudinaryDefaults.APISecret = ""
	defaults.Cloudinary = &cloudinaryDefaults

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(defaults); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	if configType != "json" {
		return buf.Bytes(), nil
	}

	// Going through YAML keeps the snake_case keys viper reads back
	var settings map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &settings); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return append(data, '\n'), nil
}
