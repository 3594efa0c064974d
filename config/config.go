package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ryanwalloh/assetkit/asset_scanner"
	"github.com/ryanwalloh/assetkit/constants/lipgloss"
	"github.com/ryanwalloh/assetkit/identifier"
	"github.com/ryanwalloh/assetkit/migration"
	"github.com/ryanwalloh/assetkit/uploader/cloudinary"
	"github.com/ryanwalloh/assetkit/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// ConfigFileName is the base name looked up in the working directory.
const ConfigFileName = "assetkit-config"

// Config represents the structure of the configuration file
type Config struct {
	Version        string            `mapstructure:"version" yaml:"version"`
	SiteRoot       string            `mapstructure:"site_root" yaml:"site_root"`
	AssetsRoot     string            `mapstructure:"assets_root" yaml:"assets_root"`
	CodeExtensions []string          `mapstructure:"code_extensions" yaml:"code_extensions"`
	ExcludeDirs    []string          `mapstructure:"exclude_dirs" yaml:"exclude_dirs"`
	Theme          string            `mapstructure:"theme" yaml:"theme"`
	Verbose        bool              `mapstructure:"verbose" yaml:"verbose"`
	Logfile        string            `mapstructure:"logfile" yaml:"logfile"`
	Migration      *MigrationConfig  `mapstructure:"migration" yaml:"migration"`
	Cloudinary     *CloudinaryConfig `mapstructure:"cloudinary" yaml:"cloudinary"`
}

// Target pairs an HTML page with the mapping file its references go to.
// LinkedImages also uploads images the page only links to with <a href>.
type Target struct {
	Name         string `mapstructure:"name" yaml:"name"`
	Page         string `mapstructure:"page" yaml:"page"`
	Mapping      string `mapstructure:"mapping" yaml:"mapping"`
	LinkedImages bool   `mapstructure:"linked_images" yaml:"linked_images"`
}

// MigrationConfig drives the upload and rewrite commands.
type MigrationConfig struct {
	Targets       []Target         `mapstructure:"targets" yaml:"targets"`
	Buckets       []string         `mapstructure:"buckets" yaml:"buckets"`
	DefaultBucket string           `mapstructure:"default_bucket" yaml:"default_bucket"`
	Logos         []migration.Logo `mapstructure:"logos" yaml:"logos"`
	LogosMapping  string           `mapstructure:"logos_mapping" yaml:"logos_mapping"`
}

// CloudinaryConfig holds the media host account. The secret is normally
// left out of the file and read from the environment or the keyring.
type CloudinaryConfig struct {
	CloudName         string  `mapstructure:"cloud_name" yaml:"cloud_name"`
	APIKey            string  `mapstructure:"api_key" yaml:"api_key"`
	APISecret         string  `mapstructure:"api_secret" yaml:"api_secret,omitempty"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:        "0.3.0",
	SiteRoot:       ".",
	AssetsRoot:     "assets",
	CodeExtensions: asset_scanner.DefaultCodeExtensions,
	ExcludeDirs:    utils.DefaultExcludedDirs,
	Theme:          "dracula",
	Verbose:        false,
	Logfile:        "",
	Migration: &MigrationConfig{
		Targets: []Target{
			{Name: "home", Page: "pages/home.html", Mapping: "cloudinary_mapping.json", LinkedImages: true},
			{Name: "index", Page: "index.html", Mapping: "cloudinary_mapping_index.json"},
		},
		Buckets:       identifier.DefaultBucketRules,
		DefaultBucket: identifier.DefaultBucket,
		Logos:         migration.DefaultLogos,
		LogosMapping:  "cloudinary_mapping.json",
	},
	Cloudinary: &CloudinaryConfig{
		RequestsPerSecond: cloudinary.DefaultRequestsPerSecond,
	},
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, .env, flags and
// environment variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.New()

	// A .env file never overrides variables already set in the environment
	if err := loadDotEnv(cwd); err != nil {
		return nil, err
	}

	setDefaults(v)
	v.AutomaticEnv()
	bindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		// Files without a known extension are read as YAML
		configType := GetConfigFileType(cfgFile)
		if configType == "" {
			configType = "yaml"
		}
		v.SetConfigType(configType)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(cwd)

		// Support both YAML and JSON formats
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return nil, fmt.Errorf("error reading config file: %w", err)
				}
				fmt.Println(lipgloss.Gray.Render("No configuration file found, using defaults"))
			}
		}
	}

	// Bind CLI flags to override config values
	if rootCmd != nil {
		bindFlags(v, rootCmd)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	applyListDefaults(&config)
	config.resolvePaths(cwd)

	return &config, nil
}

func loadDotEnv(cwd string) error {
	path := filepath.Join(cwd, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", DefaultConfig.Version)
	v.SetDefault("site_root", DefaultConfig.SiteRoot)
	v.SetDefault("assets_root", DefaultConfig.AssetsRoot)
	v.SetDefault("code_extensions", DefaultConfig.CodeExtensions)
	v.SetDefault("exclude_dirs", DefaultConfig.ExcludeDirs)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("verbose", DefaultConfig.Verbose)
	v.SetDefault("logfile", DefaultConfig.Logfile)
	v.SetDefault("migration.buckets", DefaultConfig.Migration.Buckets)
	v.SetDefault("migration.default_bucket", DefaultConfig.Migration.DefaultBucket)
	v.SetDefault("migration.logos_mapping", DefaultConfig.Migration.LogosMapping)
	v.SetDefault("cloudinary.cloud_name", "")
	v.SetDefault("cloudinary.api_key", "")
	v.SetDefault("cloudinary.api_secret", "")
	v.SetDefault("cloudinary.requests_per_second", DefaultConfig.Cloudinary.RequestsPerSecond)
}

// applyListDefaults fills the struct lists viper cannot default cleanly.
func applyListDefaults(config *Config) {
	if config.Migration == nil {
		config.Migration = &MigrationConfig{}
	}
	if len(config.Migration.Targets) == 0 {
		config.Migration.Targets = append([]Target(nil), DefaultConfig.Migration.Targets...)
	}
	if len(config.Migration.Logos) == 0 {
		config.Migration.Logos = append([]migration.Logo(nil), DefaultConfig.Migration.Logos...)
	}
	if config.Cloudinary == nil {
		config.Cloudinary = &CloudinaryConfig{RequestsPerSecond: DefaultConfig.Cloudinary.RequestsPerSecond}
	}
}

// resolvePaths makes site_root absolute against cwd and assets_root
// absolute against site_root.
func (c *Config) resolvePaths(cwd string) {
	if !filepath.IsAbs(c.SiteRoot) {
		c.SiteRoot = filepath.Join(cwd, c.SiteRoot)
	}
	if !filepath.IsAbs(c.AssetsRoot) {
		c.AssetsRoot = filepath.Join(c.SiteRoot, c.AssetsRoot)
	}
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("site_root", "ASSETKIT_SITE_ROOT")
	_ = v.BindEnv("assets_root", "ASSETKIT_ASSETS_ROOT")
	_ = v.BindEnv("theme", "ASSETKIT_THEME")
	_ = v.BindEnv("verbose", "ASSETKIT_VERBOSE")
	_ = v.BindEnv("logfile", "ASSETKIT_LOGFILE")
	_ = v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	_ = v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	_ = v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")
	_ = v.BindEnv("cloudinary.requests_per_second", "CLOUDINARY_REQUESTS_PER_SECOND")
}

// bindFlags binds the CLI flags to configuration values. Only flags the
// user actually set take precedence over file and environment values.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	for key, name := range map[string]string{
		"site_root":   "site_root",
		"assets_root": "assets_root",
		"theme":       "theme",
		"verbose":     "verbose",
		"logfile":     "logfile",
	} {
		if flag := flags.Lookup(name); flag != nil && flag.Changed {
			_ = v.BindPFlag(key, flag)
		}
	}
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().String("site_root", DefaultConfig.SiteRoot, "Root directory of the website sources.")
	rootCmd.PersistentFlags().String("assets_root", DefaultConfig.AssetsRoot, "Directory holding the image assets, relative to site_root.")
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Set the chroma theme for diff previews (e.g., 'dracula', 'monokai', 'none').")
	rootCmd.PersistentFlags().Bool("verbose", DefaultConfig.Verbose, "Print debug diagnostics.")
	rootCmd.PersistentFlags().String("logfile", DefaultConfig.Logfile, "Also write diagnostics to this file (rotated).")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// ConfigFilePath returns the --config value, or the default YAML path under cwd.
func ConfigFilePath(cwd string) string {
	if cfgFile != "" {
		return cfgFile
	}
	return filepath.Join(cwd, ConfigFileName+".yml")
}

// GetConfigFileType returns the type of the configuration file based on its extension
func GetConfigFileType(filename string) string {
	filename = strings.ToLower(filename)
	if strings.HasSuffix(filename, ".json") {
		return "json"
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return "yaml"
	}
	return ""
}

// BucketRules returns the identifier rules configured for uploads.
func (c *Config) BucketRules() identifier.Rules {
	return identifier.Rules{
		Buckets:       c.Migration.Buckets,
		DefaultBucket: c.Migration.DefaultBucket,
	}
}

// FindTargets returns the configured targets with the given names, in the
// order asked. No names selects every target.
func (c *Config) FindTargets(names []string) ([]Target, error) {
	if len(names) == 0 {
		return c.Migration.Targets, nil
	}

	var selected []Target
	for _, name := range names {
		found := false
		for _, target := range c.Migration.Targets {
			if target.Name == name {
				selected = append(selected, target)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown target %q", name)
		}
	}
	return selected, nil
}

// ResolveInSite joins a configured relative path to the site root.
func (c *Config) ResolveInSite(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.SiteRoot, filepath.FromSlash(path))
}

// CloudinaryCredentials returns the configured account credentials.
func (c *Config) CloudinaryCredentials() cloudinary.Credentials {
	return cloudinary.Credentials{
		CloudName: c.Cloudinary.CloudName,
		APIKey:    c.Cloudinary.APIKey,
		APISecret: c.Cloudinary.APISecret,
	}
}
