package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yildizm/rentcheck/internal/config"
	"github.com/yildizm/rentcheck/internal/emoji"
)

const defaultConfigFile = ".rentcheck.yaml"

// newConfigCommand creates the config command with subcommands
func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage rentcheck configuration",
		Long: `Manage rentcheck configuration files and settings.

The config command provides subcommands for initializing, viewing,
validating, and locating configuration files.`,
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		minimal    bool
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new configuration file",
		Long: `Initialize a new rentcheck configuration file with default values.

By default, creates a full configuration file with all options and comments.
Use --minimal for a compact configuration with only the service settings.`,
		Example: `  # Create full config in current directory
  rentcheck config init

  # Create minimal config
  rentcheck config init --minimal

  # Create config at specific path
  rentcheck config init --path ~/.config/rentcheck/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeSampleConfig(outputPath, minimal, force)
		},
	}

	initCmd.Flags().StringVar(&outputPath, "path", defaultConfigFile, "output path for config file")
	initCmd.Flags().BoolVarP(&minimal, "minimal", "m", false, "create minimal configuration")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing config file")

	return initCmd
}

func writeSampleConfig(outputPath string, minimal, force bool) error {
	if outputPath == "" {
		outputPath = defaultConfigFile
	}

	if !force && fileExists(outputPath) {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", outputPath)
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	content := config.SampleConfig()
	if minimal {
		content = config.MinimalSampleConfig()
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("%s Configuration file created at: %s\n", emoji.GetEmoji("success"), outputPath)
	if minimal {
		fmt.Printf("%s Created minimal configuration with the service settings\n", emoji.GetEmoji("document"))
	} else {
		fmt.Printf("%s Created full configuration with all options and documentation\n", emoji.GetEmoji("document"))
	}

	return nil
}

func newConfigShowCommand() *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the effective configuration after defaults, config files,
.env and RENTCHECK_ environment variables have been applied.`,
		Example: `  rentcheck config show
  rentcheck config show --format json
  rentcheck config show --config /path/to/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			switch format {
			case "json":
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config to JSON: %w", err)
				}
				fmt.Println(string(data))
			case "yaml":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config to YAML: %w", err)
				}
				fmt.Print(string(data))
			default:
				return fmt.Errorf("unsupported format: %s (use json or yaml)", format)
			}

			return nil
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")

	return showCmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate the rentcheck configuration for syntax and semantic errors.

Checks the service URL, timeouts, output settings, logging limits
and tracing settings.`,
		Example: `  rentcheck config validate
  rentcheck config validate --config /path/to/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				fmt.Printf("%s Configuration validation failed:\n", emoji.GetEmoji("error"))
				fmt.Printf("   %v\n", err)
				return ErrReported
			}

			fmt.Printf("%s Configuration is valid\n", emoji.GetEmoji("success"))

			fmt.Printf("%s Configuration summary:\n", emoji.GetEmoji("statistics"))
			fmt.Printf("   Version: %s\n", cfg.Version)
			fmt.Printf("   Service URL: %s\n", cfg.Service.URL)
			fmt.Printf("   Upload Timeout: %s\n", cfg.Service.Timeout)
			fmt.Printf("   Output Format: %s\n", cfg.Output.DefaultFormat)
			if cfg.Logging.File != "" {
				fmt.Printf("   Log File: %s\n", cfg.Logging.File)
			}
			if cfg.Tracing.Enabled {
				fmt.Printf("   Tracing: %s\n", cfg.Tracing.Endpoint)
			}

			return nil
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Long: `Display the list of paths rentcheck searches for configuration files.

Shows the search order and indicates which files exist.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s Configuration file search paths (in priority order):\n", emoji.GetEmoji("folder"))
			fmt.Println()

			priority := []string{"Highest", "Medium", "Lowest"}
			for i, path := range config.GetConfigPaths() {
				exists := " (not found)"
				if fileExists(path) {
					exists = " (exists)"
				}

				fmt.Printf("  %d. %s%s\n", i+1, path, exists)
				if i < len(priority) {
					fmt.Printf("     Priority: %s\n", priority[i])
				}
				fmt.Println()
			}

			if currentConfig, found := config.FindConfigFile(); found {
				fmt.Printf("%s Current config file: %s\n", emoji.GetEmoji("target"), currentConfig)
			} else {
				fmt.Printf("%s No config file found, using defaults\n", emoji.GetEmoji("info"))
			}

			fmt.Println()
			fmt.Printf("%s Environment variables with %s prefix override file settings\n", emoji.GetEmoji("hint"), config.EnvPrefix)
		},
	}
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
