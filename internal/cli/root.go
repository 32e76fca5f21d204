package cli

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/yildizm/rentcheck/internal/config"
	"github.com/yildizm/rentcheck/internal/emoji"
)

// ErrReported is returned when a failure has already been shown to the user
var ErrReported = errors.New("error already reported")

var (
	cfgFile    string
	verbose    bool
	noColor    bool
	noEmoji    bool
	outputFmt  string
	serviceURL string

	buildVersion = "dev"
	globalConfig *config.Config
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	buildVersion = version

	rootCmd := &cobra.Command{
		Use:   "rentcheck",
		Short: "Find contradicting clauses in rent agreements",
		Long: `rentcheck uploads a rent agreement (PDF, DOCX or TXT) to the contradiction
analysis service and shows every pair of clauses the service judged to be
mutually inconsistent, with a confidence score for each pair.

Run without flags for the interactive terminal UI, or use --no-tui and
--output to produce text, JSON, Markdown or CSV reports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}
			emoji.SetEmojiDisabled(noEmoji)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format (text, json, markdown, csv)")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", "", "analysis service base URL")

	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			fmt.Printf("rentcheck %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// GetGlobalConfig loads the configuration once and applies flag overrides
func GetGlobalConfig() (*config.Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg); err != nil {
		return nil, err
	}

	globalConfig = cfg
	return cfg, nil
}

// applyFlagOverrides gives command line flags the final word
func applyFlagOverrides(cfg *config.Config) error {
	if verbose {
		cfg.Output.Verbose = true
	}
	if noColor {
		cfg.Output.ColorMode = "never"
	}
	if noEmoji {
		cfg.Output.NoEmoji = true
	}
	if outputFmt != "" {
		cfg.Output.DefaultFormat = outputFmt
	}
	if serviceURL != "" {
		cfg.Service.URL = serviceURL
	}

	emoji.SetEmojiDisabled(cfg.Output.NoEmoji)
	configureColor(cfg.Output.ColorMode)

	return cfg.Validate()
}

// Global helpers
func isVerbose() bool {
	if verbose {
		return true
	}
	return globalConfig != nil && globalConfig.Output.Verbose
}

func getOutputFormat() string {
	if outputFmt != "" {
		return outputFmt
	}
	if globalConfig != nil && globalConfig.Output.DefaultFormat != "" {
		return globalConfig.Output.DefaultFormat
	}
	return "text"
}
