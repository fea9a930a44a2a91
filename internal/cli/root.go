// Package cli provides the command-line interface for applytrack.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/applytrack/applytrack/internal/config"
	"github.com/applytrack/applytrack/internal/security"
)

var (
	// Version information set by main.
	versionInfo struct {
		Version string
		Commit  string
		Date    string
	}

	// Global flags
	cfgFile      string
	verbose      bool
	outputJSON   bool
	outputFormat string
	noColor      bool
	logLevel     string
	tokenFlag    string
	memoryMode   bool

	// Global config
	cfg *config.Config

	// Logger
	logger *log.Logger

	// masker redacts credentials from log and error output
	masker = security.NewMasker()

	// Styles
	styles = struct {
		Title   lipgloss.Style
		Success lipgloss.Style
		Error   lipgloss.Style
		Warning lipgloss.Style
		Info    lipgloss.Style
		Subtle  lipgloss.Style
		Bold    lipgloss.Style
	}{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Subtle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Bold:    lipgloss.NewStyle().Bold(true),
	}
)

// SetVersionInfo sets the version information from main.
func SetVersionInfo(version, commit, date string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.Date = date
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "applytrack",
	Short: "Track job applications from the terminal",
	Long: `applytrack keeps track of the positions you applied to.

Each position moves through a hiring pipeline:
  CvSent → PhoneScreenScheduled → TechnicalInterview → OfferReceived
and can end as Rejected or Withdrawn. Comments record what happened along
the way.

Positions live in the tracker API by default. Use --memory to try the
commands against seeded in-memory data.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return initConfig()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the root command with a context for graceful shutdown.
// The returned error carries a user-facing message.
func ExecuteContext(ctx context.Context) error {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	defer closeActiveApp()
	if err != nil {
		return presentError(cmd, err)
	}
	return nil
}

func init() {
	logger = log.NewWithOptions(masker.Writer(os.Stderr), log.Options{
		ReportTimestamp: true,
		ReportCaller:    false,
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default: .applytrack.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVar(&outputJSON, "json", false, "output results as JSON")
	flags.StringVarP(&outputFormat, "output", "o", "", "output format (text, json, yaml, toml)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&tokenFlag, "token", "", "bearer token to use instead of the stored session")
	flags.BoolVar(&memoryMode, "memory", false, "use seeded in-memory repositories")

	rootCmd.AddCommand(versionCmd)
}

// loadAndValidateConfig loads and validates the configuration. Flags are
// applied before validation so that, for example, --output xml is rejected.
func loadAndValidateConfig() error {
	loader := config.NewLoader()

	if cfgFile != "" {
		loader.WithConfigPath(cfgFile)
	}

	var err error
	cfg, err = loader.Load()
	if err != nil {
		return err
	}

	applyGlobalFlags()

	v := config.NewValidator()
	if err := v.Validate(cfg); err != nil {
		return err
	}
	for _, w := range v.Warnings() {
		logger.Warn(w)
	}
	return nil
}

// applyGlobalFlags applies global CLI flags to the configuration.
func applyGlobalFlags() {
	if verbose {
		cfg.Output.Verbose = true
	}
	if logLevel != "" {
		cfg.Output.LogLevel = logLevel
	}
	if outputFormat != "" {
		cfg.Output.Format = outputFormat
	}
	if outputJSON {
		cfg.Output.Format = "json"
	}
	if memoryMode {
		cfg.Repository.Mode = config.RepositoryModeMemory
	}
	if noColor {
		cfg.Output.Color = false
	}
	if !cfg.Output.Color {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// configureLoggerFormat configures the logger format based on settings.
func configureLoggerFormat() {
	if cfg.Output.Format == "json" {
		logger.SetFormatter(log.JSONFormatter)
		logger.SetReportTimestamp(true)
	} else {
		logger.SetFormatter(log.TextFormatter)
	}
}

// configureLogLevel sets the logger level based on configuration.
func configureLogLevel() {
	switch cfg.Output.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	if cfg.Output.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if err := loadAndValidateConfig(); err != nil {
		return err
	}

	configureLoggerFormat()
	configureLogLevel()
	masker.AddSecret(tokenFlag)
	return nil
}

// Cleanup closes the application opened by the last command, if any.
// Should be called before program exit.
func Cleanup() {
	closeActiveApp()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "applytrack %s\n", versionInfo.Version)
		if verbose {
			fmt.Fprintf(out, "  commit: %s\n", versionInfo.Commit)
			fmt.Fprintf(out, "  built:  %s\n", versionInfo.Date)
		}
	},
}

// Helper functions for output

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, styles.Success.Render("✓ "+msg))
}

func printWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, styles.Warning.Render("⚠ "+msg))
}

func printInfo(w io.Writer, msg string) {
	fmt.Fprintln(w, styles.Info.Render("ℹ "+msg))
}

func printTitle(w io.Writer, msg string) {
	fmt.Fprintln(w, styles.Title.Render(msg))
}

func printSubtle(w io.Writer, msg string) {
	fmt.Fprintln(w, styles.Subtle.Render(msg))
}
