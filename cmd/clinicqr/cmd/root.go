// Package cmd implements the clinicqr command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sejongdental/clinicqr/internal/cmd/globals"
	"github.com/sejongdental/clinicqr/internal/cmd/output"
	"github.com/sejongdental/clinicqr/pkg/logging"
)

var (
	configFile  string
	globalFlags *globals.Flags

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "clinicqr",
	Short: "Dental association QR landing-page builder",
	Long: `clinicqr maintains the association's clinic registry and builds the
per-clinic QR landing site from it.

Each run reads the current membership workbook, reconciles it against the
append-only clinic id registry, regenerates the static landing pages and QR
images, and packages delivery material for the clinics that changed.`,
	PersistentPreRunE: setupCommand,
}

// Execute runs the root command with signal-aware context.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.toml",
		"config file")
	globalFlags = globals.AddFlags(rootCmd)

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("Failed to bind verbose flag: %v", err))
	}
	if err := viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet")); err != nil {
		panic(fmt.Sprintf("Failed to bind quiet flag: %v", err))
	}
}

// initConfig loads .env files and configures logging before any command runs.
func initConfig() {
	loadEnvFiles()

	viper.AutomaticEnv()

	configureLogging()
}

// setupCommand is called before any command runs.
func setupCommand(_ *cobra.Command, _ []string) error {
	if globalFlags.Output == "" {
		globalFlags.Output = string(output.DetectFormat(""))
	}
	return nil
}

// outputFormat resolves the output format for a subcommand from the
// persistent flags, falling back to terminal detection.
func outputFormat(cmd *cobra.Command) (output.Format, error) {
	flags, err := globals.Parse(cmd)
	if err != nil {
		return "", err
	}
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return "", err
	}
	if format == "" {
		format = output.DetectFormat("")
	}
	return format, nil
}

// configureLogging sets up the logging system based on flags and environment.
func configureLogging() {
	level := zerolog.InfoLevel
	if globalFlags != nil && globalFlags.Verbose || viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	if globalFlags != nil && globalFlags.Quiet || viper.GetBool("quiet") {
		level = zerolog.WarnLevel
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}

	config := &logging.Config{
		Level:     level.String(),
		Format:    os.Getenv("LOG_FORMAT"),
		Output:    os.Getenv("LOG_OUTPUT"),
		NoColor:   globalFlags != nil && globalFlags.NoColor,
		AddCaller: level <= zerolog.DebugLevel,
	}
	if config.Format == "" {
		config.Format = "auto"
	}
	if config.Output == "" {
		config.Output = "stderr"
	}

	logging.Configure(config)
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envFile); err == nil {
			if globalFlags != nil && globalFlags.Verbose {
				fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
			}
		}
	}
}
