package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sejongdental/clinicqr/internal/build"
	"github.com/sejongdental/clinicqr/internal/config"
	"github.com/sejongdental/clinicqr/pkg/logging"
)

var skipQR bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate QR assets and static pages",
	Long: `Build reads the clinic workbook, reconciles it against the id registry,
renders the landing site, generates QR images, and writes the operator
reports. The registry file is only updated after everything else succeeds.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&skipQR, "skip-qr", false,
		"Skip QR image generation (and delivery/outbox packaging)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, skipQR)
	if err != nil {
		return err
	}

	res, err := build.Run(cmd.Context(), cfg, build.Options{SkipQR: skipQR})
	if err != nil {
		logging.Error().Err(err).Msg("build failed")
		return err
	}

	logging.Info().
		Str("mapping", res.MappingPath).
		Str("changes", res.ChangesPath).
		Msg("build complete")
	return nil
}
