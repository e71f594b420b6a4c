package cli

import (
	"fmt"

	"github.com/ralt/brewpack/internal/builder"
	"github.com/ralt/brewpack/internal/config"
	"github.com/ralt/brewpack/internal/models"
	"github.com/ralt/brewpack/internal/signer"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type buildFlags struct {
	gpgKeyPath    string
	gpgPassphrase string
	quiet         bool
}

// NewBuildCmd creates the build command
func NewBuildCmd() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build <config.yaml>",
		Short: "Build the tarball and formula",
		Long: `Reads the package configuration, archives files_dir into
<output_dir>/<name>-<version>.tar.gz, writes <output_dir>/Formula/<name>.rb
and prints publish and install instructions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}

			opts := builder.Options{}
			if !flags.quiet {
				opts.Out = cmd.OutOrStdout()
			}

			if flags.gpgKeyPath != "" {
				s, err := signer.NewGPGSigner(flags.gpgKeyPath, flags.gpgPassphrase)
				if err != nil {
					return &models.BuildError{
						Type: models.ErrSigning,
						Err:  fmt.Errorf("failed to initialize GPG signer: %w", err),
					}
				}
				opts.Signer = s
				logrus.Info("GPG signer initialized")
			}

			result, err := builder.Build(cmd.Context(), cfg, opts)
			if err != nil {
				return err
			}

			logrus.Infof("Formula: %s", result.FormulaPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.gpgKeyPath, "gpg-key", "k", "", "Path to GPG private key used to sign the tarball")
	cmd.Flags().StringVarP(&flags.gpgPassphrase, "gpg-passphrase", "p", "", "GPG key passphrase")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Do not print publish and install instructions")

	return cmd
}
