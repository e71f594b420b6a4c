package cli

import (
	"fmt"

	"github.com/ralt/brewpack/internal/builder"
	"github.com/ralt/brewpack/internal/config"
	"github.com/ralt/brewpack/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <config.yaml>",
		Short: "Check that the formula still matches the tarball",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}

			report, err := builder.Verify(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			if !report.OK() {
				return &models.BuildError{
					Type: models.ErrFormula,
					Path: report.FormulaPath,
					Err:  fmt.Errorf("%d problem(s) found", len(report.Problems)),
				}
			}

			logrus.Infof("%s matches %s (sha256 %s)", report.FormulaPath, report.TarballPath, report.ArchiveSHA256)
			return nil
		},
	}
}
