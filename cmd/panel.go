package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ohl-research/exposure-cli/internal/dataset"
	"github.com/ohl-research/exposure-cli/internal/match"
	"github.com/ohl-research/exposure-cli/internal/panel"
)

var (
	panelReferencePath  string
	panelACSPath        string
	panelEnrollmentPath string
	panelWagesPath      string
	panelCodebookPath   string
	panelOutPath        string
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Build the major-by-year enrollment panel",
	Long:  "Matches occupation codes to exposure scores, aggregates them to a per-major exposure with terciles, joins enrollment and wage data, and writes the panel CSV used by the did command.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		refPath, err := resolvePath(panelReferencePath, cfg.Data.Reference, "reference")
		if err != nil {
			return err
		}
		acsPath, err := resolvePath(panelACSPath, cfg.Data.ACS, "acs")
		if err != nil {
			return err
		}
		enrollPath, err := resolvePath(panelEnrollmentPath, cfg.Data.Enrollment, "enrollment")
		if err != nil {
			return err
		}
		wagesPath := panelWagesPath
		if wagesPath == "" {
			wagesPath = cfg.Data.Wages
		}
		codebookPath := panelCodebookPath
		if codebookPath == "" {
			codebookPath = cfg.Data.Codebook
		}

		var (
			enrollment []dataset.EnrollmentRow
			wages      map[string]float64
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			enrollment, err = dataset.LoadEnrollment(gctx, enrollPath)
			return err
		})
		if wagesPath != "" {
			g.Go(func() error {
				var err error
				wages, err = dataset.LoadWages(gctx, wagesPath)
				return err
			})
		}

		ref, acs, err := loadMatchInputs(ctx, refPath, acsPath, codebookPath)
		if err != nil {
			return err
		}
		if err := g.Wait(); err != nil {
			return err
		}

		m := match.New(ref, match.Options{MaskChars: cfg.Match.MaskChars})
		result := m.Match(acs.Observations)

		exposures := panel.AggregateExposure(result.Observations)
		rows, err := panel.Build(exposures, enrollment, wages)
		if err != nil {
			return err
		}

		out := panelOutPath
		if out == "" {
			if err := os.MkdirAll(cfg.Data.OutputDir, 0o755); err != nil {
				return eris.Wrap(err, "panel: create output dir")
			}
			out = filepath.Join(cfg.Data.OutputDir, "panel.csv")
		}
		if err := dataset.WritePanel(out, rows); err != nil {
			return err
		}

		zap.L().Info("panel built",
			zap.String("out", out),
			zap.Int("rows", len(rows)),
			zap.Int("majors", len(exposures)),
		)
		return nil
	},
}

func init() {
	panelCmd.Flags().StringVar(&panelReferencePath, "reference", "", "path to reference exposure table (CSV or XLSX)")
	panelCmd.Flags().StringVar(&panelACSPath, "acs", "", "path to ACS extract CSV")
	panelCmd.Flags().StringVar(&panelEnrollmentPath, "enrollment", "", "path to enrollment CSV")
	panelCmd.Flags().StringVar(&panelWagesPath, "wages", "", "path to major wage CSV (optional)")
	panelCmd.Flags().StringVar(&panelCodebookPath, "codebook", "", "path to major codebook YAML (optional)")
	panelCmd.Flags().StringVar(&panelOutPath, "out", "", "output CSV path (default <output_dir>/panel.csv)")
	rootCmd.AddCommand(panelCmd)
}
