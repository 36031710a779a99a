package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ohl-research/exposure-cli/internal/dataset"
	"github.com/ohl-research/exposure-cli/internal/match"
	"github.com/ohl-research/exposure-cli/internal/report"
)

var (
	matchReferencePath string
	matchACSPath       string
	matchCodebookPath  string
	matchOutPath       string
	matchDataset       string
	matchSave          bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match survey occupation codes to exposure scores",
	Long:  "Loads the reference exposure table and an ACS extract, resolves each occupation code by exact match or prefix fallback, writes the scored observations to CSV, and prints a match quality report.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		refPath, err := resolvePath(matchReferencePath, cfg.Data.Reference, "reference")
		if err != nil {
			return err
		}
		acsPath, err := resolvePath(matchACSPath, cfg.Data.ACS, "acs")
		if err != nil {
			return err
		}

		ref, acs, err := loadMatchInputs(ctx, refPath, acsPath, matchCodebookPath)
		if err != nil {
			return err
		}

		m := match.New(ref, match.Options{
			MaskChars:    cfg.Match.MaskChars,
			TopUnmatched: cfg.Match.TopUnmatched,
		})
		result := m.Match(acs.Observations)

		out := matchOutPath
		if out == "" {
			if err := os.MkdirAll(cfg.Data.OutputDir, 0o755); err != nil {
				return eris.Wrap(err, "match: create output dir")
			}
			out = filepath.Join(cfg.Data.OutputDir, "observations.csv")
		}
		if err := dataset.WriteObservations(out, result.Observations); err != nil {
			return err
		}

		r := report.New(os.Stdout)
		r.FilterDiagnostics(&acs.Diagnostics)
		r.MatchReport(&result.Report)

		zap.L().Info("match complete",
			zap.String("out", out),
			zap.Int("rows", result.Report.TotalRows),
			zap.Float64("exact_pct", result.Report.ExactPct()),
		)

		if matchSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			run, err := st.SaveMatchRun(ctx, matchDataset, result.Report)
			if err != nil {
				return err
			}
			zap.L().Info("match run saved", zap.String("run_id", run.ID))
		}
		return nil
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchReferencePath, "reference", "", "path to reference exposure table (CSV or XLSX)")
	matchCmd.Flags().StringVar(&matchACSPath, "acs", "", "path to ACS extract CSV")
	matchCmd.Flags().StringVar(&matchCodebookPath, "codebook", "", "path to major codebook YAML (optional)")
	matchCmd.Flags().StringVar(&matchOutPath, "out", "", "output CSV path (default <output_dir>/observations.csv)")
	matchCmd.Flags().StringVar(&matchDataset, "dataset", "acs", "dataset label for the saved run")
	matchCmd.Flags().BoolVar(&matchSave, "save", false, "persist the run summary to the store")
	rootCmd.AddCommand(matchCmd)
}
