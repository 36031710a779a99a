package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ohl-research/exposure-cli/internal/dataset"
	"github.com/ohl-research/exposure-cli/internal/did"
	"github.com/ohl-research/exposure-cli/internal/report"
)

var (
	didPanelPath string
	didOutPath   string
	didRunID     string
	didSave      bool
)

var didCmd = &cobra.Command{
	Use:   "did",
	Short: "Run difference-in-differences regressions on a panel",
	Long:  "Reads a panel CSV produced by the panel command, estimates the enrollment effect of high AI exposure with weighted least squares, prints the results and a manual 2x2 cross-check, and writes a results CSV.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		panelPath := didPanelPath
		if panelPath == "" {
			panelPath = filepath.Join(cfg.Data.OutputDir, "panel.csv")
		}

		rows, err := dataset.LoadPanel(ctx, panelPath)
		if err != nil {
			return err
		}

		analysis, err := did.Run(rows, did.Options{
			BaseYear: cfg.DiD.BaseYear,
			PostYear: cfg.DiD.PostYear,
		})
		if err != nil {
			return err
		}

		r := report.New(os.Stdout)
		r.DiDResults(analysis.Results)
		if analysis.Manual != nil {
			formatCellMeans(os.Stdout, analysis.Manual)
		}

		out := didOutPath
		if out == "" {
			if err := os.MkdirAll(cfg.Data.OutputDir, 0o755); err != nil {
				return eris.Wrap(err, "did: create output dir")
			}
			out = filepath.Join(cfg.Data.OutputDir, "did_results.csv")
		}
		if err := dataset.WriteDiDResults(out, analysis.Results); err != nil {
			return err
		}

		zap.L().Info("did complete",
			zap.String("out", out),
			zap.Int("specifications", len(analysis.Results)),
		)

		if didSave {
			if didRunID == "" {
				return eris.New("did: --save requires --run-id (a match run to attach results to)")
			}
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			if err := st.SaveDiDResults(ctx, didRunID, analysis.Results); err != nil {
				return err
			}
			zap.L().Info("did results saved", zap.String("run_id", didRunID))
		}
		return nil
	},
}

// formatCellMeans prints the manual 2x2 cross-check under the
// regression output.
func formatCellMeans(w io.Writer, m *did.CellMeans) {
	fmt.Fprintln(w, "\nManual 2x2 cross-check (weighted mean log enrollment):")
	fmt.Fprintf(w, "  High exposure:  pre %.4f  post %.4f  (Δ %.4f)\n",
		m.HighPre, m.HighPost, m.HighPost-m.HighPre)
	fmt.Fprintf(w, "  Low exposure:   pre %.4f  post %.4f  (Δ %.4f)\n",
		m.LowPre, m.LowPost, m.LowPost-m.LowPre)
	fmt.Fprintf(w, "  DiD estimate:   %.4f\n", m.Estimate)
}

func init() {
	didCmd.Flags().StringVar(&didPanelPath, "panel", "", "path to panel CSV (default <output_dir>/panel.csv)")
	didCmd.Flags().StringVar(&didOutPath, "out", "", "results CSV path (default <output_dir>/did_results.csv)")
	didCmd.Flags().StringVar(&didRunID, "run-id", "", "match run ID to attach saved results to")
	didCmd.Flags().BoolVar(&didSave, "save", false, "persist results to the store")
	rootCmd.AddCommand(didCmd)
}
