package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ohl-research/exposure-cli/internal/diagnose"
	"github.com/ohl-research/exposure-cli/internal/match"
	"github.com/ohl-research/exposure-cli/internal/report"
)

var (
	diagReferencePath string
	diagACSPath       string
	diagCodebookPath  string
	diagMajors        []string
	diagTopGroups     int
	diagTopCodes      int
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Show per-major match diagnostics",
	Long:  "Runs the matcher and prints, for each selected major, its heaviest occupation codes with match provenance and the weighted mean exposure score.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		refPath, err := resolvePath(diagReferencePath, cfg.Data.Reference, "reference")
		if err != nil {
			return err
		}
		acsPath, err := resolvePath(diagACSPath, cfg.Data.ACS, "acs")
		if err != nil {
			return err
		}
		codebookPath := diagCodebookPath
		if codebookPath == "" {
			codebookPath = cfg.Data.Codebook
		}

		ref, acs, err := loadMatchInputs(ctx, refPath, acsPath, codebookPath)
		if err != nil {
			return err
		}

		m := match.New(ref, match.Options{
			MaskChars:    cfg.Match.MaskChars,
			TopUnmatched: cfg.Match.TopUnmatched,
		})
		result := m.Match(acs.Observations)

		topGroups := diagTopGroups
		if topGroups == 0 {
			topGroups = cfg.Diagnose.TopGroups
		}
		topCodes := diagTopCodes
		if topCodes == 0 {
			topCodes = cfg.Diagnose.TopCodes
		}

		reports := diagnose.Report(result.Observations, result.Records, diagnose.Options{
			Groups:    diagMajors,
			TopGroups: topGroups,
			TopCodes:  topCodes,
			MaskChars: cfg.Match.MaskChars,
		})

		r := report.New(os.Stdout)
		r.FilterDiagnostics(&acs.Diagnostics)
		r.MatchReport(&result.Report)
		r.GroupReports(reports)

		zap.L().Info("diagnose complete", zap.Int("groups", len(reports)))
		return nil
	},
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagReferencePath, "reference", "", "path to reference exposure table (CSV or XLSX)")
	diagnoseCmd.Flags().StringVar(&diagACSPath, "acs", "", "path to ACS extract CSV")
	diagnoseCmd.Flags().StringVar(&diagCodebookPath, "codebook", "", "path to major codebook YAML (optional)")
	diagnoseCmd.Flags().StringSliceVar(&diagMajors, "majors", nil, "explicit major codes to report (default: heaviest majors)")
	diagnoseCmd.Flags().IntVar(&diagTopGroups, "top-groups", 0, "number of majors when --majors is not given")
	diagnoseCmd.Flags().IntVar(&diagTopCodes, "top-codes", 0, "occupation codes listed per major")
	rootCmd.AddCommand(diagnoseCmd)
}
