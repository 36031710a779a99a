package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ohl-research/exposure-cli/internal/model"
	"github.com/ohl-research/exposure-cli/internal/report"
	"github.com/ohl-research/exposure-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect persisted match runs",
	Long:  "Commands for listing match runs and viewing their stored results.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List match runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		dataset, _ := cmd.Flags().GetString("dataset")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListMatchRuns(ctx, store.RunFilter{Dataset: dataset, Limit: limit})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run's match report and stored DiD results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListMatchRuns(ctx, store.RunFilter{})
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		var run *model.MatchRun
		for i := range runs {
			if runs[i].ID == args[0] {
				run = &runs[i]
				break
			}
		}
		if run == nil {
			return eris.Errorf("runs show: run %s not found", args[0])
		}

		fmt.Fprintf(os.Stdout, "Run %s (%s, %s)\n", run.ID, run.Dataset,
			run.CreatedAt.Format("2006-01-02 15:04"))
		r := report.New(os.Stdout)
		r.MatchReport(&run.Report)

		results, err := st.ListDiDResults(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		if len(results) > 0 {
			r.DiDResults(results)
		}
		return nil
	},
}

// formatRunsList writes a tab-aligned run table.
func formatRunsList(w io.Writer, runs []model.MatchRun) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATASET\tROWS\tEXACT\tFUZZY\tUNMATCHED\tCREATED")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f%%\t%.1f%%\t%.1f%%\t%s\n",
			run.ID,
			run.Dataset,
			run.Report.TotalRows,
			run.Report.ExactPct(),
			run.Report.FuzzyPct(),
			run.Report.UnmatchedPct(),
			run.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	runsListCmd.Flags().String("dataset", "", "filter by dataset label")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
