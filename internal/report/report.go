// Package report renders the pipeline's structured report objects as
// text for the terminal or a log sink. Rendering is the only place
// output formatting lives; the objects themselves stay assertable.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ohl-research/exposure-cli/internal/model"
)

const rule = "======================================================================"

// Renderer writes report text to a sink. The English printer groups
// large counts with commas, matching how the survey totals read.
type Renderer struct {
	w io.Writer
	p *message.Printer
}

// New creates a Renderer writing to w.
func New(w io.Writer) *Renderer {
	return &Renderer{w: w, p: message.NewPrinter(language.English)}
}

// MatchReport renders the matching summary.
func (r *Renderer) MatchReport(rep *model.MatchReport) {
	fmt.Fprintln(r.w, rule)
	fmt.Fprintln(r.w, "MATCHING SUMMARY")
	fmt.Fprintln(r.w, rule)
	r.p.Fprintf(r.w, "Exact matches:   %d (%.1f%%)\n", rep.ExactRows, rep.ExactPct())
	r.p.Fprintf(r.w, "Fuzzy matches:   %d (%.1f%%)\n", rep.FuzzyRows, rep.FuzzyPct())
	r.p.Fprintf(r.w, "Total matched:   %d (%.1f%%)\n",
		rep.ExactRows+rep.FuzzyRows, rep.ExactPct()+rep.FuzzyPct())
	r.p.Fprintf(r.w, "Still missing:   %d (%.1f%%)\n", rep.UnmatchedRows, rep.UnmatchedPct())
	r.p.Fprintf(r.w, "Distinct codes:  %d (%d exact, %d fuzzy, %d unmatched)\n",
		rep.TotalCodes, rep.ExactCodes, rep.FuzzyCodes, rep.UnmatchedCodes)

	if len(rep.TopUnmatched) > 0 {
		fmt.Fprintln(r.w, "\nTop codes that couldn't be matched:")
		for _, cc := range rep.TopUnmatched {
			r.p.Fprintf(r.w, "  %-8s %d observations\n", cc.Code, cc.Count)
		}
	}
}

// GroupReports renders per-major diagnostics.
func (r *Renderer) GroupReports(reports []model.GroupReport) {
	for _, g := range reports {
		title := g.Group
		if g.Title != "" {
			title = fmt.Sprintf("%s (%s)", g.Group, g.Title)
		}
		fmt.Fprintln(r.w, rule)
		fmt.Fprintf(r.w, "MAJOR %s\n", title)
		fmt.Fprintln(r.w, rule)
		r.p.Fprintf(r.w, "Total weight: %.0f\n", g.TotalWeight)
		if g.WeightedMean != nil {
			fmt.Fprintf(r.w, "Weighted mean score: %.3f\n", *g.WeightedMean)
		} else {
			fmt.Fprintln(r.w, "Weighted mean score: undefined (no scored weight)")
		}

		for _, c := range g.Codes {
			score := "     -"
			if c.Score != nil {
				score = fmt.Sprintf("%6.3f", *c.Score)
			}
			r.p.Fprintf(r.w, "  %-8s weight %10.0f (%5.1f%%)  score %s  [%s]\n",
				c.Code, c.Weight, c.WeightShare*100, score, c.Kind)
		}
	}
}

// FilterDiagnostics renders ACS load filter survival counts.
func (r *Renderer) FilterDiagnostics(d *model.FilterDiagnostics) {
	fmt.Fprintln(r.w, rule)
	fmt.Fprintln(r.w, "ACS FILTER DIAGNOSTICS")
	fmt.Fprintln(r.w, rule)
	r.p.Fprintf(r.w, "Total rows:            %d\n", d.TotalRows)
	r.p.Fprintf(r.w, "Age in band:           %d%s\n", d.AgeInBand, pctOf(d.AgeInBand, d.TotalRows))
	r.p.Fprintf(r.w, "Has occupation code:   %d%s\n", d.HasOccCode, pctOf(d.HasOccCode, d.TotalRows))
	r.p.Fprintf(r.w, "Degree field non-zero: %d%s\n", d.MajorNonZero, pctOf(d.MajorNonZero, d.TotalRows))
	r.p.Fprintf(r.w, "All filters combined:  %d%s\n", d.AllFilters, pctOf(d.AllFilters, d.TotalRows))
	if d.SkippedCells > 0 {
		r.p.Fprintf(r.w, "Unparseable rows:      %d\n", d.SkippedCells)
	}

	if len(d.YearCounts) > 0 {
		fmt.Fprintln(r.w, "\nObservations per year:")
		for _, year := range sortedYears(d.YearCounts) {
			r.p.Fprintf(r.w, "  %d: %d\n", year, d.YearCounts[year])
		}
	}
}

// DiDResults renders regression estimates with interpretation lines.
func (r *Renderer) DiDResults(results []model.DiDResult) {
	fmt.Fprintln(r.w, rule)
	fmt.Fprintln(r.w, "DiD REGRESSION RESULTS (weighted least squares)")
	fmt.Fprintln(r.w, rule)
	for _, res := range results {
		fmt.Fprintf(r.w, "\n[%s]\n", res.Specification)
		fmt.Fprintf(r.w, "  Coefficient: %.4f\n", res.Coefficient)
		fmt.Fprintf(r.w, "  Std Error:   %.4f\n", res.StdError)
		fmt.Fprintf(r.w, "  P-value:     %.4f\n", res.PValue)
		r.p.Fprintf(r.w, "  N:           %d observations, %d majors\n", res.NObs, res.NMajors)
		fmt.Fprintf(r.w, "  High-exposure majors had %.2f%% differential enrollment growth\n",
			res.Coefficient*100)
	}
}

func pctOf(part, total int) string {
	if total == 0 {
		return ""
	}
	return fmt.Sprintf(" (%.1f%%)", float64(part)/float64(total)*100)
}

func sortedYears(counts map[int]int) []int {
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Banner writes a titled separator, used between command phases.
func (r *Renderer) Banner(title string) {
	fmt.Fprintln(r.w, rule)
	fmt.Fprintln(r.w, strings.ToUpper(title))
	fmt.Fprintln(r.w, rule)
}
