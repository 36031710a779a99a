// Package did runs the difference-in-differences analysis comparing high
// and low AI-exposure majors around the post year: WLS regressions of log
// enrollment on treat×post with year fixed effects, weighted by
// enrollment, in a basic and a wage-controlled specification.
package did

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ohl-research/exposure-cli/internal/model"
	"github.com/ohl-research/exposure-cli/internal/stats"
)

// Options sets the analysis window.
type Options struct {
	// BaseYear is the omitted year dummy. Default 2019.
	BaseYear int
	// PostYear marks the start of the post period. Default 2025.
	PostYear int
}

const (
	defaultBaseYear = 2019
	defaultPostYear = 2025
)

// Specification names.
const (
	SpecBasic          = "Basic DiD"
	SpecWageControlled = "Wage-Controlled DiD"
)

var wageQuartileDummies = []string{"Q2", "Q3", "Q4"} // Q1 omitted as base

// CellMeans holds the enrollment-weighted mean log enrollment for the
// four treatment×period cells, plus the implied manual DiD estimate.
type CellMeans struct {
	HighPre, HighPost float64
	LowPre, LowPost   float64
	Estimate          float64
}

// Analysis is the full DiD output: the regression results and the manual
// 2x2 cross-check.
type Analysis struct {
	Results []model.DiDResult
	Manual  *CellMeans
}

// Run executes both specifications against a built panel. Medium-tercile
// rows are excluded; the wage-controlled specification additionally
// restricts to rows with a wage quartile.
func Run(rows []model.PanelRow, opts Options) (*Analysis, error) {
	if opts.BaseYear == 0 {
		opts.BaseYear = defaultBaseYear
	}
	if opts.PostYear == 0 {
		opts.PostYear = defaultPostYear
	}

	var sample []model.PanelRow
	for _, r := range rows {
		if r.Tercile == model.TercileLow || r.Tercile == model.TercileHigh {
			sample = append(sample, r)
		}
	}
	if len(sample) == 0 {
		return nil, eris.New("did: no Low or High tercile rows in panel")
	}

	log := zap.L().With(zap.String("component", "did"))
	log.Info("did sample",
		zap.Int("observations", len(sample)),
		zap.Int("majors", countMajors(sample)),
		zap.Int("base_year", opts.BaseYear),
		zap.Int("post_year", opts.PostYear),
	)

	basic, err := runSpec(SpecBasic, sample, opts, false)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{Results: []model.DiDResult{*basic}}

	var wageSample []model.PanelRow
	for _, r := range sample {
		if r.WageQuartile != "" {
			wageSample = append(wageSample, r)
		}
	}
	if len(wageSample) > 0 {
		wage, err := runSpec(SpecWageControlled, wageSample, opts, true)
		if err != nil {
			log.Warn("wage-controlled specification skipped", zap.Error(err))
		} else {
			analysis.Results = append(analysis.Results, *wage)
		}
	} else {
		log.Info("no wage data in sample, skipping wage-controlled specification")
	}

	analysis.Manual = manualDiD(sample, opts)
	return analysis, nil
}

// runSpec fits one WLS specification and extracts the interaction term.
func runSpec(name string, sample []model.PanelRow, opts Options, wageControls bool) (*model.DiDResult, error) {
	years := dummyYears(sample, opts.BaseYear, opts.PostYear)

	// Columns: intercept, treat, post, treat×post, year dummies,
	// then wage quartile dummies when requested. The interaction sits at
	// a fixed index for extraction below.
	const interactionCol = 3

	var x [][]float64
	var y, w []float64
	for _, r := range sample {
		treat := b2f(r.Tercile == model.TercileHigh)
		post := b2f(r.Year >= opts.PostYear)

		row := []float64{1, treat, post, treat * post}
		for _, yr := range years {
			row = append(row, b2f(r.Year == yr))
		}
		if wageControls {
			for _, q := range wageQuartileDummies {
				row = append(row, b2f(r.WageQuartile == q))
			}
		}

		x = append(x, row)
		y = append(y, r.LogEnrollment)
		w = append(w, r.Enrollment)
	}

	res, err := stats.WLS(x, y, w)
	if err != nil {
		return nil, eris.Wrapf(err, "did: %s", name)
	}

	return &model.DiDResult{
		Specification: name,
		Coefficient:   res.Coefficients[interactionCol],
		StdError:      res.StdErrors[interactionCol],
		PValue:        res.PValues[interactionCol],
		NObs:          res.NObs,
		NMajors:       countMajors(sample),
	}, nil
}

// dummyYears lists the sample's pre-period years excluding the base
// year. Post-period years get no dummy: the post indicator already spans
// them, and a dummy there would be collinear with it.
func dummyYears(sample []model.PanelRow, baseYear, postYear int) []int {
	seen := make(map[int]bool)
	for _, r := range sample {
		seen[r.Year] = true
	}
	var years []int
	for yr := range seen {
		if yr != baseYear && yr < postYear {
			years = append(years, yr)
		}
	}
	sort.Ints(years)
	return years
}

// manualDiD computes the enrollment-weighted 2x2 difference of mean log
// enrollment as a cross-check on the regression. Cells with zero weight
// leave the estimate at zero.
func manualDiD(sample []model.PanelRow, opts Options) *CellMeans {
	mean := func(treat bool, post bool) float64 {
		var xs, ws []float64
		for _, r := range sample {
			if (r.Tercile == model.TercileHigh) != treat {
				continue
			}
			if (r.Year >= opts.PostYear) != post {
				continue
			}
			xs = append(xs, r.LogEnrollment)
			ws = append(ws, r.Enrollment)
		}
		m, err := stats.WeightedMean(xs, ws)
		if err != nil {
			return 0
		}
		return m
	}

	c := &CellMeans{
		HighPre:  mean(true, false),
		HighPost: mean(true, true),
		LowPre:   mean(false, false),
		LowPost:  mean(false, true),
	}
	c.Estimate = (c.HighPost - c.HighPre) - (c.LowPost - c.LowPre)
	return c
}

func countMajors(rows []model.PanelRow) int {
	seen := make(map[string]bool)
	for _, r := range rows {
		seen[r.Major] = true
	}
	return len(seen)
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
