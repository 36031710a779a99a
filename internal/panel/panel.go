// Package panel aggregates matched observations into per-major exposure
// scores and joins them with the enrollment panel: weighted-mean exposure
// per major, exposure terciles, wage quartiles, and log enrollment.
package panel

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ohl-research/exposure-cli/internal/dataset"
	"github.com/ohl-research/exposure-cli/internal/model"
	"github.com/ohl-research/exposure-cli/internal/stats"
)

// AggregateExposure collapses matched observations to one weighted-mean
// exposure per major. Rows without a score contribute nothing; majors
// whose scored weight is zero are dropped (they cannot carry an exposure
// value). Terciles are assigned across the surviving majors.
func AggregateExposure(obs []model.Observation) []model.MajorExposure {
	type agg struct {
		scores, weights []float64
		total           float64
		title           string
	}
	byMajor := make(map[string]*agg)
	for _, o := range obs {
		a, ok := byMajor[o.Major]
		if !ok {
			a = &agg{}
			byMajor[o.Major] = a
		}
		a.total += o.Weight
		if a.title == "" && o.MajorTitle != "" {
			a.title = o.MajorTitle
		}
		if o.Score != nil {
			a.scores = append(a.scores, *o.Score)
			a.weights = append(a.weights, o.Weight)
		}
	}

	var out []model.MajorExposure
	for major, a := range byMajor {
		mean, err := stats.WeightedMean(a.scores, a.weights)
		if err != nil {
			zap.L().Debug("major dropped from exposure aggregation",
				zap.String("major", major), zap.Float64("total_weight", a.total))
			continue
		}
		out = append(out, model.MajorExposure{
			Major:       major,
			Title:       a.title,
			Exposure:    mean,
			TotalWeight: a.total,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Major < out[j].Major })

	assignTerciles(out)
	return out
}

func assignTerciles(exposures []model.MajorExposure) {
	if len(exposures) == 0 {
		return
	}
	values := make([]float64, len(exposures))
	for i, e := range exposures {
		values[i] = e.Exposure
	}
	labels, err := stats.Buckets(values, []string{model.TercileLow, model.TercileMedium, model.TercileHigh})
	if err != nil {
		return
	}
	for i := range exposures {
		exposures[i].Tercile = labels[i]
	}
}

// Build joins per-major exposures with the enrollment panel. Wage
// quartiles are assigned across the majors present in the wage table;
// majors without wage data get an empty quartile. Enrollment rows whose
// major has no exposure are dropped, as are non-positive enrollment cells
// (log is undefined there).
func Build(exposures []model.MajorExposure, enrollment []dataset.EnrollmentRow, wages map[string]float64) ([]model.PanelRow, error) {
	if len(exposures) == 0 {
		return nil, eris.New("panel: no major exposures to merge")
	}

	byMajor := make(map[string]model.MajorExposure, len(exposures))
	for _, e := range exposures {
		byMajor[e.Major] = e
	}
	quartiles := wageQuartiles(wages)

	log := zap.L().With(zap.String("component", "panel"))
	var rows []model.PanelRow
	droppedNoExposure := 0
	droppedNonPositive := 0

	for _, er := range enrollment {
		exp, ok := byMajor[er.Major]
		if !ok {
			droppedNoExposure++
			continue
		}
		if er.Enrollment <= 0 {
			droppedNonPositive++
			continue
		}
		rows = append(rows, model.PanelRow{
			Major:         er.Major,
			Title:         exp.Title,
			Year:          er.Year,
			Enrollment:    er.Enrollment,
			LogEnrollment: math.Log(er.Enrollment),
			Exposure:      exp.Exposure,
			Tercile:       exp.Tercile,
			WageQuartile:  quartiles[er.Major],
		})
	}

	if droppedNoExposure > 0 || droppedNonPositive > 0 {
		log.Info("panel rows dropped",
			zap.Int("no_exposure", droppedNoExposure),
			zap.Int("non_positive_enrollment", droppedNonPositive),
		)
	}
	if len(rows) == 0 {
		return nil, eris.New("panel: no enrollment rows matched an exposure-scored major")
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Major != rows[j].Major {
			return rows[i].Major < rows[j].Major
		}
		return rows[i].Year < rows[j].Year
	})
	return rows, nil
}

// wageQuartiles labels each major in the wage table Q1..Q4 by its mean
// wage.
func wageQuartiles(wages map[string]float64) map[string]string {
	if len(wages) == 0 {
		return map[string]string{}
	}
	majors := make([]string, 0, len(wages))
	for m := range wages {
		majors = append(majors, m)
	}
	sort.Strings(majors)

	values := make([]float64, len(majors))
	for i, m := range majors {
		values[i] = wages[m]
	}
	labels, err := stats.Buckets(values, []string{"Q1", "Q2", "Q3", "Q4"})
	if err != nil {
		return map[string]string{}
	}

	out := make(map[string]string, len(majors))
	for i, m := range majors {
		out[m] = labels[i]
	}
	return out
}
