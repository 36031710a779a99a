// Package diagnose summarizes a matched observation table per group
// (major): total weight, top codes by weight with their shares, scores
// and match kinds, and the group's weighted mean score. Reporting only;
// the input is never mutated.
package diagnose

import (
	"sort"

	"github.com/ohl-research/exposure-cli/internal/model"
	"github.com/ohl-research/exposure-cli/internal/soccode"
	"github.com/ohl-research/exposure-cli/internal/stats"
)

// Options tunes report shape.
type Options struct {
	// Groups restricts the report to these group IDs, in the given order.
	// Groups with no rows are skipped silently. Empty means: top TopGroups
	// groups ranked by total weight descending.
	Groups []string
	// TopGroups bounds automatic group selection. Default 10.
	TopGroups int
	// TopCodes bounds the per-group code list. Default 10.
	TopCodes int
	// MaskChars feeds the surface classification fallback.
	MaskChars string
}

const (
	defaultTopGroups = 10
	defaultTopCodes  = 10
)

// Report builds per-group diagnostics for an already-matched observation
// table. records carries the matcher's provenance; when a code has no
// record (e.g. the table was loaded from disk without provenance), the
// kind falls back to the surface-form classification, which is an
// approximation of the true match path.
func Report(obs []model.Observation, records map[string]model.MatchRecord, opts Options) []model.GroupReport {
	if opts.TopGroups <= 0 {
		opts.TopGroups = defaultTopGroups
	}
	if opts.TopCodes <= 0 {
		opts.TopCodes = defaultTopCodes
	}
	if opts.MaskChars == "" {
		opts.MaskChars = soccode.DefaultMaskChars
	}

	byGroup := make(map[string][]model.Observation)
	for _, o := range obs {
		byGroup[o.Major] = append(byGroup[o.Major], o)
	}

	selected := opts.Groups
	if len(selected) == 0 {
		selected = topGroupsByWeight(byGroup, opts.TopGroups)
	}

	var out []model.GroupReport
	for _, g := range selected {
		rows, ok := byGroup[g]
		if !ok {
			continue // requested group absent from the data
		}
		out = append(out, groupReport(g, rows, records, opts))
	}
	return out
}

func groupReport(group string, rows []model.Observation, records map[string]model.MatchRecord, opts Options) model.GroupReport {
	rep := model.GroupReport{Group: group}

	type codeAgg struct {
		weight float64
		score  *float64
	}
	codes := make(map[string]*codeAgg)

	var scored, weights []float64
	for _, o := range rows {
		rep.TotalWeight += o.Weight
		if rep.Title == "" && o.MajorTitle != "" {
			rep.Title = o.MajorTitle
		}

		norm := soccode.Normalize(o.RawCode)
		agg, ok := codes[norm]
		if !ok {
			agg = &codeAgg{}
			codes[norm] = agg
		}
		agg.weight += o.Weight
		if o.Score != nil {
			agg.score = o.Score
			scored = append(scored, *o.Score)
			weights = append(weights, o.Weight)
		}
	}

	// Weighted mean over all of the group's scored rows, not just the
	// codes listed below. Nil when no scored weight exists.
	if mean, err := stats.WeightedMean(scored, weights); err == nil {
		rep.WeightedMean = &mean
	}

	for code, agg := range codes {
		share := 0.0
		if rep.TotalWeight > 0 {
			share = agg.weight / rep.TotalWeight
		}
		rep.Codes = append(rep.Codes, model.CodeStat{
			Code:        code,
			Weight:      agg.weight,
			WeightShare: share,
			Score:       agg.score,
			Kind:        kindFor(code, records, opts.MaskChars),
		})
	}

	sort.Slice(rep.Codes, func(i, j int) bool {
		if rep.Codes[i].Weight != rep.Codes[j].Weight {
			return rep.Codes[i].Weight > rep.Codes[j].Weight
		}
		return rep.Codes[i].Code < rep.Codes[j].Code
	})
	if len(rep.Codes) > opts.TopCodes {
		rep.Codes = rep.Codes[:opts.TopCodes]
	}
	return rep
}

// kindFor prefers the matcher's provenance tag and only re-derives the
// kind from the code's surface form when no record exists.
func kindFor(code string, records map[string]model.MatchRecord, maskChars string) model.MatchKind {
	if rec, ok := records[code]; ok {
		return rec.Kind
	}
	switch soccode.Classify(code, maskChars) {
	case soccode.KindExact:
		return model.MatchExact
	default:
		// Masked and aggregated codes go through the prefix fallback.
		return model.MatchFuzzyPrefix
	}
}

func topGroupsByWeight(byGroup map[string][]model.Observation, n int) []string {
	type gw struct {
		group  string
		weight float64
	}
	all := make([]gw, 0, len(byGroup))
	for g, rows := range byGroup {
		var w float64
		for _, o := range rows {
			w += o.Weight
		}
		all = append(all, gw{group: g, weight: w})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].weight != all[j].weight {
			return all[i].weight > all[j].weight
		}
		return all[i].group < all[j].group
	})
	if len(all) > n {
		all = all[:n]
	}
	out := make([]string, len(all))
	for i, g := range all {
		out[i] = g.group
	}
	return out
}
