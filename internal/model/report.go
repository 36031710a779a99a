package model

// CodeStat is one code's contribution to a group in the diagnostics
// report: summed weight, share of the group total, resolved score (nil if
// unmatched), and match kind.
type CodeStat struct {
	Code        string    `json:"code"`
	Weight      float64   `json:"weight"`
	WeightShare float64   `json:"weight_share"`
	Score       *float64  `json:"score,omitempty"`
	Kind        MatchKind `json:"kind"`
}

// GroupReport is the diagnostics output for one group (major). Codes is
// ranked by weight descending and truncated; WeightedMean covers all of
// the group's scored rows, not just the listed codes. WeightedMean is nil
// when the group has no scored weight.
type GroupReport struct {
	Group        string     `json:"group"`
	Title        string     `json:"title,omitempty"`
	TotalWeight  float64    `json:"total_weight"`
	Codes        []CodeStat `json:"codes"`
	WeightedMean *float64   `json:"weighted_mean,omitempty"`
}

// FilterDiagnostics counts observation rows surviving each load filter,
// for debugging thin samples.
type FilterDiagnostics struct {
	TotalRows    int         `json:"total_rows"`
	AgeInBand    int         `json:"age_in_band"`
	HasOccCode   int         `json:"has_occ_code"`
	HasMajor     int         `json:"has_major"`
	MajorNonZero int         `json:"major_non_zero"`
	AllFilters   int         `json:"all_filters"`
	SkippedCells int         `json:"skipped_cells"` // rows dropped for unparseable numeric fields
	YearCounts   map[int]int `json:"year_counts,omitempty"`
}
