// Package model defines the core data types shared across the pipeline:
// reference scores, observations, match provenance, diagnostics reports,
// panel rows, and regression results.
package model

// ReferenceEntry is one row of the reference exposure table: a normalized
// occupation code and its numeric exposure score.
type ReferenceEntry struct {
	Code  string  `json:"code"`
	Score float64 `json:"score"`
}

// Observation is one survey microdata row. Score is nil until the matcher
// has run; it stays nil for codes that cannot be resolved.
type Observation struct {
	RawCode    string   `json:"raw_code"`
	Major      string   `json:"major"`
	MajorTitle string   `json:"major_title,omitempty"`
	Weight     float64  `json:"weight"`
	Score      *float64 `json:"score,omitempty"`
}

// MatchKind tags how a distinct code was resolved.
type MatchKind string

const (
	MatchExact       MatchKind = "exact"
	MatchFuzzyPrefix MatchKind = "fuzzy_prefix"
	MatchUnmatched   MatchKind = "unmatched"
)

// MatchRecord is the provenance for one distinct normalized code. For
// fuzzy matches, Prefix is the derived prefix and CandidateCount is the
// number of reference rows that contributed to the median.
type MatchRecord struct {
	Code           string    `json:"code"`
	Kind           MatchKind `json:"kind"`
	Score          *float64  `json:"score,omitempty"`
	Prefix         string    `json:"prefix,omitempty"`
	CandidateCount int       `json:"candidate_count,omitempty"`
}

// CodeCount pairs a code with its observation frequency.
type CodeCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// MatchReport summarizes one matching run. Row counts are over
// observation rows; code counts are over distinct normalized codes.
type MatchReport struct {
	TotalRows     int `json:"total_rows"`
	ExactRows     int `json:"exact_rows"`
	FuzzyRows     int `json:"fuzzy_rows"`
	UnmatchedRows int `json:"unmatched_rows"`

	TotalCodes     int `json:"total_codes"`
	ExactCodes     int `json:"exact_codes"`
	FuzzyCodes     int `json:"fuzzy_codes"`
	UnmatchedCodes int `json:"unmatched_codes"`

	// TopUnmatched lists the most frequent unresolved codes, ranked by
	// observation frequency descending.
	TopUnmatched []CodeCount `json:"top_unmatched,omitempty"`
}

// ExactPct returns the share of rows resolved by exact match, in percent.
// Returns 0 for an empty run.
func (r *MatchReport) ExactPct() float64 { return pct(r.ExactRows, r.TotalRows) }

// FuzzyPct returns the share of rows resolved by prefix fallback, in percent.
func (r *MatchReport) FuzzyPct() float64 { return pct(r.FuzzyRows, r.TotalRows) }

// UnmatchedPct returns the share of rows left unresolved, in percent.
func (r *MatchReport) UnmatchedPct() float64 { return pct(r.UnmatchedRows, r.TotalRows) }

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
