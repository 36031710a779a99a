package model

import "time"

// Exposure tercile labels assigned across majors.
const (
	TercileLow    = "Low"
	TercileMedium = "Medium"
	TercileHigh   = "High"
)

// MajorExposure is the per-major weighted-mean exposure score aggregated
// from matched observations.
type MajorExposure struct {
	Major       string  `json:"major"`
	Title       string  `json:"title,omitempty"`
	Exposure    float64 `json:"exposure"`
	TotalWeight float64 `json:"total_weight"`
	Tercile     string  `json:"tercile,omitempty"`
}

// PanelRow is one major-year cell of the enrollment panel after the
// exposure merge. WageQuartile is empty when no wage data exists for the
// major.
type PanelRow struct {
	Major         string  `json:"major"`
	Title         string  `json:"title,omitempty"`
	Year          int     `json:"year"`
	Enrollment    float64 `json:"enrollment"`
	LogEnrollment float64 `json:"log_enrollment"`
	Exposure      float64 `json:"exposure"`
	Tercile       string  `json:"tercile"`
	WageQuartile  string  `json:"wage_quartile,omitempty"`
}

// DiDResult holds one difference-in-differences specification's estimate.
type DiDResult struct {
	Specification string  `json:"specification"`
	Coefficient   float64 `json:"coefficient"`
	StdError      float64 `json:"std_error"`
	PValue        float64 `json:"p_value"`
	NObs          int     `json:"n_obs"`
	NMajors       int     `json:"n_majors"`
}

// MatchRun is a persisted summary of one matching invocation.
type MatchRun struct {
	ID        string      `json:"id"`
	Dataset   string      `json:"dataset"`
	Report    MatchReport `json:"report"`
	CreatedAt time.Time   `json:"created_at"`
}
