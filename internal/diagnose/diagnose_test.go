package diagnose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohl-research/exposure-cli/internal/model"
)

func fp(v float64) *float64 { return &v }

func TestReport_TopGroupsByTotalWeight(t *testing.T) {
	t.Parallel()

	// Five groups with total weights 5,1,4,2,3; top-3 must come back
	// ordered 5,4,3.
	var obs []model.Observation
	for g, w := range map[string]float64{"a": 5, "b": 1, "c": 4, "d": 2, "e": 3} {
		obs = append(obs, model.Observation{RawCode: "2511", Major: g, Weight: w, Score: fp(0.5)})
	}

	reports := Report(obs, nil, Options{TopGroups: 3})
	require.Len(t, reports, 3)
	assert.Equal(t, "a", reports[0].Group)
	assert.Equal(t, "c", reports[1].Group)
	assert.Equal(t, "e", reports[2].Group)
}

func TestReport_WeightedMean(t *testing.T) {
	t.Parallel()

	obs := []model.Observation{
		{RawCode: "2511", Major: "6107", Weight: 10, Score: fp(0.1)},
		{RawCode: "2512", Major: "6107", Weight: 30, Score: fp(0.9)},
	}
	reports := Report(obs, nil, Options{})
	require.Len(t, reports, 1)
	require.NotNil(t, reports[0].WeightedMean)
	assert.InDelta(t, 0.70, *reports[0].WeightedMean, 1e-12)
}

func TestReport_WeightedMeanCoversAllRowsNotJustTopCodes(t *testing.T) {
	t.Parallel()

	// Two codes but TopCodes=1: the listing truncates, the mean does not.
	obs := []model.Observation{
		{RawCode: "2511", Major: "6107", Weight: 10, Score: fp(0.1)},
		{RawCode: "2512", Major: "6107", Weight: 30, Score: fp(0.9)},
	}
	reports := Report(obs, nil, Options{TopCodes: 1})
	require.Len(t, reports, 1)
	assert.Len(t, reports[0].Codes, 1)
	require.NotNil(t, reports[0].WeightedMean)
	assert.InDelta(t, 0.70, *reports[0].WeightedMean, 1e-12)
}

func TestReport_CodesRankedByWeightWithShares(t *testing.T) {
	t.Parallel()

	obs := []model.Observation{
		{RawCode: "1191", Major: "6107", Weight: 1, Score: fp(0.2)},
		{RawCode: "2511", Major: "6107", Weight: 6, Score: fp(0.5)},
		{RawCode: "2511", Major: "6107", Weight: 2, Score: fp(0.5)},
		{RawCode: "2512", Major: "6107", Weight: 3, Score: fp(0.8)},
	}
	reports := Report(obs, nil, Options{})
	require.Len(t, reports, 1)
	rep := reports[0]

	require.Len(t, rep.Codes, 3)
	assert.Equal(t, "2511", rep.Codes[0].Code)
	assert.InDelta(t, 8.0, rep.Codes[0].Weight, 1e-12)
	assert.InDelta(t, 8.0/12.0, rep.Codes[0].WeightShare, 1e-12)
	assert.Equal(t, "2512", rep.Codes[1].Code)
	assert.Equal(t, "1191", rep.Codes[2].Code)
}

func TestReport_ExplicitGroupsSkipMissingSilently(t *testing.T) {
	t.Parallel()

	obs := []model.Observation{
		{RawCode: "2511", Major: "6107", Weight: 1, Score: fp(0.5)},
	}
	reports := Report(obs, nil, Options{Groups: []string{"9999", "6107"}})
	require.Len(t, reports, 1)
	assert.Equal(t, "6107", reports[0].Group)
}

func TestReport_ZeroWeightGroup(t *testing.T) {
	t.Parallel()

	obs := []model.Observation{
		{RawCode: "2511", Major: "6107", Weight: 0, Score: fp(0.5)},
	}
	reports := Report(obs, nil, Options{})
	require.Len(t, reports, 1)
	assert.Nil(t, reports[0].WeightedMean) // no division by zero
	require.Len(t, reports[0].Codes, 1)
	assert.Zero(t, reports[0].Codes[0].WeightShare)
}

func TestReport_UnscoredRowsExcludedFromMean(t *testing.T) {
	t.Parallel()

	obs := []model.Observation{
		{RawCode: "2511", Major: "6107", Weight: 10, Score: fp(0.4)},
		{RawCode: "999999", Major: "6107", Weight: 90, Score: nil},
	}
	reports := Report(obs, nil, Options{})
	require.Len(t, reports, 1)
	require.NotNil(t, reports[0].WeightedMean)
	assert.InDelta(t, 0.4, *reports[0].WeightedMean, 1e-12)
}

func TestReport_KindFromProvenanceRecords(t *testing.T) {
	t.Parallel()

	// "251000" looks aggregated on the surface, but the matcher resolved
	// it exactly; provenance must win over the heuristic.
	records := map[string]model.MatchRecord{
		"251000": {Code: "251000", Kind: model.MatchExact, Score: fp(0.5)},
	}
	obs := []model.Observation{
		{RawCode: "251000", Major: "6107", Weight: 1, Score: fp(0.5)},
	}
	reports := Report(obs, records, Options{})
	require.Len(t, reports, 1)
	assert.Equal(t, model.MatchExact, reports[0].Codes[0].Kind)
}

func TestReport_KindFallsBackToSurfaceForm(t *testing.T) {
	t.Parallel()

	obs := []model.Observation{
		{RawCode: "2510XX", Major: "6107", Weight: 1, Score: fp(0.5)},
		{RawCode: "251100", Major: "6107", Weight: 1, Score: fp(0.5)},
		{RawCode: "251141", Major: "6107", Weight: 1, Score: fp(0.5)},
	}
	reports := Report(obs, nil, Options{})
	require.Len(t, reports, 1)

	kinds := make(map[string]model.MatchKind)
	for _, c := range reports[0].Codes {
		kinds[c.Code] = c.Kind
	}
	assert.Equal(t, model.MatchFuzzyPrefix, kinds["2510XX"])
	assert.Equal(t, model.MatchFuzzyPrefix, kinds["251100"])
	assert.Equal(t, model.MatchExact, kinds["251141"])
}

func TestReport_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Report(nil, nil, Options{}))
}
