// Package match maps observation occupation codes to reference exposure
// scores: exact match on the normalized code first, then a hierarchical
// prefix fallback to the median score of all reference codes sharing the
// derived prefix. Matching is a pure function of the two input tables and
// is safe to re-run on the same inputs.
package match

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ohl-research/exposure-cli/internal/model"
	"github.com/ohl-research/exposure-cli/internal/soccode"
	"github.com/ohl-research/exposure-cli/internal/stats"
)

// Options tunes matcher behavior.
type Options struct {
	// MaskChars are the placeholder letters treated as suppressed digits.
	// Defaults to soccode.DefaultMaskChars.
	MaskChars string
	// TopUnmatched caps the unmatched-code list in the report. Default 10.
	TopUnmatched int
}

const defaultTopUnmatched = 10

// Matcher resolves observation codes against a reference exposure table.
type Matcher struct {
	// exact holds one score per normalized code. On duplicate codes the
	// last entry wins; the prefix scan below still sees every entry.
	exact map[string]float64
	// entries is the full reference table (duplicates included), scanned
	// linearly for prefix candidates.
	entries []model.ReferenceEntry
	opts    Options
}

// New builds a Matcher over the reference table. The table is copied and
// immutable for the matcher's lifetime.
func New(ref []model.ReferenceEntry, opts Options) *Matcher {
	if opts.MaskChars == "" {
		opts.MaskChars = soccode.DefaultMaskChars
	}
	if opts.TopUnmatched <= 0 {
		opts.TopUnmatched = defaultTopUnmatched
	}

	entries := make([]model.ReferenceEntry, len(ref))
	exact := make(map[string]float64, len(ref))
	for i, e := range ref {
		norm := soccode.Normalize(e.Code)
		entries[i] = model.ReferenceEntry{Code: norm, Score: e.Score}
		exact[norm] = e.Score
	}

	return &Matcher{exact: exact, entries: entries, opts: opts}
}

// Result bundles the matched observations with per-code provenance and
// the run's summary report. Records is keyed by normalized code.
type Result struct {
	Observations []model.Observation
	Records      map[string]model.MatchRecord
	Report       model.MatchReport
}

// Match populates the score of every observation and reports match
// quality. The input slice is not mutated; matching happens once per
// distinct normalized code and is broadcast to all rows sharing it.
func (m *Matcher) Match(obs []model.Observation) *Result {
	log := zap.L().With(zap.String("component", "match"))

	out := make([]model.Observation, len(obs))
	copy(out, obs)

	// Pass 1: exact matches, collecting distinct codes as we go.
	codeRows := make(map[string]int)
	for i := range out {
		norm := soccode.Normalize(out[i].RawCode)
		codeRows[norm]++
		if score, ok := m.exact[norm]; ok {
			s := score
			out[i].Score = &s
		} else {
			out[i].Score = nil
		}
	}

	records := make(map[string]model.MatchRecord, len(codeRows))
	for code := range codeRows {
		if score, ok := m.exact[code]; ok {
			s := score
			records[code] = model.MatchRecord{Code: code, Kind: model.MatchExact, Score: &s}
		}
	}

	// Pass 2: prefix fallback for distinct unmatched codes.
	for code := range codeRows {
		if _, done := records[code]; done {
			continue
		}
		rec := m.resolveFuzzy(code)
		records[code] = rec
		if rec.Kind == model.MatchFuzzyPrefix {
			log.Debug("prefix match",
				zap.String("code", code),
				zap.String("prefix", rec.Prefix),
				zap.Int("candidates", rec.CandidateCount),
				zap.Float64("score", *rec.Score),
			)
		}
	}

	// Pass 3: broadcast fuzzy scores to rows.
	for i := range out {
		if out[i].Score != nil {
			continue
		}
		rec := records[soccode.Normalize(out[i].RawCode)]
		if rec.Score != nil {
			s := *rec.Score
			out[i].Score = &s
		}
	}

	report := m.buildReport(out, records, codeRows)
	return &Result{Observations: out, Records: records, Report: report}
}

// resolveFuzzy derives the prefix for an unmatched code and takes the
// median score over every reference entry sharing it. A fully masked
// code derives an empty prefix, which every entry shares, so it takes
// the median of the whole table. An empty candidate set leaves the code
// unmatched; there is no shorter-prefix retry.
func (m *Matcher) resolveFuzzy(code string) model.MatchRecord {
	prefix := soccode.Prefix(code, m.opts.MaskChars)
	rec := model.MatchRecord{Code: code, Kind: model.MatchUnmatched, Prefix: prefix}

	var candidates []float64
	for _, e := range m.entries {
		if strings.HasPrefix(e.Code, prefix) {
			candidates = append(candidates, e.Score)
		}
	}
	if len(candidates) == 0 {
		return rec
	}

	med, err := stats.Median(candidates)
	if err != nil {
		// Unreachable with a non-empty candidate list.
		return rec
	}
	rec.Kind = model.MatchFuzzyPrefix
	rec.Score = &med
	rec.CandidateCount = len(candidates)
	return rec
}

func (m *Matcher) buildReport(obs []model.Observation, records map[string]model.MatchRecord, codeRows map[string]int) model.MatchReport {
	r := model.MatchReport{TotalRows: len(obs), TotalCodes: len(codeRows)}

	var unmatched []model.CodeCount
	for code, rows := range codeRows {
		switch records[code].Kind {
		case model.MatchExact:
			r.ExactCodes++
			r.ExactRows += rows
		case model.MatchFuzzyPrefix:
			r.FuzzyCodes++
			r.FuzzyRows += rows
		default:
			r.UnmatchedCodes++
			r.UnmatchedRows += rows
			unmatched = append(unmatched, model.CodeCount{Code: code, Count: rows})
		}
	}

	// Rank unresolved codes by observation frequency for inspection.
	sort.Slice(unmatched, func(i, j int) bool {
		if unmatched[i].Count != unmatched[j].Count {
			return unmatched[i].Count > unmatched[j].Count
		}
		return unmatched[i].Code < unmatched[j].Code
	})
	if len(unmatched) > m.opts.TopUnmatched {
		unmatched = unmatched[:m.opts.TopUnmatched]
	}
	r.TopUnmatched = unmatched
	return r
}
