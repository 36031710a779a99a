package soccode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{" 2511 ", "2511"},
		{"25xx", "25XX"},
		{"", ""},
		{"\t119199\n", "119199"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Normalize(tt.input), "input: %q", tt.input)
	}
}

func TestStripMask(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{"2510XX", "2510"},
		{"251YY", "251"},
		{"2511", "2511"},
		{"X511", "X511"}, // only trailing runs are stripped
		{"XXXX", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, StripMask(tt.input, DefaultMaskChars), "input: %q", tt.input)
	}
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{"251000", "251"},   // ends in 000 -> first 3
		{"25100X", "2510"},  // mask-stripped "25100" ends in 00 -> first 4
		{"251100", "2511"},  // ends in 00 -> first 4
		{"251010", "25101"}, // ends in single 0 -> first 5
		{"2511XX", "2511"},  // mask strip only, no zero run
		{"2511", "2511"},    // no truncation
		{"00", "00"},        // shorter than the truncation length
		{"0", "0"},          // head(., 5) on a short string
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Prefix(tt.input, DefaultMaskChars), "input: %q", tt.input)
	}
}

func TestPrefix_LongestZeroRunWinsOnce(t *testing.T) {
	// Exactly one truncation applies; the result is not re-truncated even
	// though "251" does not end in a zero here and "2510" would re-derive.
	assert.Equal(t, "251", Prefix("251000", ""))
	assert.Equal(t, "191", Prefix("191000X", "X"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
	}{
		{"2510XX", KindMasked},
		{"25X100", KindMasked}, // mask char anywhere counts
		{"251000", KindAggregated},
		{"251100", KindAggregated},
		{"251010", KindAggregated},
		{"251140", KindAggregated},
		{"251141", KindExact},
		{"", KindExact},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Classify(tt.input, DefaultMaskChars), "input: %q", tt.input)
	}
}

func TestIsMasked(t *testing.T) {
	assert.True(t, IsMasked("2510xx", ""))
	assert.False(t, IsMasked("251000", ""))
	assert.False(t, IsMasked("251141", ""))
}
