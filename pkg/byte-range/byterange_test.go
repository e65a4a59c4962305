package byterange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLimits = Limits{MaxRangeBytes: 1000, MaxSuffixBytes: 100}

func TestParseAbsentAndMalformed(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"absent", ""},
		{"wrong unit", "items=0-10"},
		{"no unit", "0-10"},
		{"no dash", "bytes=10"},
		{"both sides empty", "bytes=-"},
		{"multi range", "bytes=0-10,20-30"},
		{"garbage start", "bytes=abc-10"},
		{"garbage end", "bytes=0-xyz"},
		{"negative suffix", "bytes=--5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br, err := Parse(tt.header, testLimits)
			require.NoError(t, err)
			assert.True(t, br.IsZero())
		})
	}
}

func TestParseBounded(t *testing.T) {
	br, err := Parse("bytes=0-99", testLimits)
	require.NoError(t, err)
	assert.Equal(t, FormBounded, br.Form)
	assert.Equal(t, int64(0), br.Start)
	assert.Equal(t, int64(99), br.End)
	assert.Equal(t, int64(100), br.Length())
	assert.Equal(t, "bytes=0-99", br.Header())
}

func TestParseBoundedSingleByte(t *testing.T) {
	br, err := Parse("bytes=42-42", testLimits)
	require.NoError(t, err)
	assert.Equal(t, int64(1), br.Length())
}

func TestParseBoundedAtLimit(t *testing.T) {
	// limit is 1000 bytes: 0-999 is exactly at it
	br, err := Parse("bytes=0-999", testLimits)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), br.Length())

	_, err = Parse("bytes=0-1000", testLimits)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "exceeds limit")
}

func TestParseEndBeforeStart(t *testing.T) {
	_, err := Parse("bytes=100-50", testLimits)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "before start")
}

func TestParseOpenEnded(t *testing.T) {
	br, err := Parse("bytes=500-", testLimits)
	require.NoError(t, err)
	assert.Equal(t, FormOpen, br.Form)
	assert.Equal(t, int64(500), br.Start)
	assert.Equal(t, "bytes=500-", br.Header())

	// open-ended ranges have no upper bound
	br, err = Parse("bytes=999999999-", testLimits)
	require.NoError(t, err)
	assert.Equal(t, FormOpen, br.Form)
}

func TestParseSuffix(t *testing.T) {
	br, err := Parse("bytes=-100", testLimits)
	require.NoError(t, err)
	assert.Equal(t, FormSuffix, br.Form)
	assert.Equal(t, int64(100), br.N)
	assert.Equal(t, "bytes=-100", br.Header())

	_, err = Parse("bytes=-101", testLimits)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "suffix")
}

func TestZeroValueHeader(t *testing.T) {
	assert.Equal(t, "", ByteRange{}.Header())
	assert.Equal(t, int64(0), ByteRange{}.Length())
}
