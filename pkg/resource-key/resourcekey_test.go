package resourcekey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ns = "analytics/"

func TestParseExtractsOwner(t *testing.T) {
	res, err := Parse("analytics/archive/user_id=u1/data.parquet", ns)
	require.NoError(t, err)
	assert.Equal(t, "u1", res.Owner)
	assert.Equal(t, "analytics", res.Namespace)
	assert.Equal(t, "archive/user_id=u1/data.parquet", res.Path)
	assert.Equal(t, "analytics/archive/user_id=u1/data.parquet", res.String())
}

func TestParseMissingMarker(t *testing.T) {
	res, err := Parse("analytics/archive/shared/data.parquet", ns)
	require.NoError(t, err)
	assert.Empty(t, res.Owner)
}

func TestParseFirstMarkerWins(t *testing.T) {
	res, err := Parse("analytics/user_id=u1/user_id=u2/data.parquet", ns)
	require.NoError(t, err)
	assert.Equal(t, "u1", res.Owner)
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"traversal", "../../etc/passwd"},
		{"traversal inside namespace", "analytics/../secrets/user_id=u1/x"},
		{"nul byte", "analytics/user_id=u1/\x00data"},
		{"outside namespace", "uploads/user_id=u1/data.parquet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.key, ns)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
		})
	}
}

func TestParseNoNamespaceConfigured(t *testing.T) {
	res, err := Parse("anything/user_id=u9/x", "")
	require.NoError(t, err)
	assert.Equal(t, "u9", res.Owner)
	assert.Equal(t, "anything/user_id=u9/x", res.Path)
}
