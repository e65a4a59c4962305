package cachekey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sharedURL = "/file/analytics/archive/user_id=u1/data.parquet"

func TestKeyDeterminism(t *testing.T) {
	k := NewKeyer("edge-1")
	a := k.Key("GET", sharedURL, "u1", "bytes=0-99")
	b := k.Key("GET", sharedURL, "u1", "bytes=0-99")
	assert.Equal(t, a, b)
}

func TestKeySeparatesTenants(t *testing.T) {
	// two tenants fetching the identical URL must key differently even
	// though the path itself names u1
	k := NewKeyer("edge-1")
	u1 := k.Key("GET", sharedURL, "u1", "")
	u2 := k.Key("GET", sharedURL, "u2", "")
	assert.NotEqual(t, u1, u2)
}

func TestKeySeparatesRanges(t *testing.T) {
	k := NewKeyer("edge-1")
	first := k.Key("GET", sharedURL, "u1", "bytes=0-99")
	second := k.Key("GET", sharedURL, "u1", "bytes=100-199")
	none := k.Key("GET", sharedURL, "u1", "")
	assert.NotEqual(t, first, second)
	assert.NotEqual(t, first, none)
	assert.NotEqual(t, second, none)
}

func TestKeySeparatesMethods(t *testing.T) {
	k := NewKeyer("edge-1")
	assert.NotEqual(t,
		k.Key("GET", sharedURL, "u1", ""),
		k.Key("HEAD", sharedURL, "u1", ""))
}

func TestTenantNotForgeableViaURL(t *testing.T) {
	// a URL that textually embeds the tenant parameter still keys
	// differently from the genuine tenant component, because the real
	// discriminator sits after a separator byte no URL can contain
	k := NewKeyer("edge-1")
	forged := k.Key("GET", sharedURL+"?bg-tenant=u2", "u1", "")
	genuine := k.Key("GET", sharedURL, "u2", "")
	assert.NotEqual(t, forged, genuine)
}

func TestPrefixCoversAllVariants(t *testing.T) {
	k := NewKeyer("edge-1")
	prefix := k.Prefix("GET", sharedURL)
	assert.True(t, strings.HasPrefix(k.Key("GET", sharedURL, "u1", ""), prefix))
	assert.True(t, strings.HasPrefix(k.Key("GET", sharedURL, "u2", "bytes=0-9"), prefix))
}

func TestCanonicalURL(t *testing.T) {
	url := CanonicalURL("/file", "analytics/user_id=u1/a b.parquet")
	assert.Equal(t, "/file/analytics/user_id=u1/a%20b.parquet", url)
}
