package blobgate

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSDefaultDeniesEverything(t *testing.T) {
	p := NewCORSPolicy("")
	assert.False(t, p.Allowed("https://app.example.com"))

	h := http.Header{}
	p.Apply(h, "https://app.example.com")
	assert.Empty(t, h.Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowList(t *testing.T) {
	p := NewCORSPolicy("https://a.example.com, https://b.example.com")

	assert.True(t, p.Allowed("https://a.example.com"))
	assert.True(t, p.Allowed("https://b.example.com"))
	assert.False(t, p.Allowed("https://c.example.com"))
	assert.False(t, p.Allowed(""))
}

func TestCORSNeverWildcards(t *testing.T) {
	p := NewCORSPolicy("https://a.example.com")
	h := http.Header{}
	p.Apply(h, "https://a.example.com")

	assert.Equal(t, "https://a.example.com", h.Get("Access-Control-Allow-Origin"))
	assert.NotEqual(t, "*", h.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", h.Get("Vary"))
}

func TestCORSPreflightHeaders(t *testing.T) {
	p := NewCORSPolicy("https://a.example.com")
	h := http.Header{}
	p.ApplyPreflight(h, "https://a.example.com")

	assert.Equal(t, "GET, HEAD, OPTIONS", h.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Range, Authorization", h.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", h.Get("Access-Control-Max-Age"))
}

func TestCORSPreflightDeniedOrigin(t *testing.T) {
	p := NewCORSPolicy("https://a.example.com")
	h := http.Header{}
	p.ApplyPreflight(h, "https://evil.example.com")
	assert.Empty(t, h)
}
