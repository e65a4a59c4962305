package tee

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serializer "github.com/blobgate/blobgate/pkg/response-serializer"
)

func TestTeeWritesClientAndBuffer(t *testing.T) {
	rec := httptest.NewRecorder()
	rs := NewResponseSaver(rec)
	rs.Header().Set("Content-Type", "text/plain")
	rs.WriteHeader(http.StatusOK)
	_, err := rs.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusOK, rs.StatusCode())
}

func TestRecordingIsParseableResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	rs := NewResponseSaver(rec)
	rs.Header().Set("Content-Length", "5")
	rs.WriteHeader(http.StatusPartialContent)
	rs.Write([]byte("hello"))

	res, err := serializer.BytesToResponse(rs.Response())
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusPartialContent, res.StatusCode)
}

func TestImplicitOKHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rs := NewResponseSaver(rec)
	rs.Write([]byte("x"))
	assert.Equal(t, http.StatusOK, rs.StatusCode())
}

func TestUnderlyingHeadersNotRecorded(t *testing.T) {
	rec := httptest.NewRecorder()
	// per-request headers (CORS, cache status) go on the underlying
	// writer and must not leak into the recorded entry
	rec.Header().Set("Access-Control-Allow-Origin", "https://app.example.com")
	rs := NewResponseSaver(rec)
	rs.WriteHeader(http.StatusOK)

	res, err := serializer.BytesToResponse(rs.Response())
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
