package serializer

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	res := &http.Response{
		StatusCode: http.StatusPartialContent,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header: http.Header{
			"Content-Range": []string{"bytes 0-4/100"},
			"Content-Type":  []string{"application/octet-stream"},
		},
		ContentLength: 5,
		Body:          io.NopCloser(strings.NewReader("hello")),
	}

	bts, err := ResponseToBytes(res)
	require.NoError(t, err)

	parsed, err := BytesToResponse(bts)
	require.NoError(t, err)
	defer parsed.Body.Close()

	assert.Equal(t, http.StatusPartialContent, parsed.StatusCode)
	assert.Equal(t, "bytes 0-4/100", parsed.Header.Get("Content-Range"))
	body, err := io.ReadAll(parsed.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestResponseBodyRestoredAfterSerializing(t *testing.T) {
	res := &http.Response{
		StatusCode:    http.StatusOK,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{},
		ContentLength: 4,
		Body:          io.NopCloser(strings.NewReader("data")),
	}

	_, err := ResponseToBytes(res)
	require.NoError(t, err)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "data", string(body))
}

func TestBytesToResponseMalformed(t *testing.T) {
	_, err := BytesToResponse([]byte("not an http response"))
	assert.Error(t, err)
}
