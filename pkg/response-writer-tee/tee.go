package tee

import (
	"bytes"
	"fmt"
	"net/http"
	"time"
)

// ResponseSaver is a wrapper around http.ResponseWriter that records the
// response in its HTTP/1.1 wire form while writing it to the client.
// The recorded bytes feed the asynchronous cache store after the response
// has already been sent.
type ResponseSaver struct {
	rw           http.ResponseWriter
	b            *bytes.Buffer
	header       http.Header
	status       int
	wroteHeaders bool
	CreatedAt    time.Time
}

// NewResponseSaver returns a ResponseSaver teeing to w.
func NewResponseSaver(w http.ResponseWriter) *ResponseSaver {
	return &ResponseSaver{
		CreatedAt: time.Now(),
		rw:        w,
		b:         &bytes.Buffer{},
		header:    http.Header{},
	}
}

// Header implements http.ResponseWriter.
// Headers set here are recorded; headers set directly on the underlying
// writer reach the client only.
func (t *ResponseSaver) Header() http.Header {
	return t.header
}

// WriteHeader implements http.ResponseWriter.
// The status line and headers are recorded in HTTP/1.1 format only.
func (t *ResponseSaver) WriteHeader(statusCode int) {
	t.wroteHeaders = true
	t.status = statusCode
	fmt.Fprintf(t.b, "HTTP/1.1 %d %s\r\n", statusCode, http.StatusText(statusCode))
	t.header.Write(t.b)
	t.b.WriteString("\r\n")

	copyHeader(t.rw.Header(), t.header)
	t.rw.WriteHeader(statusCode)
}

// Write implements http.ResponseWriter.
// A client write error is returned so the caller can stop streaming and
// skip the cache store for the truncated recording.
func (t *ResponseSaver) Write(b []byte) (int, error) {
	if !t.wroteHeaders {
		t.WriteHeader(http.StatusOK)
	}
	t.b.Write(b)
	return t.rw.Write(b)
}

// Response returns the recorded response as a byte slice.
func (t *ResponseSaver) Response() []byte {
	return t.b.Bytes()
}

// StatusCode returns the status code of the response.
func (t *ResponseSaver) StatusCode() int {
	return t.status
}

func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}
