// Package serializer converts cached gateway responses to and from their
// HTTP/1.1 wire form. Entries in the edge cache are stored as the exact
// bytes a client would receive, so a cache hit means replaying the stored
// bytes with no re-assembly.
package serializer

import (
	"bufio"
	"bytes"
	"net/http"
)

// BytesToResponse parses a stored cache entry back into a response.
// The returned body reads from the stored bytes.
func BytesToResponse(b []byte) (*http.Response, error) {
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(b)), nil)
}

// ResponseToBytes renders a response in its HTTP/1.1 wire form.
// Writing a response consumes its body, so the body is restored from the
// rendered bytes before returning.
func ResponseToBytes(res *http.Response) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := res.Write(buf); err != nil {
		return nil, err
	}
	bts := buf.Bytes()
	clone, err := BytesToResponse(bts)
	if err != nil {
		return nil, err
	}
	res.Body = clone.Body
	return bts, nil
}
