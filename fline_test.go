// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpwire

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreflux/httpwire/internal/bufchain"
)

func TestParseFLineRequestOriginForm(t *testing.T) {
	line := []byte("GET /foo/bar?x=1 HTTP/1.1\r\n")
	var fl FLine
	n, err := ParseFLine(line, 0, &fl)
	assert.Equal(t, ErrHdrOk, err)
	assert.Equal(t, len(line), n)
	assert.True(t, fl.Request())
	assert.Equal(t, MGet, fl.MethodNo)
	assert.Equal(t, "/foo/bar?x=1", string(fl.URIPath.Bytes()))
	assert.Equal(t, "HTTP/1.1", string(fl.Version.Bytes()))
}

func TestParseFLineRequestAbsoluteURI(t *testing.T) {
	line := []byte("GET http://example.com:8080/path HTTP/1.1\r\n")
	var fl FLine
	_, err := ParseFLine(line, 0, &fl)
	assert.Equal(t, ErrHdrOk, err)
	assert.Equal(t, "example.com", string(fl.URIHost.Bytes()))
	assert.Equal(t, "8080", string(fl.URIPort.Bytes()))
	assert.Equal(t, "/path", string(fl.URIPath.Bytes()))
}

func TestParseFLineReply(t *testing.T) {
	line := []byte("HTTP/1.1 404 Not Found\r\n")
	var fl FLine
	_, err := ParseFLine(line, 0, &fl)
	assert.Equal(t, ErrHdrOk, err)
	assert.False(t, fl.Request())
	assert.EqualValues(t, 404, fl.Status)
	assert.Equal(t, "Not Found", string(fl.Reason.Bytes()))
}

func TestParseFLineRejectsUnsupportedMethod(t *testing.T) {
	line := []byte("PUT /x HTTP/1.1\r\n")
	var fl FLine
	_, err := ParseFLine(line, 0, &fl)
	assert.Equal(t, ErrHdrBadChar, err)
}

// TestParseFLineChunkIndependence feeds every 2-way split and every
// single-byte split of a request-line and a status-line through
// ParseFLine and checks the result is identical to the unsplit parse,
// per §8's chunk-independence property.
func TestParseFLineChunkIndependence(t *testing.T) {
	lines := [][]byte{
		[]byte("HEAD /a/b/c HTTP/1.0\r\n"),
		[]byte("HTTP/1.1 200 OK\r\n"),
	}
	for _, line := range lines {
		var want FLine
		_, err := ParseFLine(line, 0, &want)
		assert.Equal(t, ErrHdrOk, err)

		for _, pieces := range append(splitsOf(line), bufchain.OneBytePieces(line)) {
			var got FLine
			var verr ErrorHdr
			for _, p := range pieces {
				var n int
				n, verr = ParseFLine(p, 0, &got)
				if verr == ErrHdrMoreBytes {
					continue
				}
				assert.Equal(t, len(p), n)
				break
			}
			assert.Equal(t, ErrHdrOk, verr)
			assert.Equal(t, want.MethodNo, got.MethodNo)
			assert.Equal(t, want.Status, got.Status)
			assert.Equal(t, string(want.Version.Bytes()), string(got.Version.Bytes()))
			if want.Request() {
				assert.Equal(t, string(want.URIPath.Bytes()), string(got.URIPath.Bytes()))
			} else {
				assert.Equal(t, string(want.Reason.Bytes()), string(got.Reason.Bytes()))
			}
		}
	}
}

func splitsOf(b []byte) [][][]byte {
	return allSplits(b)
}
