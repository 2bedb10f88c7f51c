// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBodyContentLength(t *testing.T) {
	var bp BodyParser
	bp.Init(false, true, 5, false, nil)
	buf := []byte("hello")
	n, err := bp.Parse(buf, 0)
	assert.Equal(t, ErrHdrOk, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(bp.Payload.Bytes()))
}

func TestBodyContentLengthSplitAcrossBuffers(t *testing.T) {
	var bp BodyParser
	bp.Init(false, true, 10, false, nil)
	n, err := bp.Parse([]byte("hello"), 0)
	assert.Equal(t, ErrHdrMoreBytes, err)
	assert.Equal(t, 5, n)
	n, err = bp.Parse([]byte("world"), 0)
	assert.Equal(t, ErrHdrOk, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "helloworld", string(bp.Payload.Bytes()))
}

func TestBodyZeroLength(t *testing.T) {
	var bp BodyParser
	bp.Init(false, true, 0, false, nil)
	assert.True(t, bp.Done())
}

func TestBodyChunked(t *testing.T) {
	var bp BodyParser
	bp.Init(true, false, 0, false, nil)
	buf := []byte("4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n")
	n, err := bp.Parse(buf, 0)
	assert.Equal(t, ErrHdrOk, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, "Wikipedia", string(bp.Payload.Bytes()))
}

func TestBodyChunkedWithTrailer(t *testing.T) {
	var bp BodyParser
	bp.Init(true, false, 0, false, nil)
	buf := []byte("3\r\nfoo\r\n0\r\nX-Trailer: v\r\n\r\n")
	_, err := bp.Parse(buf, 0)
	assert.Equal(t, ErrHdrOk, err)
	assert.Equal(t, "foo", string(bp.Payload.Bytes()))
	assert.Len(t, bp.Trailers.Raw, 1)
}

func TestBodyChunkedSplitMidChunk(t *testing.T) {
	var bp BodyParser
	bp.Init(true, false, 0, false, nil)
	n, err := bp.Parse([]byte("5\r\nhel"), 0)
	assert.Equal(t, ErrHdrMoreBytes, err)
	assert.Equal(t, 6, n)
	_, err = bp.Parse([]byte("lo\r\n0\r\n\r\n"), 0)
	assert.Equal(t, ErrHdrOk, err)
	assert.Equal(t, "hello", string(bp.Payload.Bytes()))
}

func TestBodyEOFDelimited(t *testing.T) {
	var bp BodyParser
	bp.Init(false, false, 0, true, nil)
	_, err := bp.Parse([]byte("part1"), 0)
	assert.Equal(t, ErrHdrMoreBytes, err)
	_, err = bp.Parse([]byte("part2"), 0)
	assert.Equal(t, ErrHdrMoreBytes, err)
	verr := bp.FinishEOF()
	assert.Equal(t, ErrHdrOk, verr)
	assert.Equal(t, "part1part2", string(bp.Payload.Bytes()))
}

func TestBodyTruncatedAtEOF(t *testing.T) {
	var bp BodyParser
	bp.Init(false, true, 100, false, nil)
	_, err := bp.Parse([]byte("short"), 0)
	assert.Equal(t, ErrHdrMoreBytes, err)
	assert.Equal(t, ErrHdrTrunc, bp.FinishEOF())
}
