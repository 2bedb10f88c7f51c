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

func TestParseMsgSimpleGET(t *testing.T) {
	buf := []byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n")
	var msg Msg
	n, v, err := ParseMsg(buf, 0, &msg)
	assert.NoError(t, err)
	assert.Equal(t, PASS, v)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, MGet, msg.FLine.MethodNo)
	assert.True(t, msg.HasHost)
	assert.Equal(t, "example.com", string(msg.Host.Bytes()))
}

func TestParseMsgPostWithBody(t *testing.T) {
	buf := []byte("POST /submit HTTP/1.1\r\nHost: a\r\nContent-Length: 5\r\n\r\nhello")
	var msg Msg
	n, v, err := ParseMsg(buf, 0, &msg)
	assert.NoError(t, err)
	assert.Equal(t, PASS, v)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, "hello", string(msg.Body.Payload.Bytes()))
}

func TestParseMsgChunkedBody(t *testing.T) {
	buf := []byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWiki\r\n0\r\n\r\n")
	var msg Msg
	_, v, err := ParseMsg(buf, 0, &msg)
	assert.NoError(t, err)
	assert.Equal(t, PASS, v)
	assert.Equal(t, "Wiki", string(msg.Body.Payload.Bytes()))
}

func TestParseMsgPipelinedRequests(t *testing.T) {
	buf := []byte("GET /a HTTP/1.1\r\nHost: h\r\n\r\nGET /b HTTP/1.1\r\nHost: h\r\n\r\n")
	var m1 Msg
	n1, v1, err := ParseMsg(buf, 0, &m1)
	assert.NoError(t, err)
	assert.Equal(t, PASS, v1)

	var m2 Msg
	n2, v2, err := ParseMsg(buf, n1, &m2)
	assert.NoError(t, err)
	assert.Equal(t, PASS, v2)
	assert.Equal(t, len(buf), n2)
	assert.Equal(t, "/a", string(m1.FLine.URIPath.Bytes()))
	assert.Equal(t, "/b", string(m2.FLine.URIPath.Bytes()))
}

func TestParseMsgBlockOnBadMethod(t *testing.T) {
	buf := []byte("DELETE /x HTTP/1.1\r\nHost: h\r\n\r\n")
	var msg Msg
	_, v, err := ParseMsg(buf, 0, &msg)
	assert.Equal(t, BLOCK, v)
	assert.Error(t, err)
	var be *BlockError
	assert.ErrorAs(t, err, &be)
}

func TestParseMsgSplitAcrossBuffers(t *testing.T) {
	whole := []byte("POST /x HTTP/1.1\r\nHost: h\r\nContent-Length: 3\r\n\r\nabc")
	pieces := bufchain.OneBytePieces(whole)
	var msg Msg
	var v Verdict
	var err error
	for _, p := range pieces {
		var n int
		n, v, err = ParseMsg(p, 0, &msg)
		if v == POSTPONE {
			continue
		}
		assert.Equal(t, len(p), n)
		break
	}
	assert.NoError(t, err)
	assert.Equal(t, PASS, v)
	assert.Equal(t, "abc", string(msg.Body.Payload.Bytes()))
}
