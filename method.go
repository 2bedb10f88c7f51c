// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpwire

import "bytes"

// HTTPMethod is the type used to hold the parsed request method.
type HTTPMethod uint8

// Method values. Only MGet, MHead and MPost are accepted by
// ParseFLine (§6); any other recognized-but-unsupported token, or
// anything unrecognized, resolves to MOther and is rejected with BLOCK.
// Grounded on tempesta_fw's Req_Method fast path, which recognizes
// exactly these three methods too.
const (
	MUndef HTTPMethod = iota
	MGet
	MHead
	MPost
	MOther // recognized-as-a-token but not a supported method
)

var method2Name = [...][]byte{
	MUndef: []byte(""),
	MGet:   []byte("GET"),
	MHead:  []byte("HEAD"),
	MPost:  []byte("POST"),
	MOther: []byte("OTHER"),
}

// Name returns the ASCII method name.
func (m HTTPMethod) Name() []byte {
	if int(m) >= len(method2Name) {
		return method2Name[MUndef]
	}
	return method2Name[m]
}

func (m HTTPMethod) String() string {
	return string(m.Name())
}

// GetMethodNo resolves an ASCII method token to its numeric value.
// Methods are case-sensitive tokens per RFC 7230.
func GetMethodNo(tok []byte) HTTPMethod {
	switch len(tok) {
	case 3:
		if bytes.Equal(tok, []byte("GET")) {
			return MGet
		}
	case 4:
		if bytes.Equal(tok, []byte("HEAD")) {
			return MHead
		}
		if bytes.Equal(tok, []byte("POST")) {
			return MPost
		}
	}
	return MOther
}
