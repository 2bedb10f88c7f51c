// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Test utils

package httpwire

import (
	"math/rand"

	"github.com/intuitivelabs/bytescase"
)

func randWS() string {
	ws := [...]string{"", " ", "	"}
	var s string
	n := rand.Intn(5) // max 5 whitespace "tokens"
	for i := 0; i < n; i++ {
		s += ws[rand.Intn(len(ws))]
	}
	return s
}

func randLWS() string {
	ws := [...]string{
		"", " ", "  ", "\r\n ", "\r\n   ", "\n ", "\r ",
	}
	var s string
	n := rand.Intn(5) // max 5 whitespace "tokens"
	for i := 0; i < n; i++ {
		s += ws[rand.Intn(len(ws))]
	}
	return s
}

// randomize case in a string
func randCase(s string) string {
	r := make([]byte, len(s))
	for i, b := range []byte(s) {
		switch rand.Intn(3) {
		case 0:
			r[i] = bytescase.ByteToLower(b)
		case 1:
			r[i] = bytescase.ByteToUpper(b)
		default:
			r[i] = b
		}
	}
	return string(r)
}

// allSplits returns every way of cutting s into two non-empty pieces,
// plus the unsplit whole (used to feed Parse() one byte range
// at a time and check chunk-independence, see §8 of the spec).
func allSplits(s []byte) [][][]byte {
	res := [][][]byte{{s}}
	for i := 1; i < len(s); i++ {
		res = append(res, [][]byte{s[:i], s[i:]})
	}
	return res
}

// splitEvery1Byte slices s into len(s) single-byte pieces.
func splitEvery1Byte(s []byte) [][]byte {
	parts := make([][]byte, len(s))
	for i := range s {
		parts[i] = s[i : i+1]
	}
	return parts
}
