// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package bufchain builds and feeds arbitrarily-fragmented copies of a
// byte slice, for exercising a resumable parser's suspend/resume path
// at every possible buffer boundary (see §8, "chunk independence").
package bufchain

import "math/rand"

// Split cuts b into n pieces (each copied into its own backing array, so
// a parser cannot cheat by noticing they are sub-slices of one
// allocation) as evenly as possible. n must be >= 1; if n > len(b) it is
// clamped down to len(b) (or 1 for an empty b).
func Split(b []byte, n int) [][]byte {
	if len(b) == 0 {
		return [][]byte{{}}
	}
	if n < 1 {
		n = 1
	}
	if n > len(b) {
		n = len(b)
	}
	out := make([][]byte, 0, n)
	base := len(b) / n
	rem := len(b) % n
	pos := 0
	for i := 0; i < n; i++ {
		sz := base
		if i < rem {
			sz++
		}
		piece := make([]byte, sz)
		copy(piece, b[pos:pos+sz])
		pos += sz
		out = append(out, piece)
	}
	return out
}

// RandomSplits returns n independently-random fragmentations of b, each
// using a freshly-copied backing array per piece, seeded from r.
func RandomSplits(b []byte, n int, r *rand.Rand) [][][]byte {
	out := make([][][]byte, n)
	for i := range out {
		pieces := 1 + r.Intn(len(b)+1)
		out[i] = Split(b, pieces)
	}
	return out
}

// OneBytePieces fragments b into len(b) single-byte buffers, the most
// adversarial split for a resumable parser.
func OneBytePieces(b []byte) [][]byte {
	return Split(b, len(b))
}

// Feed calls step once per piece, in order, and stops early as soon as
// step returns true.
func Feed(pieces [][]byte, step func(piece []byte) (done bool)) {
	for _, p := range pieces {
		if step(p) {
			return
		}
	}
}
