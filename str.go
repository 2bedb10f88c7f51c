// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpwire

// Frag is one (pointer, length) fragment of a Str, referencing a slice of
// some input buffer passed to Parse(). Buf is kept (not just an offset)
// because a Str spanning a resumption point references *different* input
// buffers for its different fragments - see the ChunkedString note in
// SPEC_FULL.md §3.
type Frag struct {
	Buf []byte
	Off int
	Len int
}

// Bytes returns the fragment's bytes, zero-copy.
func (f Frag) Bytes() []byte {
	return f.Buf[f.Off : f.Off+f.Len]
}

// Str is a logical byte string represented as an ordered sequence of
// fragments, allowing it to span multiple, independently-allocated input
// buffers without ever copying the payload (see §4.1 and the GLOSSARY
// entry "ChunkedString").
//
// A Str is either empty, "plain" (a single fragment) or "compound" (more
// than one fragment, the normal case right after resuming mid-token).
type Str struct {
	frags []Frag
	// in-progress fragment, not yet committed to frags. open is false
	// when there is nothing currently being accumulated.
	open   bool
	curBuf []byte
	curOff int
	curEnd int
}

// Reset clears a Str back to empty. Must be called after every
// successfully consumed token/header so state does not leak into the
// next one (see SPEC_FULL.md / design notes on the carry buffer).
func (s *Str) Reset() {
	s.frags = s.frags[:0]
	s.open = false
	s.curBuf = nil
	s.curOff = 0
	s.curEnd = 0
}

// Empty returns true if no bytes have been recorded at all.
func (s *Str) Empty() bool {
	return !s.open && len(s.frags) == 0
}

// Begin records p as the start of a new in-progress fragment in buf.
func (s *Str) Begin(buf []byte, p int) {
	s.open = true
	s.curBuf = buf
	s.curOff = p
	s.curEnd = p
}

// ExtendInPlace advances the in-progress fragment's end within the same
// buffer it was Begin()-ed in. This is the common per-byte case while a
// token is being scanned.
func (s *Str) ExtendInPlace(end int) {
	s.curEnd = end
}

// AppendFragment appends an already-known, complete fragment (used when
// parsing resumes in a new buffer: the fragment left over from the
// previous buffer is spilled in verbatim before a new one is Begin()-ed).
func (s *Str) AppendFragment(buf []byte, off, length int) {
	if length <= 0 {
		return
	}
	s.frags = append(s.frags, Frag{Buf: buf, Off: off, Len: length})
}

// Finalize closes the in-progress fragment at end and commits it. If the
// resulting fragment would be empty it is dropped instead of appended,
// which naturally collapses a 2-fragment compound back down to plain.
func (s *Str) Finalize(end int) {
	if !s.open {
		return
	}
	s.curEnd = end
	if s.curEnd > s.curOff {
		s.frags = append(s.frags, Frag{Buf: s.curBuf, Off: s.curOff, Len: s.curEnd - s.curOff})
	}
	s.open = false
	s.curBuf = nil
}

// suspend closes the in-progress fragment (if any) at end and commits it,
// but - unlike Finalize - leaves the Str ready to receive more fragments
// on the next Parse() call. Used at every suspension point so the next
// buffer's bytes spill into a fresh fragment instead of extending one
// that points into a buffer the caller may reuse.
func (s *Str) suspend(end int) {
	if s.open {
		s.ExtendInPlace(end)
		s.Finalize(end)
	}
}

// Len returns the total number of bytes recorded, including the
// in-progress fragment.
func (s *Str) Len() int {
	n := 0
	for _, f := range s.frags {
		n += f.Len
	}
	if s.open {
		n += s.curEnd - s.curOff
	}
	return n
}

// Frags returns the committed fragments. Any in-progress fragment is not
// included; call suspend or Finalize first if it must be visible.
func (s *Str) Frags() []Frag {
	return s.frags
}

// ForEachByte walks every byte of the Str in order, including the
// in-progress fragment, stopping early if fn returns false.
func (s *Str) ForEachByte(fn func(b byte) bool) {
	for _, f := range s.frags {
		b := f.Bytes()
		for i := range b {
			if !fn(b[i]) {
				return
			}
		}
	}
	if s.open {
		for i := s.curOff; i < s.curEnd; i++ {
			if !fn(s.curBuf[i]) {
				return
			}
		}
	}
}

// Bytes returns a contiguous view of the Str's content. For a plain
// (single fragment, not in-progress) Str this is zero-copy; otherwise it
// allocates scratch and copies - callers on the parsing hot path should
// prefer ForEachByte/EqualFold and reserve Bytes for diagnostics/logging.
func (s *Str) Bytes() []byte {
	if len(s.frags) == 1 && !s.open {
		return s.frags[0].Bytes()
	}
	if len(s.frags) == 0 && s.open {
		return s.curBuf[s.curOff:s.curEnd]
	}
	out := make([]byte, 0, s.Len())
	s.ForEachByte(func(b byte) bool {
		out = append(out, b)
		return true
	})
	return out
}

// EqualFold reports whether the Str's content case-insensitively equals
// lit, without ever materializing the Str into a contiguous buffer.
func (s *Str) EqualFold(lit []byte) bool {
	if s.Len() != len(lit) {
		return false
	}
	i := 0
	ok := true
	s.ForEachByte(func(b byte) bool {
		if !eqFoldByte(b, lit[i]) {
			ok = false
			return false
		}
		i++
		return true
	})
	return ok
}

func eqFoldByte(a, b byte) bool {
	if a == b {
		return true
	}
	if a >= 'A' && a <= 'Z' {
		a += 'a' - 'A'
	}
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	return a == b
}
