// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpwire

// FLine holds the parsed first line of a HTTP message (request-line or
// status-line), see §4 and §6.
type FLine struct {
	Status     uint16 // reply status code, 0 for requests
	MethodNo   HTTPMethod
	Method     Str // request method, empty in replies
	URI        Str // raw request-target, verbatim
	URIHost    Str // host part of an absolute-URI request-target
	URIPort    Str // port part of an absolute-URI request-target
	URIPath    Str // absolute-path (+ query/fragment, see open question)
	Version    Str // e.g. "HTTP/1.1", common to requests and replies
	StatusCode Str // reply status as 3 digits (empty for requests)
	Reason     Str // reply reason phrase

	state   uint8
	litPos  int // "HTTP/" match progress while request/reply is ambiguous
	verMaj  uint32
	verMin  uint32
	digits  int
}

// internal parser states
const (
	flAmbig uint8 = iota // matching "HTTP/" vs accumulating a method token
	flMethod
	flReqSP1
	flURI
	flReqSP2
	flReqVerH
	flReqVerMajor
	flReqVerDot
	flReqVerMinor
	flReqCR
	flReqLF

	flRplVerMajor // reply: "HTTP/" already consumed by flAmbig
	flRplVerDot
	flRplVerMinor
	flRplSP1
	flRplStatus
	flRplSP2
	flRplReason
	flRplCR
	flRplLF

	flFIN
)

var httpSlash = []byte("HTTP/")

// Reset reinitializes fl for a new message.
func (fl *FLine) Reset() {
	*fl = FLine{}
}

// Request returns true unless a reply status code has been parsed, so
// it tells a request from a reply only once the first line is parsed.
func (fl *FLine) Request() bool {
	return fl.Status == 0
}

// Parsed returns true if the first line is fully parsed.
func (fl *FLine) Parsed() bool {
	return fl.state == flFIN
}

// ParseFLine parses the request-line or status-line of a HTTP/1.x
// message. buf is the newly-arrived chunk of input; off is the offset at
// which to start (or resume) within buf. Returns the offset immediately
// after the terminating LF and ErrHdrOk on success, or (offset,
// ErrHdrMoreBytes) if buf[off:] does not contain the whole line - call
// again with the next buffer, starting at offset 0 (see ParseMsg).
func ParseFLine(buf []byte, off int, fl *FLine) (int, ErrorHdr) {
	i := off
	// a token cut off by the previous buffer's end goes on in a new fragment
	switch fl.state {
	case flAmbig, flMethod:
		fl.Method.Begin(buf, i)
	case flURI:
		fl.URI.Begin(buf, i)
	case flReqVerH, flReqVerMajor, flReqVerDot, flReqVerMinor, flRplVerMajor, flRplVerDot, flRplVerMinor:
		fl.Version.Begin(buf, i)
	case flRplStatus:
		fl.StatusCode.Begin(buf, i)
	case flRplReason:
		fl.Reason.Begin(buf, i)
	}
	for i < len(buf) {
		c := buf[i]
		switch fl.state {
		case flAmbig:
			if fl.litPos == 0 {
				fl.Method.Begin(buf, i)
			}
			if fl.litPos < len(httpSlash) {
				if c == httpSlash[fl.litPos] {
					fl.litPos++
					fl.Method.ExtendInPlace(i + 1)
					i++
					continue
				}
				// mismatch: this is a request, reprocess c as a
				// method-token byte without consuming it twice.
				fl.state = flMethod
				continue
			}
			// litPos == len(httpSlash): full "HTTP/" match -> a reply.
			fl.Version, fl.Method = fl.Method, Str{}
			fl.state = flRplVerMajor
			fl.digits = 0
			continue
		case flMethod:
			if c == ' ' {
				fl.Method.Finalize(i)
				if fl.Method.Empty() {
					return i, ErrHdrBadChar
				}
				fl.MethodNo = GetMethodNo(fl.Method.Bytes())
				fl.state = flReqSP1
				i++
				continue
			}
			if !isTokenChar(c) {
				return i, ErrHdrBadChar
			}
			fl.Method.ExtendInPlace(i + 1)
			i++
		case flReqSP1:
			fl.URI.Begin(buf, i)
			fl.state = flURI
			continue
		case flURI:
			if c == ' ' {
				fl.URI.Finalize(i)
				if fl.URI.Empty() {
					return i, ErrHdrBadChar
				}
				fl.state = flReqSP2
				i++
				continue
			}
			if c <= 0x20 || c == 0x7f {
				return i, ErrHdrBadChar
			}
			fl.URI.ExtendInPlace(i + 1)
			i++
		case flReqSP2:
			fl.Version.Begin(buf, i)
			fl.litPos = 0
			fl.state = flReqVerH
			continue
		case flReqVerH:
			if fl.litPos < len(httpSlash) {
				if c != httpSlash[fl.litPos] {
					return i, ErrHdrBadChar
				}
				fl.litPos++
				fl.Version.ExtendInPlace(i + 1)
				i++
				continue
			}
			fl.verMaj = 0
			fl.digits = 0
			fl.state = flReqVerMajor
		case flReqVerMajor:
			if c >= '0' && c <= '9' {
				fl.verMaj = fl.verMaj*10 + uint32(c-'0')
				fl.digits++
				fl.Version.ExtendInPlace(i + 1)
				i++
				continue
			}
			if c != '.' || fl.digits == 0 {
				return i, ErrHdrBadChar
			}
			fl.Version.ExtendInPlace(i + 1)
			fl.state = flReqVerDot
			i++
		case flReqVerDot:
			fl.verMin = 0
			fl.digits = 0
			fl.state = flReqVerMinor
			continue
		case flReqVerMinor:
			if c >= '0' && c <= '9' {
				fl.verMin = fl.verMin*10 + uint32(c-'0')
				fl.digits++
				fl.Version.ExtendInPlace(i + 1)
				i++
				continue
			}
			if fl.digits == 0 {
				return i, ErrHdrBadChar
			}
			fl.Version.Finalize(i)
			fl.state = flReqCR
			continue
		case flReqCR:
			if c == '\r' {
				i++
				fl.state = flReqLF
				continue
			}
			if c == '\n' {
				i++
				goto done
			}
			return i, ErrHdrBadChar
		case flReqLF:
			if c != '\n' {
				return i, ErrHdrBadChar
			}
			i++
			goto done

		case flRplVerMajor:
			if c >= '0' && c <= '9' {
				fl.verMaj = fl.verMaj*10 + uint32(c-'0')
				fl.digits++
				fl.Version.ExtendInPlace(i + 1)
				i++
				continue
			}
			if c != '.' || fl.digits == 0 {
				return i, ErrHdrBadChar
			}
			fl.Version.ExtendInPlace(i + 1)
			fl.state = flRplVerDot
			i++
		case flRplVerDot:
			fl.verMin = 0
			fl.digits = 0
			fl.state = flRplVerMinor
			continue
		case flRplVerMinor:
			if c >= '0' && c <= '9' {
				fl.verMin = fl.verMin*10 + uint32(c-'0')
				fl.digits++
				fl.Version.ExtendInPlace(i + 1)
				i++
				continue
			}
			if c != ' ' || fl.digits == 0 {
				return i, ErrHdrBadChar
			}
			fl.Version.Finalize(i)
			fl.state = flRplSP1
			i++
		case flRplSP1:
			fl.StatusCode.Begin(buf, i)
			fl.digits = 0
			fl.Status = 0
			fl.state = flRplStatus
			continue
		case flRplStatus:
			if c >= '0' && c <= '9' {
				if fl.digits == 3 {
					return i, ErrHdrBadChar
				}
				fl.Status = fl.Status*10 + uint16(c-'0')
				fl.digits++
				fl.StatusCode.ExtendInPlace(i + 1)
				i++
				continue
			}
			if c != ' ' || fl.digits != 3 {
				return i, ErrHdrBadChar
			}
			fl.StatusCode.Finalize(i)
			fl.state = flRplSP2
			i++
		case flRplSP2:
			fl.Reason.Begin(buf, i)
			fl.state = flRplReason
			continue
		case flRplReason:
			if c == '\r' {
				fl.Reason.Finalize(i)
				fl.state = flRplCR
				i++
				continue
			}
			if c == '\n' {
				fl.Reason.Finalize(i)
				i++
				goto done
			}
			if c == 0x7f || (c < 0x20 && c != '\t') {
				return i, ErrHdrBadChar
			}
			fl.Reason.ExtendInPlace(i + 1)
			i++
		case flRplCR:
			if c != '\n' {
				return i, ErrHdrBadChar
			}
			i++
			goto done
		default:
			return i, ErrHdrBug
		}
	}
	// suspend: commit whatever in-progress fragment exists so the next
	// buffer spills into a fresh one instead of extending a stale buf.
	fl.Method.suspend(i)
	fl.URI.suspend(i)
	fl.Version.suspend(i)
	fl.StatusCode.suspend(i)
	fl.Reason.suspend(i)
	return i, ErrHdrMoreBytes
done:
	fl.state = flFIN
	if !fl.Request() {
		return i, ErrHdrOk
	}
	if fl.MethodNo == MUndef || fl.MethodNo == MOther {
		return i, ErrHdrBadChar
	}
	splitRequestTarget(&fl.URI, &fl.URIHost, &fl.URIPort, &fl.URIPath)
	return i, ErrHdrOk
}

func isTokenChar(c byte) bool {
	if c <= 0x20 || c == 0x7f {
		return false
	}
	switch c {
	case '(', ')', '<', '>', '@', ',', ';', ':', '\\', '"', '/', '[', ']',
		'?', '=', '{', '}':
		return false
	}
	return true
}

// splitRequestTarget splits a fully-parsed request-target into host,
// port and path, per §3 ("request-target split into host / port /
// absolute-path"). It runs once, after the whole target is known, over
// the URI's already-committed fragments - no further resumption is
// needed since the extent is fixed.
//
// DESIGN NOTE / open question (§9, preserved): the path component is
// whatever follows the authority (or the whole target, for origin-form)
// up to the terminating space; this includes '?' query and '#' fragment
// characters even though the stated goal is only absolute-path. This
// mirrors the documented contradiction with RFC 7230 §2.7 and is not
// silently "fixed" here.
func splitRequestTarget(uri, host, port, path *Str) {
	const absPrefix = "http://"
	if uri.EqualFoldPrefix([]byte(absPrefix)) {
		rest := uriAfter(uri, len(absPrefix))
		hostEnd := 0
		n := rest.Len()
		// host: [A-Za-z0-9.-]+ (no IPv6 bracket support, see §9/open
		// question - intentionally matches the Host header parser).
		for hostEnd < n && isHostChar(byteAt(rest, hostEnd)) {
			hostEnd++
		}
		copySlice(rest, 0, hostEnd, host)
		if hostEnd < n && byteAt(rest, hostEnd) == ':' {
			portEnd := hostEnd + 1
			for portEnd < n && isDigit(byteAt(rest, portEnd)) {
				portEnd++
			}
			copySlice(rest, hostEnd+1, portEnd, port)
			copySlice(rest, portEnd, n, path)
			return
		}
		copySlice(rest, hostEnd, n, path)
		return
	}
	// origin-form: the whole target is the path.
	copySlice(uri, 0, uri.Len(), path)
}

func isHostChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '.' || c == '-'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// byteAt returns the n-th byte of s (0-indexed), scanning fragments.
func byteAt(s *Str, n int) byte {
	var out byte
	i := 0
	s.ForEachByte(func(b byte) bool {
		if i == n {
			out = b
			return false
		}
		i++
		return true
	})
	return out
}

// uriAfter returns a view of s skipping its first skip bytes, built as a
// fresh Str of zero-copy sub-fragments.
func uriAfter(s *Str, skip int) *Str {
	var out Str
	copySlice(s, skip, s.Len(), &out)
	return &out
}

// copySlice builds dst as the zero-copy sub-range [from:to) of src,
// re-slicing src's own fragments rather than materializing bytes.
func copySlice(src *Str, from, to int, dst *Str) {
	dst.Reset()
	pos := 0
	for _, f := range src.frags {
		fStart := pos
		fEnd := pos + f.Len
		pos = fEnd
		lo := from
		if lo < fStart {
			lo = fStart
		}
		hi := to
		if hi > fEnd {
			hi = fEnd
		}
		if lo >= hi {
			continue
		}
		dst.AppendFragment(f.Buf, f.Off+(lo-fStart), hi-lo)
	}
	if src.open {
		fStart := pos
		fEnd := pos + (src.curEnd - src.curOff)
		lo := from
		if lo < fStart {
			lo = fStart
		}
		hi := to
		if hi > fEnd {
			hi = fEnd
		}
		if lo < hi {
			dst.AppendFragment(src.curBuf, src.curOff+(lo-fStart), hi-lo)
		}
	}
}

// EqualFoldPrefix reports whether s starts with pfx, case-insensitively.
func (s *Str) EqualFoldPrefix(pfx []byte) bool {
	if s.Len() < len(pfx) {
		return false
	}
	i := 0
	ok := true
	s.ForEachByte(func(b byte) bool {
		if i >= len(pfx) {
			return false
		}
		if !eqFoldByte(b, pfx[i]) {
			ok = false
			return false
		}
		i++
		return true
	})
	return ok && i == len(pfx)
}
