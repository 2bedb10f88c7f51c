// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpwire

import "bytes"

// Header-value sub-parsers for Connection, Content-Length,
// Transfer-Encoding, Host and X-Forwarded-For, Keep-Alive (§4.4).
//
// DESIGN NOTE: by the time ParseHeaders hands a header to these
// sub-parsers, the whole value is already a fully-materialized Str (the
// header-line scanner above has already found its terminating CRLF) -
// so, unlike the top-level message/body state machines, these do not
// need their own suspend/resume state: the "resumable sub-machine" of
// §4.4 is realized as a single, non-streaming pass over the value's
// (possibly multi-fragment) bytes. This mirrors the teacher's own
// Content-Length sub-parser, which is likewise driven off one collected
// value, and is recorded as an intentional simplification in
// DESIGN.md.

// ConnFlags holds the parsed Connection header tokens.
type ConnFlags uint8

const (
	ConnClose ConnFlags = 1 << iota
	ConnKeepAlive
	ConnOther // a token other than close/keep-alive, e.g. "Upgrade"
)

// ParseConnection parses a (possibly multi-valued) Connection header.
// Grounded on tempesta_fw's __parse_connection: close and keep-alive are
// mutually exclusive tokens recognized out of an otherwise-opaque
// comma-separated token list.
func ParseConnection(v *Str) (ConnFlags, ErrorHdr) {
	var flags ConnFlags
	ok := true
	forEachToken(v, func(tok []byte) {
		switch {
		case foldEqual(tok, []byte("close")):
			flags |= ConnClose
		case foldEqual(tok, []byte("keep-alive")):
			flags |= ConnKeepAlive
		case len(tok) == 0:
			ok = false
		default:
			flags |= ConnOther
		}
	})
	if !ok {
		return 0, ErrHdrBadChar
	}
	if flags&ConnClose != 0 && flags&ConnKeepAlive != 0 {
		return flags, ErrHdrBadChar
	}
	return flags, ErrHdrOk
}

// ParseContentLength parses a Content-Length value as a single decimal
// integer. A comma-joined repeated value is not split: ',' is not a
// delimiter here, so the whole value is rejected with ErrHdrValNotNumber.
func ParseContentLength(v *Str) (uint32, ErrorHdr) {
	buf := trimOWS(v.Bytes())
	if len(buf) == 0 {
		return 0, ErrHdrEmpty
	}
	var carry Str
	var acc uint32
	n, err := parseDecimal(&carry, buf, 0, isWSOnly, &acc)
	if err == ErrHdrMoreBytes && n == len(buf) {
		// ran off the end of buf with no delimiter: the whole value was
		// digits, which is the common (and valid) case. acc already
		// holds the fully-accumulated value; the carry's copy of the
		// same bytes is only needed if the caller were to resume, which
		// a one-shot header value never does.
		return acc, ErrHdrOk
	}
	if err != ErrHdrOk {
		return 0, ErrHdrValNotNumber
	}
	if n != len(buf) {
		return 0, ErrHdrValNotNumber
	}
	return acc, ErrHdrOk
}

func isWSOnly(c byte) bool { return false } // never delimits; see comment above

// TrEncFlags holds which transfer-codings were present, see §4.4/§9.
type TrEncFlags uint8

const (
	TrEncChunked TrEncFlags = 1 << iota
	TrEncOther
)

// ParseTransferEncoding parses a (possibly multi-valued) Transfer-Encoding
// header. "chunked" sets TrEncChunked; any other coding, before or after
// it, and a repeated "chunked" set TrEncOther. The position of "chunked"
// in the list is not checked.
func ParseTransferEncoding(v *Str) (TrEncFlags, ErrorHdr) {
	var flags TrEncFlags
	chunkedSeen := false
	ok := true
	forEachToken(v, func(tok []byte) {
		if len(tok) == 0 {
			ok = false
			return
		}
		if foldEqual(tok, []byte("chunked")) {
			if chunkedSeen {
				flags |= TrEncOther
			}
			flags |= TrEncChunked
			chunkedSeen = true
			return
		}
		if chunkedSeen {
			flags |= TrEncOther
		} else {
			flags |= TrEncOther
		}
	})
	if !ok {
		return 0, ErrHdrBadChar
	}
	return flags, ErrHdrOk
}

// ParseHost splits a Host header into hostname and optional port.
//
// DESIGN NOTE (preserved bug, §9): no IPv6 bracket support, unlike
// ParseXForwardedFor below - this asymmetry exists in the original
// tempesta_fw Req_I_H / Req_I_XFF state machines and is kept rather
// than harmonized.
func ParseHost(v *Str, host, port *Str) ErrorHdr {
	var full Str
	full.AppendFragment(v.Bytes(), 0, v.Len())
	hostEnd := 0
	n := full.Len()
	b := full.Bytes()
	for hostEnd < n && isHostChar(b[hostEnd]) {
		hostEnd++
	}
	if hostEnd == 0 {
		return ErrHdrEmpty
	}
	copySlice(&full, 0, hostEnd, host)
	if hostEnd < n && b[hostEnd] == ':' {
		portEnd := hostEnd + 1
		for portEnd < n && isDigit(b[portEnd]) {
			portEnd++
		}
		if portEnd == hostEnd+1 {
			return ErrHdrBadChar
		}
		copySlice(&full, hostEnd+1, portEnd, port)
		hostEnd = portEnd
	}
	if hostEnd != n {
		return ErrHdrBadChar
	}
	return ErrHdrOk
}

// ParseXForwardedFor splits a (comma-separated) X-Forwarded-For value
// into its node identifiers. Unlike Host, bracketed IPv6 literals are
// accepted, per tempesta_fw's Req_I_XFF_Node_Id alphabet - see the §9
// asymmetry note above.
func ParseXForwardedFor(v *Str, nodes *[]Str) ErrorHdr {
	*nodes = (*nodes)[:0]
	var cur Str
	full := v.Bytes()
	start := 0
	flush := func(end int) ErrorHdr {
		s := trimOWSRange(full, start, end)
		if len(s) == 0 {
			return ErrHdrBadChar
		}
		for _, c := range s {
			if !isXFFChar(c) {
				return ErrHdrBadChar
			}
		}
		cur = Str{}
		cur.AppendFragment(full, indexOf(full, s), len(s))
		*nodes = append(*nodes, cur)
		return ErrHdrOk
	}
	for i := 0; i <= len(full); i++ {
		if i == len(full) || full[i] == ',' {
			if err := flush(i); err != ErrHdrOk {
				return err
			}
			start = i + 1
		}
	}
	return ErrHdrOk
}

func isXFFChar(c byte) bool {
	return isHostChar(c) || c == '[' || c == ']' || c == ':'
}

func indexOf(full []byte, sub []byte) int {
	if len(sub) == 0 {
		return 0
	}
	return bytes.Index(full, sub)
}

// ParseKeepAlive parses a response Keep-Alive header's timeout=N
// parameter (other parameters, e.g. max=N, are accepted but ignored),
// grounded on tempesta_fw's __resp_parse_keep_alive.
func ParseKeepAlive(v *Str) (timeout uint32, hasTimeout bool, _ ErrorHdr) {
	ok := true
	forEachToken(v, func(tok []byte) {
		const pfx = "timeout="
		if len(tok) > len(pfx) && foldEqual(tok[:len(pfx)], []byte(pfx)) {
			var carry Str
			var acc uint32
			digits := tok[len(pfx):]
			_, err := parseDecimal(&carry, digits, 0, isWSOnly, &acc)
			if err == ErrHdrMoreBytes {
				timeout = acc
				hasTimeout = true
				return
			}
			ok = false
		}
	})
	if !ok {
		return 0, false, ErrHdrBadChar
	}
	return timeout, hasTimeout, ErrHdrOk
}

// forEachToken splits a Str on ',' and calls fn with each trimmed token,
// materializing at most one small buffer per call (values here are
// header-line sized, not body-sized).
func forEachToken(v *Str, fn func(tok []byte)) {
	full := v.Bytes()
	start := 0
	for i := 0; i <= len(full); i++ {
		if i == len(full) || full[i] == ',' {
			fn(trimOWSRange(full, start, i))
			start = i + 1
		}
	}
}

func trimOWS(b []byte) []byte {
	return trimOWSRange(b, 0, len(b))
}

func trimOWSRange(b []byte, lo, hi int) []byte {
	for lo < hi && isWS(b[lo]) {
		lo++
	}
	for hi > lo && isWS(b[hi-1]) {
		hi--
	}
	return b[lo:hi]
}
