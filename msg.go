// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpwire

// MsgPState is the top-level message driver's state, see §4.6/§7.
type MsgPState uint8

const (
	MsgInit MsgPState = iota
	MsgFLine
	MsgHeaders
	MsgBodyInit
	MsgBodyRun
	MsgDone
)

func (s MsgPState) String() string {
	names := [...]string{
		MsgInit: "init", MsgFLine: "fline", MsgHeaders: "headers",
		MsgBodyInit: "body-init", MsgBodyRun: "body-run", MsgDone: "done",
	}
	if int(s) >= len(names) {
		return "?"
	}
	return names[s]
}

// Msg is one fully (or partially, mid-parse) decoded HTTP/1.x message:
// a request or a reply, according to FLine.Request(). Zero value is
// ready to parse the first message on a connection.
type Msg struct {
	FLine   FLine
	Headers HdrLst
	Body    BodyParser

	// decoded header values, populated once their header is seen.
	Conn        ConnFlags
	HasConn     bool
	ContentLen  uint32
	HasCLen     bool
	TrEnc       TrEncFlags
	HasTrEnc    bool
	Host        Str
	HostPort    Str
	HasHost     bool
	XFF         []Str
	HasXFF      bool
	ReqCC       ReqCacheControlVals
	HasReqCC    bool
	RespCC      RespCacheControlVals
	HasRespCC   bool
	ExpiresSecs int64
	HasExpires  bool
	KeepAlive   uint32
	HasKA       bool

	// Limits, when non-nil, bounds header-line length, raw-header count
	// and body size (see limits.go); applied to Headers/Body as soon as
	// parsing of each begins. A nil Limits (the zero value) is
	// unbounded, matching this package's historical behavior.
	Limits *Limits

	state MsgPState
	hst   hdrPState
	// Whether msg is a reply comes from FLine.Request(), which is only
	// meaningful once the first line is fully parsed.
}

// Reset prepares msg to parse a brand-new message (e.g. for the next
// request on a keep-alive, persistent connection - see "inherit_offset"
// in ParseMsg below for how pipelined requests share one input buffer).
// Limits is preserved across Reset, since it is connection-wide
// configuration rather than per-message state.
func (msg *Msg) Reset() {
	lim := msg.Limits
	*msg = Msg{Limits: lim}
}

// ParseMsg drives one HTTP message through first-line, headers and body
// framing. buf is the latest chunk of input (the same buffer may be
// reused across calls as long as off advances monotonically within it,
// or a new buffer may be passed after a POSTPONE - the parser never
// assumes buffer identity persists). off is where to resume within buf:
// 0 on the very first call for this connection, or the value this
// function last returned for a continuation, or (for the next message
// of a pipelined connection) the offset just past the previous
// message's end within the SAME buffer (inherit_offset, §4.6).
//
// Returns the offset reached in buf and a Verdict: POSTPONE (need more
// input, call again with msg unchanged plus a further buffer),
// PASS (msg is complete, the returned offset is where the next
// pipelined message would start in buf), or BLOCK (protocol violation;
// err is non-nil and is a *BlockError).
func ParseMsg(buf []byte, off int, msg *Msg) (int, Verdict, error) {
	i := off
	for {
		switch msg.state {
		case MsgInit:
			msg.Headers.Limits = msg.Limits
			msg.state = MsgFLine
			fallthrough
		case MsgFLine:
			n, err := ParseFLine(buf, i, &msg.FLine)
			i = n
			if err == ErrHdrMoreBytes {
				return i, POSTPONE, nil
			}
			if err != ErrHdrOk {
				return i, BLOCK, newBlockError(err, msg.state, 0, "", i)
			}
			msg.state = MsgHeaders
		case MsgHeaders:
			n, err := ParseHeaders(buf, i, &msg.Headers, &msg.hst)
			i = n
			switch err {
			case ErrHdrMoreValues:
				continue
			case ErrHdrMoreBytes:
				return i, POSTPONE, nil
			case ErrHdrEOH:
				if verr := msg.decodeHeaders(); verr != ErrHdrOk {
					return i, BLOCK, newBlockError(verr, msg.state, 0, "", i)
				}
				msg.state = MsgBodyInit
			default:
				return i, BLOCK, newBlockError(err, msg.state, 0, "", i)
			}
		case MsgBodyInit:
			chunked := msg.HasTrEnc && msg.TrEnc&TrEncChunked != 0
			haveCLen := msg.HasCLen && !chunked
			eofDelim := !msg.FLine.Request() && !chunked && !haveCLen
			var cl uint64
			if haveCLen {
				cl = uint64(msg.ContentLen)
			}
			if msg.FLine.Request() && !haveCLen && !chunked {
				// a request body needs an explicit length; with
				// neither Content-Length nor chunked framing there is
				// no body to read (GET/HEAD/POST with no declared
				// entity, per §4.5).
				msg.Body.Init(false, true, 0, false, msg.Limits)
			} else {
				msg.Body.Init(chunked, haveCLen, cl, eofDelim, msg.Limits)
			}
			msg.state = MsgBodyRun
		case MsgBodyRun:
			n, err := msg.Body.Parse(buf, i)
			i = n
			if err == ErrHdrMoreBytes {
				return i, POSTPONE, nil
			}
			if err != ErrHdrOk {
				return i, BLOCK, newBlockError(err, msg.state, 0, "", i)
			}
			msg.state = MsgDone
			return i, PASS, nil
		default:
			return i, BLOCK, newBlockError(ErrHdrBug, msg.state, 0, "", i)
		}
	}
}

// FinishEOF must be called when the underlying connection closes while
// a message is still in flight. It is only a valid way to complete a
// response with no Content-Length/chunked framing (BodyEOFRead); any
// other in-flight state means the message was truncated.
func (msg *Msg) FinishEOF() (Verdict, error) {
	if msg.state != MsgBodyRun {
		return BLOCK, newBlockError(ErrHdrTrunc, msg.state, 0, "", 0)
	}
	if err := msg.Body.FinishEOF(); err != ErrHdrOk {
		return BLOCK, newBlockError(err, msg.state, 0, "", 0)
	}
	msg.state = MsgDone
	return PASS, nil
}

// decodeHeaders resolves the curated header slots into their typed
// fields, once the header block is fully collected (§4.3/§4.4).
func (msg *Msg) decodeHeaders() ErrorHdr {
	h := &msg.Headers
	if h.Seen[HdrConnection] {
		f, err := ParseConnection(&h.Known[HdrConnection].Value)
		if err != ErrHdrOk {
			return err
		}
		msg.Conn, msg.HasConn = f, true
	}
	if h.Seen[HdrContentLength] {
		n, err := ParseContentLength(&h.Known[HdrContentLength].Value)
		if err != ErrHdrOk {
			return err
		}
		msg.ContentLen, msg.HasCLen = n, true
	}
	if h.Seen[HdrTransferEncoding] {
		f, err := ParseTransferEncoding(&h.Known[HdrTransferEncoding].Value)
		if err != ErrHdrOk {
			return err
		}
		msg.TrEnc, msg.HasTrEnc = f, true
	}
	if h.Seen[HdrHost] {
		if err := ParseHost(&h.Known[HdrHost].Value, &msg.Host, &msg.HostPort); err != ErrHdrOk {
			return err
		}
		msg.HasHost = true
	}
	if h.Seen[HdrXForwardedFor] {
		if err := ParseXForwardedFor(&h.Known[HdrXForwardedFor].Value, &msg.XFF); err != ErrHdrOk {
			return err
		}
		msg.HasXFF = true
	}
	if h.Seen[HdrCacheControl] {
		if msg.FLine.Request() {
			v, err := ParseReqCacheControl(&h.Known[HdrCacheControl].Value)
			if err != ErrHdrOk {
				return err
			}
			msg.ReqCC, msg.HasReqCC = v, true
		} else {
			v, err := ParseRespCacheControl(&h.Known[HdrCacheControl].Value)
			if err != ErrHdrOk {
				return err
			}
			msg.RespCC, msg.HasRespCC = v, true
		}
	}
	if h.Seen[HdrExpires] {
		secs, err := ParseExpires(&h.Known[HdrExpires].Value)
		if err != ErrHdrOk {
			return err
		}
		msg.ExpiresSecs, msg.HasExpires = secs, true
	}
	if h.Seen[HdrKeepAlive] {
		t, has, err := ParseKeepAlive(&h.Known[HdrKeepAlive].Value)
		if err != ErrHdrOk {
			return err
		}
		if has {
			msg.KeepAlive, msg.HasKA = t, true
		}
	}
	if msg.HasCLen && msg.HasTrEnc && msg.TrEnc&TrEncChunked != 0 {
		// both present: chunked framing wins per RFC 7230 §3.3.3 #3,
		// Content-Length is ignored for body-length purposes but is
		// still exposed on msg.ContentLen/HasCLen for inspection.
	}
	return ErrHdrOk
}
