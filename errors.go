// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpwire

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorHdr is the internal, allocation-free error code used by every
// sub-parser. It mirrors the teacher's ErrorHdr: the hot path never
// builds an error value, it just compares/returns small integers.
type ErrorHdr uint8

// Sub-parser and driver error codes. ErrHdrOk (0) means "continue, no
// error". ErrHdrMoreBytes means "suspend, call again with more input".
// Everything else is terminal for the current message.
const (
	ErrHdrOk ErrorHdr = iota
	ErrHdrMoreBytes
	ErrHdrEOH         // end of headers found
	ErrHdrEmpty       // empty header line / empty token
	ErrHdrMoreValues  // one value parsed, more follow (list headers)
	ErrHdrBadChar     // character outside the allowed alphabet
	ErrHdrNumTooBig   // decimal/hex accumulator would overflow
	ErrHdrValNotNumber
	ErrHdrNoCLen
	ErrHdrTrunc    // input ended mid-message and no more data is coming
	ErrHdrTooBig   // a configured Limits bound was exceeded
	ErrHdrBug      // internal inconsistency - should never happen
)

var errHdrStr = [...]string{
	ErrHdrOk:           "ok",
	ErrHdrMoreBytes:    "more bytes needed",
	ErrHdrEOH:          "end of headers",
	ErrHdrEmpty:        "empty",
	ErrHdrMoreValues:   "more values follow",
	ErrHdrBadChar:      "invalid character",
	ErrHdrNumTooBig:    "number too big",
	ErrHdrValNotNumber: "value is not a number",
	ErrHdrNoCLen:       "no content-length",
	ErrHdrTrunc:        "truncated message",
	ErrHdrTooBig:       "configured limit exceeded",
	ErrHdrBug:          "internal parser bug",
}

// Error implements the error interface, so an ErrorHdr can be used
// directly wherever a Go error is expected (e.g. wrapped by pkg/errors
// at the package boundary).
func (e ErrorHdr) Error() string {
	if int(e) >= len(errHdrStr) {
		return "unknown httpwire error"
	}
	return errHdrStr[e]
}

// Verdict is the three-valued outcome of the top-level driver, see §7.
type Verdict uint8

const (
	// POSTPONE: buffer exhausted mid-message, call Parse again with the
	// next buffer.
	POSTPONE Verdict = iota
	// PASS: this buffer completed the message.
	PASS
	// BLOCK: protocol error, the connection should be dropped.
	BLOCK
)

func (v Verdict) String() string {
	switch v {
	case POSTPONE:
		return "POSTPONE"
	case PASS:
		return "PASS"
	case BLOCK:
		return "BLOCK"
	default:
		return "INVALID"
	}
}

// BlockError wraps the ErrorHdr that caused a BLOCK verdict together with
// the driver state and input offset at the time, for observability
// (see §7 "a structured log entry per BLOCK is appropriate"). ParseMsg
// and Msg.FinishEOF leave Inner at 0 and HdrName empty. It is only
// constructed on the BLOCK path, never on success.
type BlockError struct {
	cause   error
	State   MsgPState
	Inner   uint8
	HdrName string
	Offset  int
}

func (b *BlockError) Error() string {
	return fmt.Sprintf("httpwire: block at offset %d (state %d, inner %d, hdr %q): %v",
		b.Offset, b.State, b.Inner, b.HdrName, b.cause)
}

func (b *BlockError) Unwrap() error { return b.cause }

func newBlockError(cause ErrorHdr, state MsgPState, inner uint8, hdrName string, offset int) *BlockError {
	return &BlockError{
		cause:   errors.WithStack(cause),
		State:   state,
		Inner:   inner,
		HdrName: hdrName,
		Offset:  offset,
	}
}
