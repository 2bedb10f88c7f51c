// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpwire

// ReqCacheControl holds a parsed request Cache-Control value, grounded
// on tempesta_fw's __req_parse_cache_control.
type ReqCacheControl uint16

const (
	ReqCCNoCache ReqCacheControl = 1 << iota
	ReqCCNoStore
	ReqCCNoTransform
	ReqCCMaxAge
	ReqCCMaxStale
	ReqCCMinFresh
	// TFW_HTTP_CC_NO_OIC is the original (preserved, §9) name for the
	// only-if-cached flag: it was introduced as a negation of a planned
	// "OIC" positive flag that was never added, leaving a name that
	// reads like its own opposite. Kept verbatim, not renamed.
	ReqCCNoOIC
)

// ReqCacheControlVals carries the integer parameters alongside the flags
// above (MaxAge/MinFresh are always present when their flag is set;
// MaxStale's value is optional even when ReqCCMaxStale is set, exactly
// like the bare "max-stale" directive in RFC 7234).
type ReqCacheControlVals struct {
	Flags         ReqCacheControl
	MaxAge        uint32
	MaxStale      uint32
	MaxStaleBare  bool
	MinFresh      uint32
}

// ParseReqCacheControl parses a request Cache-Control header value.
func ParseReqCacheControl(v *Str) (ReqCacheControlVals, ErrorHdr) {
	var out ReqCacheControlVals
	ok := true
	forEachToken(v, func(tok []byte) {
		if len(tok) == 0 {
			ok = false
			return
		}
		name, val, hasVal := splitParam(tok)
		switch {
		case foldEqual(name, []byte("no-cache")):
			out.Flags |= ReqCCNoCache
		case foldEqual(name, []byte("no-store")):
			out.Flags |= ReqCCNoStore
		case foldEqual(name, []byte("no-transform")):
			out.Flags |= ReqCCNoTransform
		case foldEqual(name, []byte("only-if-cached")):
			out.Flags |= ReqCCNoOIC
		case foldEqual(name, []byte("max-age")):
			n, e := parseParamUint(val, hasVal)
			if e != ErrHdrOk {
				ok = false
				return
			}
			out.Flags |= ReqCCMaxAge
			out.MaxAge = n
		case foldEqual(name, []byte("max-stale")):
			out.Flags |= ReqCCMaxStale
			if hasVal {
				n, e := parseParamUint(val, hasVal)
				if e != ErrHdrOk {
					ok = false
					return
				}
				out.MaxStale = n
			} else {
				out.MaxStaleBare = true
			}
		case foldEqual(name, []byte("min-fresh")):
			n, e := parseParamUint(val, hasVal)
			if e != ErrHdrOk {
				ok = false
				return
			}
			out.Flags |= ReqCCMinFresh
			out.MinFresh = n
		default:
			// unrecognized cache directive: accepted and ignored, per
			// RFC 7234's extension-token allowance.
		}
	})
	if !ok {
		return out, ErrHdrBadChar
	}
	return out, ErrHdrOk
}

// RespCacheControl holds a parsed response Cache-Control value, grounded
// on tempesta_fw's __resp_parse_cache_control.
type RespCacheControl uint16

const (
	RespCCNoCache RespCacheControl = 1 << iota
	RespCCNoStore
	RespCCNoTransform
	RespCCMustRevalidate
	RespCCProxyRevalidate
	RespCCMaxAge
	RespCCSMaxAge
	// RespCCPublic is set by BOTH the "public" and "private" directives.
	//
	// DESIGN NOTE (preserved bug, §9): this is a direct port of
	// tempesta_fw's __resp_parse_cache_control, which assigns
	// TFW_HTTP_CC_PUBLIC to both tokens - "private" never gets its own
	// distinct flag. Downstream code that branches on RespCCPublic to
	// decide cacheability by a shared cache is therefore wrong for
	// "private" responses, exactly as in the original. Not fixed here.
	RespCCPublic
)

type RespCacheControlVals struct {
	Flags  RespCacheControl
	MaxAge uint32
	SMaxAge uint32
}

// ParseRespCacheControl parses a response Cache-Control header value.
func ParseRespCacheControl(v *Str) (RespCacheControlVals, ErrorHdr) {
	var out RespCacheControlVals
	ok := true
	forEachToken(v, func(tok []byte) {
		if len(tok) == 0 {
			ok = false
			return
		}
		name, val, hasVal := splitParam(tok)
		switch {
		case foldEqual(name, []byte("no-cache")):
			out.Flags |= RespCCNoCache
		case foldEqual(name, []byte("no-store")):
			out.Flags |= RespCCNoStore
		case foldEqual(name, []byte("no-transform")):
			out.Flags |= RespCCNoTransform
		case foldEqual(name, []byte("must-revalidate")):
			out.Flags |= RespCCMustRevalidate
		case foldEqual(name, []byte("proxy-revalidate")):
			out.Flags |= RespCCProxyRevalidate
		case foldEqual(name, []byte("public")):
			out.Flags |= RespCCPublic
		case foldEqual(name, []byte("private")):
			out.Flags |= RespCCPublic // bug preserved, see const doc above
		case foldEqual(name, []byte("max-age")):
			n, e := parseParamUint(val, hasVal)
			if e != ErrHdrOk {
				ok = false
				return
			}
			out.Flags |= RespCCMaxAge
			out.MaxAge = n
		case foldEqual(name, []byte("s-maxage")):
			n, e := parseParamUint(val, hasVal)
			if e != ErrHdrOk {
				ok = false
				return
			}
			out.Flags |= RespCCSMaxAge
			out.SMaxAge = n
		default:
		}
	})
	if !ok {
		return out, ErrHdrBadChar
	}
	return out, ErrHdrOk
}

// splitParam splits a "name" or "name=value" cache-control token.
func splitParam(tok []byte) (name, val []byte, hasVal bool) {
	for i, c := range tok {
		if c == '=' {
			v := tok[i+1:]
			if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
				v = v[1 : len(v)-1]
			}
			return tok[:i], v, true
		}
	}
	return tok, nil, false
}

func parseParamUint(val []byte, hasVal bool) (uint32, ErrorHdr) {
	if !hasVal || len(val) == 0 {
		return 0, ErrHdrValNotNumber
	}
	var carry Str
	var acc uint32
	_, err := parseDecimal(&carry, val, 0, isWSOnly, &acc)
	if err != ErrHdrMoreBytes {
		return 0, ErrHdrValNotNumber
	}
	return acc, ErrHdrOk
}
