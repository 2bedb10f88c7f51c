// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpwire

import (
	"github.com/elastic/go-ucfg"
	"github.com/elastic/go-ucfg/yaml"
)

// Limits holds the parser's configurable bounds, loaded via go-ucfg
// (the same config loader used across the rest of the stack for its
// CLI/YAML config). None of these change parsing semantics, only how
// much of a pathological input the parser is willing to absorb before
// giving up with BLOCK - see §7's resource-bound notes.
type Limits struct {
	// MaxHeaderLineLen bounds a single header name+value pair, 0 means
	// unbounded (not recommended in production).
	MaxHeaderLineLen uint32 `config:"max_header_line_len"`
	// MaxRawHeaders bounds the overflow table for unrecognized headers;
	// defaults to rawOverflowCap when zero.
	MaxRawHeaders uint32 `config:"max_raw_headers"`
	// MaxBodyBytes bounds a Content-Length/chunked body; 0 means
	// unbounded.
	MaxBodyBytes uint64 `config:"max_body_bytes"`
}

// DefaultLimits is a starting configuration a caller can override field
// by field: rawOverflowCap raw headers (the package's own cap), an
// 8192-byte header line (a nil Limits leaves lines unbounded) and an
// unbounded body.
func DefaultLimits() Limits {
	return Limits{
		MaxHeaderLineLen: 8192,
		MaxRawHeaders:    rawOverflowCap,
		MaxBodyBytes:     0,
	}
}

// LoadLimitsYAML parses a YAML config blob into Limits, applying
// DefaultLimits first so a partial document only overrides what it
// mentions.
func LoadLimitsYAML(doc []byte) (Limits, error) {
	lim := DefaultLimits()
	cfg, err := yaml.NewConfig(doc)
	if err != nil {
		return lim, err
	}
	if err := cfg.Unpack(&lim, ucfg.PathSep(".")); err != nil {
		return lim, err
	}
	return lim, nil
}
