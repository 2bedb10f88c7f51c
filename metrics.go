// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpwire

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the counters this package exposes for operational
// visibility, see §7. Register with a prometheus.Registerer of the
// caller's choosing; a nil *Metrics is safe to use (all methods become
// no-ops).
type Metrics struct {
	Verdicts   *prometheus.CounterVec
	BodyBytes  prometheus.Counter
	BlockCause *prometheus.CounterVec
}

// NewMetrics builds and registers a Metrics set under reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "httpwire",
			Name:      "verdicts_total",
			Help:      "Parser verdicts by outcome (postpone/pass/block).",
		}, []string{"verdict"}),
		BodyBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "httpwire",
			Name:      "body_bytes_total",
			Help:      "Total message body bytes parsed.",
		}),
		BlockCause: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "httpwire",
			Name:      "block_cause_total",
			Help:      "BLOCK verdicts by underlying ErrorHdr cause.",
		}, []string{"cause"}),
	}
	reg.MustRegister(m.Verdicts, m.BodyBytes, m.BlockCause)
	return m
}

// Observe records one ParseMsg outcome.
func (m *Metrics) Observe(v Verdict, err error) {
	if m == nil {
		return
	}
	m.Verdicts.WithLabelValues(v.String()).Inc()
	if v == BLOCK {
		cause := "unknown"
		if be, ok := err.(*BlockError); ok {
			cause = ErrorHdr(0).causeName(be.cause)
		}
		m.BlockCause.WithLabelValues(cause).Inc()
	}
}

// AddBodyBytes records n more body bytes having been parsed.
func (m *Metrics) AddBodyBytes(n uint64) {
	if m == nil {
		return
	}
	m.BodyBytes.Add(float64(n))
}

// causeName recovers a stable label from a (possibly stack-wrapped)
// BlockError cause, falling back to the generic error string.
func (ErrorHdr) causeName(cause error) string {
	type causer interface{ Cause() error }
	for cause != nil {
		if eh, ok := cause.(ErrorHdr); ok {
			return eh.Error()
		}
		c, ok := cause.(causer)
		if !ok {
			break
		}
		cause = c.Cause()
	}
	return "unknown"
}
