package cmdio

import (
	"sync/atomic"
)

// SessionMetrics contains atomic metrics for an instrument command session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type SessionMetrics struct {
	// WriteCount indicates the number of command lines written to the transport.
	WriteCount atomic.Uint64
	// QueryCount indicates the number of query round-trips completed.
	QueryCount atomic.Uint64
	// EmptyRetryCount indicates the total number of empty-reply re-queries.
	EmptyRetryCount atomic.Uint64
	// CommErrCount indicates the number of transport-level failures.
	CommErrCount atomic.Uint64
	// ValidationErrCount indicates the number of setter values rejected
	// before reaching the transport.
	ValidationErrCount atomic.Uint64
}

func (m *SessionMetrics) incWriteCount() {
	m.WriteCount.Add(1)
}

func (m *SessionMetrics) incQueryCount() {
	m.QueryCount.Add(1)
}

func (m *SessionMetrics) incEmptyRetryCount() {
	m.EmptyRetryCount.Add(1)
}

func (m *SessionMetrics) incCommErrCount() {
	m.CommErrCount.Add(1)
}

func (m *SessionMetrics) incValidationErrCount() {
	m.ValidationErrCount.Add(1)
}
