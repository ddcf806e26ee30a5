package api

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// Metrics holds lightweight counters for HTTP activity.
type Metrics struct {
	TotalRequests atomic.Int64
	TotalRetries  atomic.Int64
	Failures      atomic.Int64 // transport errors, not HTTP statuses

	ReadRequests  atomic.Int64 // GET
	WriteRequests atomic.Int64 // POST/PUT/PATCH/DELETE

	mu        sync.Mutex
	opCounts  map[string]int64
	status2xx int64
	status4xx int64
	status429 int64
	status5xx int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics { return &Metrics{opCounts: make(map[string]int64)} }

// IncRequest increments per-operation and total request counters.
func (m *Metrics) IncRequest(op, method string) {
	m.TotalRequests.Add(1)
	switch strings.ToUpper(method) {
	case http.MethodGet:
		m.ReadRequests.Add(1)
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		m.WriteRequests.Add(1)
	}
	if op == "" {
		op = "_untagged_"
	}
	m.mu.Lock()
	m.opCounts[op]++
	m.mu.Unlock()
}

// IncRetry increments the retry counter.
func (m *Metrics) IncRetry() { m.TotalRetries.Add(1) }

// IncFailure counts a transport failure.
func (m *Metrics) IncFailure() { m.Failures.Add(1) }

// IncStatus tracks status buckets.
func (m *Metrics) IncStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case code == http.StatusTooManyRequests:
		m.status429++
	case code >= 200 && code < 300:
		m.status2xx++
	case code >= 400 && code < 500:
		m.status4xx++
	case code >= 500:
		m.status5xx++
	}
}

// MetricsSnapshot is a read-only copy of metrics state.
type MetricsSnapshot struct {
	TotalRequests int64
	TotalRetries  int64
	Failures      int64
	ReadRequests  int64
	WriteRequests int64
	OpCounts      map[string]int64
	Status2xx     int64
	Status4xx     int64
	Status429     int64
	Status5xx     int64
}

// Failed counts requests that did not end in 2xx: transport failures and
// 4xx/5xx answers.
func (s MetricsSnapshot) Failed() int64 {
	return s.Failures + s.Status4xx + s.Status429 + s.Status5xx
}

// Snapshot returns a copy of the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	ops := make(map[string]int64, len(m.opCounts))
	for k, v := range m.opCounts {
		ops[k] = v
	}
	return MetricsSnapshot{
		TotalRequests: m.TotalRequests.Load(),
		TotalRetries:  m.TotalRetries.Load(),
		Failures:      m.Failures.Load(),
		ReadRequests:  m.ReadRequests.Load(),
		WriteRequests: m.WriteRequests.Load(),
		OpCounts:      ops,
		Status2xx:     m.status2xx,
		Status4xx:     m.status4xx,
		Status429:     m.status429,
		Status5xx:     m.status5xx,
	}
}
