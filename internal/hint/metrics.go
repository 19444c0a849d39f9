package hint

import (
	"sync"
	"time"
)

// DefaultMetricsWindow bounds the rolling sample window.
const DefaultMetricsWindow = 500

// Sample is one recorded hint resolution.
type Sample struct {
	Source  Source
	Latency time.Duration
	Tokens  int
	At      time.Time
}

// SourceStat aggregates the samples for one tier.
type SourceStat struct {
	Count      int
	AvgLatency time.Duration
	Tokens     int
}

// Metrics is a bounded rolling window of resolution samples. Record is
// non-blocking: samples go through a buffered channel and are dropped
// when the buffer is full, so the response path never waits on readers.
type Metrics struct {
	mu     sync.Mutex
	ring   []Sample
	next   int
	filled bool

	ch chan Sample
}

// NewMetrics creates a Metrics window. A non-positive size selects the
// default.
func NewMetrics(size int) *Metrics {
	if size <= 0 {
		size = DefaultMetricsWindow
	}
	return &Metrics{
		ring: make([]Sample, size),
		ch:   make(chan Sample, 64),
	}
}

// Record adds a sample without blocking. Under reader starvation the
// sample is dropped rather than delaying the caller.
func (m *Metrics) Record(s Sample) {
	select {
	case m.ch <- s:
	default:
	}
}

// flush moves buffered samples into the ring. Caller holds mu.
func (m *Metrics) flush() {
	for {
		select {
		case s := <-m.ch:
			m.ring[m.next] = s
			m.next++
			if m.next == len(m.ring) {
				m.next = 0
				m.filled = true
			}
		default:
			return
		}
	}
}

// Snapshot returns the window's samples, oldest first.
func (m *Metrics) Snapshot() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flush()

	if !m.filled {
		out := make([]Sample, m.next)
		copy(out, m.ring[:m.next])
		return out
	}
	out := make([]Sample, 0, len(m.ring))
	out = append(out, m.ring[m.next:]...)
	out = append(out, m.ring[:m.next]...)
	return out
}

// BySource aggregates the current window per tier.
func (m *Metrics) BySource() map[Source]SourceStat {
	stats := make(map[Source]SourceStat)
	for _, s := range m.Snapshot() {
		st := stats[s.Source]
		st.Count++
		st.Tokens += s.Tokens
		st.AvgLatency += s.Latency
		stats[s.Source] = st
	}
	for src, st := range stats {
		st.AvgLatency /= time.Duration(st.Count)
		stats[src] = st
	}
	return stats
}
