package edgestream

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Implementations must be safe for concurrent use when used with ReadShards.
type MetricsCollector interface {
	// RecordSource is called when a source has been drained or abandoned.
	// bytes counts the raw (possibly compressed) bytes read from it.
	RecordSource(locator string, bytes int64, duration time.Duration, err error)

	// RecordRead is called after each Read with the records and edges decoded.
	RecordRead(nodes uint64, edges int, duration time.Duration, err error)

	// RecordSelfLoop is called for every self-loop encountered.
	RecordSelfLoop()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSource(string, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordRead(uint64, int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordSelfLoop()                                  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SourceCount      atomic.Int64
	SourceErrors     atomic.Int64
	SourceBytes      atomic.Int64
	SourceTotalNanos atomic.Int64
	ReadCount        atomic.Int64
	ReadErrors       atomic.Int64
	ReadNodes        atomic.Int64
	ReadEdges        atomic.Int64
	ReadTotalNanos   atomic.Int64
	SelfLoops        atomic.Int64
}

// RecordSource implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSource(_ string, bytes int64, duration time.Duration, err error) {
	b.SourceCount.Add(1)
	b.SourceBytes.Add(bytes)
	b.SourceTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SourceErrors.Add(1)
	}
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(nodes uint64, edges int, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadNodes.Add(int64(nodes))
	b.ReadEdges.Add(int64(edges))
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
	}
}

// RecordSelfLoop implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSelfLoop() {
	b.SelfLoops.Add(1)
}

// MetricsStats is a point-in-time snapshot of BasicMetricsCollector.
type MetricsStats struct {
	SourceCount    int64
	SourceErrors   int64
	SourceBytes    int64
	SourceAvgNanos int64
	ReadCount      int64
	ReadErrors     int64
	ReadNodes      int64
	ReadEdges      int64
	ReadAvgNanos   int64
	SelfLoops      int64
	BytesPerSecond float64
}

// GetStats returns a snapshot of the collected metrics.
func (b *BasicMetricsCollector) GetStats() MetricsStats {
	s := MetricsStats{
		SourceCount:  b.SourceCount.Load(),
		SourceErrors: b.SourceErrors.Load(),
		SourceBytes:  b.SourceBytes.Load(),
		ReadCount:    b.ReadCount.Load(),
		ReadErrors:   b.ReadErrors.Load(),
		ReadNodes:    b.ReadNodes.Load(),
		ReadEdges:    b.ReadEdges.Load(),
		SelfLoops:    b.SelfLoops.Load(),
	}

	sourceNanos := b.SourceTotalNanos.Load()
	if s.SourceCount > 0 {
		s.SourceAvgNanos = sourceNanos / s.SourceCount
	}
	if sourceNanos > 0 {
		s.BytesPerSecond = float64(s.SourceBytes) / time.Duration(sourceNanos).Seconds()
	}
	if s.ReadCount > 0 {
		s.ReadAvgNanos = b.ReadTotalNanos.Load() / s.ReadCount
	}
	return s
}
