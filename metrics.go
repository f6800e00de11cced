package doublets

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems;
// metric.PrometheusCollector is a ready-made Prometheus implementation.
type MetricsCollector interface {
	// RecordCreate is called after each create operation.
	RecordCreate(duration time.Duration, err error)

	// RecordUpdate is called after each update operation.
	RecordUpdate(duration time.Duration, err error)

	// RecordDelete is called after each delete operation.
	RecordDelete(duration time.Duration, err error)

	// RecordCount is called after each count query.
	RecordCount(duration time.Duration)

	// RecordEach is called after each iteration with the number of visitor calls.
	RecordEach(visited int, duration time.Duration, err error)

	// RecordGrow is called when the slot table region grows.
	RecordGrow(oldBytes, newBytes int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCreate(time.Duration, error)    {}
func (NoopMetricsCollector) RecordUpdate(time.Duration, error)    {}
func (NoopMetricsCollector) RecordDelete(time.Duration, error)    {}
func (NoopMetricsCollector) RecordCount(time.Duration)            {}
func (NoopMetricsCollector) RecordEach(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordGrow(int, int)                  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CreateCount      atomic.Int64
	CreateErrors     atomic.Int64
	CreateTotalNanos atomic.Int64
	UpdateCount      atomic.Int64
	UpdateErrors     atomic.Int64
	DeleteCount      atomic.Int64
	DeleteErrors     atomic.Int64
	CountCount       atomic.Int64
	EachCount        atomic.Int64
	EachErrors       atomic.Int64
	EachVisited      atomic.Int64
	EachTotalNanos   atomic.Int64
	GrowCount        atomic.Int64
	CapacityBytes    atomic.Int64
}

// RecordCreate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCreate(duration time.Duration, err error) {
	b.CreateCount.Add(1)
	b.CreateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CreateErrors.Add(1)
	}
}

// RecordUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpdate(_ time.Duration, err error) {
	b.UpdateCount.Add(1)
	if err != nil {
		b.UpdateErrors.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(_ time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordCount implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCount(time.Duration) {
	b.CountCount.Add(1)
}

// RecordEach implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEach(visited int, duration time.Duration, err error) {
	b.EachCount.Add(1)
	b.EachVisited.Add(int64(visited))
	b.EachTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EachErrors.Add(1)
	}
}

// RecordGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrow(_, newBytes int) {
	b.GrowCount.Add(1)
	b.CapacityBytes.Store(int64(newBytes))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CreateCount:    b.CreateCount.Load(),
		CreateErrors:   b.CreateErrors.Load(),
		CreateAvgNanos: avg(b.CreateTotalNanos.Load(), b.CreateCount.Load()),
		UpdateCount:    b.UpdateCount.Load(),
		UpdateErrors:   b.UpdateErrors.Load(),
		DeleteCount:    b.DeleteCount.Load(),
		DeleteErrors:   b.DeleteErrors.Load(),
		CountCount:     b.CountCount.Load(),
		EachCount:      b.EachCount.Load(),
		EachErrors:     b.EachErrors.Load(),
		EachVisited:    b.EachVisited.Load(),
		EachAvgNanos:   avg(b.EachTotalNanos.Load(), b.EachCount.Load()),
		GrowCount:      b.GrowCount.Load(),
		CapacityBytes:  b.CapacityBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CreateCount    int64
	CreateErrors   int64
	CreateAvgNanos int64
	UpdateCount    int64
	UpdateErrors   int64
	DeleteCount    int64
	DeleteErrors   int64
	CountCount     int64
	EachCount      int64
	EachErrors     int64
	EachVisited    int64
	EachAvgNanos   int64
	GrowCount      int64
	CapacityBytes  int64
}
