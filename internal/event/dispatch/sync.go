package dispatch

import (
	"sync/atomic"
	"time"
)

// SyncDispatcher executes handlers synchronously in the caller's goroutine.
// It provides panic recovery and keeps running statistics.
type SyncDispatcher struct {
	dispatched  atomic.Uint64
	panicked    atomic.Uint64
	totalTimeNs atomic.Int64
}

// NewSyncDispatcher creates a new synchronous dispatcher.
func NewSyncDispatcher() *SyncDispatcher {
	return &SyncDispatcher{}
}

// Dispatch executes fn synchronously.
// It blocks until fn returns or panics.
func (d *SyncDispatcher) Dispatch(fn func()) Result {
	d.dispatched.Add(1)

	result := execute(fn)

	d.totalTimeNs.Add(result.Duration.Nanoseconds())
	if result.Panicked {
		d.panicked.Add(1)
	}
	return result
}

// Stats returns dispatch statistics.
// Stats are read without a mutex, so values may be slightly inconsistent
// if stats are being updated concurrently.
func (d *SyncDispatcher) Stats() SyncDispatcherStats {
	dispatched := d.dispatched.Load()
	totalNs := d.totalTimeNs.Load()

	var avgNs int64
	if dispatched > 0 {
		avgNs = totalNs / int64(dispatched)
	}

	return SyncDispatcherStats{
		Dispatched:    dispatched,
		Panicked:      d.panicked.Load(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}

// SyncDispatcherStats contains statistics for a sync dispatcher.
type SyncDispatcherStats struct {
	// Dispatched is the total number of dispatch calls.
	Dispatched uint64

	// Panicked is the number of handlers that panicked.
	Panicked uint64

	// TotalDuration is the cumulative time spent in handlers.
	TotalDuration time.Duration

	// AvgDuration is the average handler execution time.
	AvgDuration time.Duration
}
