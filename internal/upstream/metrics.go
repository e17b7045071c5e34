package upstream

import (
	"sync/atomic"
	"time"
)

// Metrics tracks upstream call metrics
type Metrics struct {
	calls     int64
	errors    int64
	latency   int64 // Total latency in nanoseconds
	probes    int64
	uploads   int64
	purchases int64
}

var globalMetrics = &Metrics{}

// GetMetrics returns the current metrics snapshot
func GetMetrics() Metrics {
	return Metrics{
		calls:     atomic.LoadInt64(&globalMetrics.calls),
		errors:    atomic.LoadInt64(&globalMetrics.errors),
		latency:   atomic.LoadInt64(&globalMetrics.latency),
		probes:    atomic.LoadInt64(&globalMetrics.probes),
		uploads:   atomic.LoadInt64(&globalMetrics.uploads),
		purchases: atomic.LoadInt64(&globalMetrics.purchases),
	}
}

// ResetMetrics resets all metrics (useful for testing)
func ResetMetrics() {
	atomic.StoreInt64(&globalMetrics.calls, 0)
	atomic.StoreInt64(&globalMetrics.errors, 0)
	atomic.StoreInt64(&globalMetrics.latency, 0)
	atomic.StoreInt64(&globalMetrics.probes, 0)
	atomic.StoreInt64(&globalMetrics.uploads, 0)
	atomic.StoreInt64(&globalMetrics.purchases, 0)
}

func recordCall(duration time.Duration, err error) {
	atomic.AddInt64(&globalMetrics.calls, 1)
	atomic.AddInt64(&globalMetrics.latency, duration.Nanoseconds())
	if err != nil {
		atomic.AddInt64(&globalMetrics.errors, 1)
	}
}

func recordProbe()    { atomic.AddInt64(&globalMetrics.probes, 1) }
func recordUpload()   { atomic.AddInt64(&globalMetrics.uploads, 1) }
func recordPurchase() { atomic.AddInt64(&globalMetrics.purchases, 1) }

// Calls returns the number of upstream calls made.
func (m Metrics) Calls() int64 { return m.calls }

// Errors returns the number of failed upstream calls.
func (m Metrics) Errors() int64 { return m.errors }

// AverageLatency returns the average latency in milliseconds
func (m Metrics) AverageLatency() float64 {
	if m.calls == 0 {
		return 0
	}
	avgNs := float64(m.latency) / float64(m.calls)
	return avgNs / 1e6
}

// ErrorRate returns the error rate as a percentage
func (m Metrics) ErrorRate() float64 {
	if m.calls == 0 {
		return 0
	}
	return float64(m.errors) / float64(m.calls) * 100
}
