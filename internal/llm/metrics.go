package llm

import (
	"sync"
	"time"
)

const latencyWindow = 100

// ProviderStats is a point-in-time view of one provider's calls
type ProviderStats struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	Tokens       int64   `json:"tokens"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	Breaker      string  `json:"breaker,omitempty"`
}

// MetricsCollector counts completion calls per provider
type MetricsCollector struct {
	requests  map[string]int64
	errors    map[string]int64
	tokens    map[string]int64
	latencies map[string][]time.Duration
	mu        sync.RWMutex
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		requests:  make(map[string]int64),
		errors:    make(map[string]int64),
		tokens:    make(map[string]int64),
		latencies: make(map[string][]time.Duration),
	}
}

// RecordRequest records one call and its outcome
func (mc *MetricsCollector) RecordRequest(provider string, success bool, latency time.Duration, tokens int) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.requests[provider]++
	if !success {
		mc.errors[provider]++
	}
	mc.tokens[provider] += int64(tokens)

	l := append(mc.latencies[provider], latency)
	if len(l) > latencyWindow {
		l = l[len(l)-latencyWindow:]
	}
	mc.latencies[provider] = l
}

// Snapshot returns per-provider stats
func (mc *MetricsCollector) Snapshot() map[string]ProviderStats {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	out := make(map[string]ProviderStats, len(mc.requests))
	for provider, n := range mc.requests {
		stats := ProviderStats{
			Requests: n,
			Errors:   mc.errors[provider],
			Tokens:   mc.tokens[provider],
		}
		if l := mc.latencies[provider]; len(l) > 0 {
			var total time.Duration
			for _, d := range l {
				total += d
			}
			stats.AvgLatencyMs = float64(total.Milliseconds()) / float64(len(l))
		}
		out[provider] = stats
	}
	return out
}
