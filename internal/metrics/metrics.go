package metrics

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Metrics tallies counters, byte volumes and timings for a single run. It is
// not safe for concurrent use.
type Metrics struct {
	counters map[string]int64
	bytes    map[string]uint64
	timings  map[string]time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		bytes:    make(map[string]uint64),
		timings:  make(map[string]time.Duration),
	}
}

// NoMetrics returns a Metrics that discards everything.
func NoMetrics() *Metrics {
	return &Metrics{}
}

// Record starts a timer for metricName; calling the returned function stops it.
func (x *Metrics) Record(metricName string) func() error {
	if x.timings == nil {
		return func() error { return nil }
	}

	start := time.Now()
	return func() error {
		x.timings[metricName] += time.Since(start)
		return nil
	}
}

func (x *Metrics) Increment(metricName string) error {
	if x.counters != nil {
		x.counters[metricName]++
	}

	return nil
}

func (x *Metrics) AddBytes(metricName string, n int64) {
	if x.bytes != nil && n > 0 {
		x.bytes[metricName] += uint64(n)
	}
}

func (x *Metrics) Count(metricName string) int64 {
	return x.counters[metricName]
}

func (x *Metrics) Bytes(metricName string) uint64 {
	return x.bytes[metricName]
}

func (x *Metrics) Duration(metricName string) time.Duration {
	return x.timings[metricName]
}

// Log writes one summary line with every metric recorded so far.
func (x *Metrics) Log(logger *zap.Logger) {
	if x.counters == nil {
		return
	}

	fields := make([]zap.Field, 0, len(x.counters)+len(x.bytes)+len(x.timings))
	for _, name := range sortedKeys(x.counters) {
		fields = append(fields, zap.Int64(name, x.counters[name]))
	}
	for _, name := range sortedKeys(x.bytes) {
		fields = append(fields, zap.String(name, humanize.Bytes(x.bytes[name])))
	}
	for _, name := range sortedKeys(x.timings) {
		fields = append(fields, zap.Duration(name, x.timings[name]))
	}

	logger.Info("Run summary", fields...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
