// Package metrics keeps per-run series for an experiment and aggregates them.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// Point is one recorded value.
type Point struct {
	RunIndex  int       `json:"run_index"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Aggregation summarizes a series.
type Aggregation struct {
	Count int64   `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
}

// Collector collects named series during an experiment
type Collector struct {
	mu sync.RWMutex

	startTime time.Time
	series    map[string][]Point
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		series:    make(map[string][]Point),
	}
}

// Record appends value for run to the named series
func (c *Collector) Record(name string, run int, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series[name] = append(c.series[name], Point{RunIndex: run, Value: value, Timestamp: time.Now()})
}

// Series returns a copy of the named series in recording order
func (c *Collector) Series(name string) []Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Point(nil), c.series[name]...)
}

// Aggregate returns statistics for the named series, or nil when empty
func (c *Collector) Aggregate(name string) *Aggregation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return aggregatePoints(c.series[name])
}

// Summary aggregates every non-empty series
func (c *Collector) Summary() map[string]*Aggregation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]*Aggregation, len(c.series))
	for name, points := range c.series {
		if agg := aggregatePoints(points); agg != nil {
			out[name] = agg
		}
	}
	return out
}

// Names returns the recorded series names, sorted
func (c *Collector) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.series))
	for name := range c.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Uptime is the time since the collector was created or cleared
func (c *Collector) Uptime() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Since(c.startTime)
}

// Clear drops all series
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series = make(map[string][]Point)
	c.startTime = time.Now()
}

func aggregatePoints(points []Point) *Aggregation {
	if len(points) == 0 {
		return nil
	}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return Summarize(values)
}

// Summarize calculates aggregated statistics over values. It returns nil for
// an empty slice and does not modify values.
func Summarize(values []float64) *Aggregation {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	count := int64(len(sorted))

	return &Aggregation{
		Count: count,
		Sum:   sum,
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Mean:  sum / float64(count),
		P50:   calculatePercentile(sorted, 0.50),
		P95:   calculatePercentile(sorted, 0.95),
		P99:   calculatePercentile(sorted, 0.99),
	}
}

// calculatePercentile interpolates the percentile p from a sorted slice
func calculatePercentile(sortedValues []float64, p float64) float64 {
	if len(sortedValues) == 0 {
		return 0.0
	}
	if len(sortedValues) == 1 {
		return sortedValues[0]
	}

	index := p * float64(len(sortedValues)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sortedValues) {
		return sortedValues[len(sortedValues)-1]
	}

	weight := index - float64(lower)
	return sortedValues[lower]*(1-weight) + sortedValues[upper]*weight
}
