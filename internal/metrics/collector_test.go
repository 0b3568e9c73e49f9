package metrics

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
)

func TestNewCollector(t *testing.T) {
	c := NewCollector()
	if c == nil {
		t.Fatalf("expected non-nil collector")
	}
	if len(c.Names()) != 0 {
		t.Fatalf("expected no series")
	}
}

func TestCollectorRecordAndSeries(t *testing.T) {
	c := NewCollector()
	c.Record("test_metric", 0, 10.0)
	c.Record("test_metric", 1, 20.0)
	c.Record("test_metric", 2, 30.0)

	points := c.Series("test_metric")
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[0].Value != 10.0 || points[2].RunIndex != 2 {
		t.Fatalf("unexpected points %+v", points)
	}

	// Series returns a copy.
	points[0].Value = 99
	if c.Series("test_metric")[0].Value != 10.0 {
		t.Fatalf("series should not alias internal storage")
	}
}

func TestSummarize(t *testing.T) {
	if Summarize(nil) != nil {
		t.Fatalf("expected nil aggregation for empty input")
	}

	values := []float64{5, 1, 4, 2, 3}
	agg := Summarize(values)
	if agg.Count != 5 || agg.Sum != 15 || agg.Min != 1 || agg.Max != 5 {
		t.Fatalf("unexpected aggregation %+v", agg)
	}
	if agg.Mean != 3 || agg.P50 != 3 {
		t.Fatalf("expected mean and p50 of 3, got %+v", agg)
	}
	if math.Abs(agg.P95-4.8) > 1e-9 {
		t.Fatalf("expected p95 4.8, got %f", agg.P95)
	}
	if values[0] != 5 {
		t.Fatalf("Summarize must not reorder its input")
	}

	one := Summarize([]float64{7})
	if one.P50 != 7 || one.P99 != 7 {
		t.Fatalf("single value percentiles should equal the value: %+v", one)
	}
}

func TestCollectorSummaryAndClear(t *testing.T) {
	c := NewCollector()
	RecordEvaluation(c, models.Evaluation{RunIndex: 0, Fitness: 1.5, Attempts: 1, Duration: 20 * time.Millisecond})
	RecordEvaluation(c, models.Evaluation{RunIndex: 1, Fitness: 0.5, Attempts: 3, Duration: 40 * time.Millisecond})
	RecordFailure(c, 2)

	summary := c.Summary()
	for _, name := range []string{MetricFitness, MetricDurationMs, MetricAttempts, MetricFailures} {
		if summary[name] == nil {
			t.Fatalf("missing aggregation for %s", name)
		}
	}
	if summary[MetricAttempts].Sum != 4 || summary[MetricDurationMs].Mean != 30 {
		t.Fatalf("unexpected aggregations: attempts %+v duration %+v", summary[MetricAttempts], summary[MetricDurationMs])
	}
	if summary[MetricFailures].Count != 1 {
		t.Fatalf("expected one failure, got %+v", summary[MetricFailures])
	}

	names := c.Names()
	if len(names) != 4 || names[0] != MetricDurationMs {
		t.Fatalf("expected sorted names, got %v", names)
	}

	c.Clear()
	if c.Aggregate(MetricFitness) != nil || len(c.Names()) != 0 {
		t.Fatalf("expected empty collector after Clear")
	}
}

func TestBestFitness(t *testing.T) {
	c := NewCollector()
	if _, _, ok := BestFitness(c); ok {
		t.Fatalf("expected no best run on an empty collector")
	}
	c.Record(MetricFitness, 0, -2)
	c.Record(MetricFitness, 1, -0.5)
	c.Record(MetricFitness, 2, -1)

	run, fit, ok := BestFitness(c)
	if !ok || run != 1 || fit != -0.5 {
		t.Fatalf("expected run 1 with -0.5, got %d %f %v", run, fit, ok)
	}
}

func TestCollectorConcurrentRecord(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(run int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Record("concurrent", run, float64(j))
			}
		}(i)
	}
	wg.Wait()

	if got := c.Aggregate("concurrent").Count; got != 1000 {
		t.Fatalf("expected 1000 points, got %d", got)
	}
}
