package metrics

import "github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"

// Common metric names
const (
	MetricFitness    = "fitness"
	MetricDurationMs = "evaluation_duration_ms"
	MetricAttempts   = "simulator_attempts"
	MetricFailures   = "evaluation_failures"
)

// RecordEvaluation records fitness, duration and attempt count of a
// successful evaluation.
func RecordEvaluation(c *Collector, eval models.Evaluation) {
	c.Record(MetricFitness, eval.RunIndex, eval.Fitness)
	c.Record(MetricDurationMs, eval.RunIndex, float64(eval.Duration.Milliseconds()))
	c.Record(MetricAttempts, eval.RunIndex, float64(eval.Attempts))
}

// RecordFailure counts a failed evaluation at run.
func RecordFailure(c *Collector, run int) {
	c.Record(MetricFailures, run, 1)
}

// BestFitness returns the highest recorded fitness and its run, or false when
// nothing has been recorded.
func BestFitness(c *Collector) (run int, fitness float64, ok bool) {
	for _, p := range c.Series(MetricFitness) {
		if !ok || p.Value > fitness {
			run, fitness, ok = p.RunIndex, p.Value, true
		}
	}
	return run, fitness, ok
}
