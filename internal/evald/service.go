// Package evald exposes a fitness pipeline to remote callers over gRPC and
// HTTP. Calls are serialized: one evaluation runs at a time.
package evald

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/metrics"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/store"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/logger"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
)

var (
	// ErrNoHistory is returned by History when no store is configured.
	ErrNoHistory = errors.New("evaluation history not configured")
	// ErrNoMetrics is returned by Metrics when no collector is set.
	ErrNoMetrics = errors.New("metrics not available")
	// ErrNotFound is returned by Lookup for an unknown evaluation id.
	ErrNotFound = errors.New("evaluation not found")
)

// Evaluator is the pipeline surface the service drives.
type Evaluator interface {
	EvaluateRecord(ctx context.Context, genome models.Genome) (models.Evaluation, error)
	RunCounter() int
	DescriptorSize() int
	FeatureSpaceSize() int
}

// Description reports the shape of the search space.
type Description struct {
	DescriptorSize   int `json:"descriptor_size"`
	FeatureSpaceSize int `json:"feature_space_size"`
	RunCounter       int `json:"run_counter"`
}

// Service guards one Evaluator with a mutex.
type Service struct {
	mu      sync.Mutex
	eval    Evaluator
	store   store.Store
	metrics *metrics.Collector
	log     *slog.Logger
}

// NewService wraps eval. st may be nil, in which case History is unavailable.
func NewService(eval Evaluator, st store.Store, log *slog.Logger) *Service {
	if log == nil {
		log = logger.Default
	}
	return &Service{eval: eval, store: st, log: log}
}

// Evaluate runs one evaluation, waiting for any in-flight call to finish.
func (s *Service) Evaluate(ctx context.Context, genome models.Genome) (models.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return models.Evaluation{}, err
	}
	eval, err := s.eval.EvaluateRecord(ctx, genome)
	if err != nil {
		s.log.Warn("remote evaluation failed", "genes", len(genome), "error", err)
		return models.Evaluation{}, err
	}
	return eval, nil
}

// Describe returns the current sizes and run counter.
func (s *Service) Describe() Description {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Description{
		DescriptorSize:   s.eval.DescriptorSize(),
		FeatureSpaceSize: s.eval.FeatureSpaceSize(),
		RunCounter:       s.eval.RunCounter(),
	}
}

// History lists recorded evaluations, oldest run first.
func (s *Service) History(ctx context.Context, limit int) ([]models.Evaluation, error) {
	if s.store == nil {
		return nil, ErrNoHistory
	}
	return s.store.List(ctx, limit)
}

// Lookup returns the recorded evaluation with the given id.
func (s *Service) Lookup(ctx context.Context, id string) (models.Evaluation, error) {
	if s.store == nil {
		return models.Evaluation{}, ErrNoHistory
	}
	eval, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Evaluation{}, err
	}
	if !ok {
		return models.Evaluation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return eval, nil
}

// SetMetrics sets the collector reported by Metrics.
func (s *Service) SetMetrics(c *metrics.Collector) {
	s.metrics = c
}

// MetricsSummary aggregates the collected series and reports the best run.
type MetricsSummary struct {
	Series      map[string]*metrics.Aggregation `json:"series"`
	BestRun     int                             `json:"best_run"`
	BestFitness float64                         `json:"best_fitness"`
	HasBest     bool                            `json:"has_best"`
	UptimeMs    int64                           `json:"uptime_ms"`
}

// Metrics summarizes the collector set with SetMetrics.
func (s *Service) Metrics() (MetricsSummary, error) {
	if s.metrics == nil {
		return MetricsSummary{}, ErrNoMetrics
	}
	run, best, ok := metrics.BestFitness(s.metrics)
	return MetricsSummary{
		Series:      s.metrics.Summary(),
		BestRun:     run,
		BestFitness: best,
		HasBest:     ok,
		UptimeMs:    s.metrics.Uptime().Milliseconds(),
	}, nil
}
