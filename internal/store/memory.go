package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
	"github.com/google/uuid"
)

// MemoryStore keeps evaluations in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	evals map[string]models.Evaluation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		evals: make(map[string]models.Evaluation),
	}
}

func (s *MemoryStore) Init(context.Context) error { return nil }

func (s *MemoryStore) Save(_ context.Context, eval models.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	eval = prepare(eval)
	if _, exists := s.evals[eval.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, eval.ID)
	}
	s.evals[eval.ID] = cloneEvaluation(eval)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.Evaluation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	eval, ok := s.evals[id]
	if !ok {
		return models.Evaluation{}, false, nil
	}
	return cloneEvaluation(eval), true, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]models.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Evaluation, 0, len(s.evals))
	for _, eval := range s.evals {
		out = append(out, cloneEvaluation(eval))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RunIndex != out[j].RunIndex {
			return out[i].RunIndex < out[j].RunIndex
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit = normalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

// prepare fills the id and timestamp of a new evaluation.
func prepare(eval models.Evaluation) models.Evaluation {
	if eval.ID == "" {
		eval.ID = uuid.NewString()
	}
	if eval.CreatedAt.IsZero() {
		eval.CreatedAt = time.Now().UTC()
	}
	return eval
}

func cloneEvaluation(e models.Evaluation) models.Evaluation {
	e.Genome = append([]float64(nil), e.Genome...)
	e.Descriptor = append([]float64(nil), e.Descriptor...)
	e.Materials = append([]models.Material(nil), e.Materials...)
	return e
}
