// Package store keeps the history of fitness evaluations.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
)

var (
	ErrDuplicate      = errors.New("evaluation already exists")
	ErrNotInitialized = errors.New("store is not initialized")
)

const defaultListLimit = 50

// Store persists evaluations.
type Store interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, eval models.Evaluation) error
	Get(ctx context.Context, id string) (models.Evaluation, bool, error)
	// List returns up to limit evaluations ordered by run index.
	List(ctx context.Context, limit int) ([]models.Evaluation, error)
	Close() error
}

// NewStore builds a store backend by name. "none" returns a nil Store.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "none":
		return nil, nil
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if sqlitePath == "" {
			return nil, errors.New("sqlite path is required")
		}
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
