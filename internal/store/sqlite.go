package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists evaluations in a SQLite database file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, eval models.Evaluation) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	eval = prepare(eval)
	payload, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("encode evaluation %s: %w", eval.ID, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO evaluations (id, run_index, fitness, created_at, payload)
		VALUES (?, ?, ?, ?, ?)
	`, eval.ID, eval.RunIndex, eval.Fitness, eval.CreatedAt.UnixNano(), payload)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %s", ErrDuplicate, eval.ID)
	}
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (models.Evaluation, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return models.Evaluation{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM evaluations WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Evaluation{}, false, nil
		}
		return models.Evaluation{}, false, err
	}

	eval, err := decodeEvaluation(payload)
	if err != nil {
		return models.Evaluation{}, false, fmt.Errorf("decode evaluation %s: %w", id, err)
	}
	return eval, true, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]models.Evaluation, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT payload FROM evaluations
		ORDER BY run_index ASC, created_at ASC
		LIMIT ?
	`, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Evaluation
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		eval, err := decodeEvaluation(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, eval)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func decodeEvaluation(payload []byte) (models.Evaluation, error) {
	var eval models.Evaluation
	if err := json.Unmarshal(payload, &eval); err != nil {
		return models.Evaluation{}, err
	}
	eval.CreatedAt = eval.CreatedAt.In(time.UTC)
	return eval, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS evaluations (
			id TEXT PRIMARY KEY,
			run_index INTEGER NOT NULL,
			fitness REAL NOT NULL,
			created_at INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS evaluations_run_index ON evaluations (run_index);
	`)
	return err
}
