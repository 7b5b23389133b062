package store

import (
	"context"
	"fmt"
	"time"
)

const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

type Run struct {
	ID         string
	Status     string
	Categories int
	Records    int
	Error      string
}

// MarkStarted registers a run before any category is processed.
func (s *Store) MarkStarted(ctx context.Context, runID string) error {
	q := fmt.Sprintf(`INSERT INTO runs (id, status, started_at) VALUES (%s, %s, %s)`,
		s.dialect.placeholder(1), s.dialect.placeholder(2), s.dialect.placeholder(3))

	_, err := s.db.ExecContext(ctx, q, runID, StatusRunning, time.Now().UTC())

	return err
}

// MarkFinished closes a run. A non-nil runErr marks it failed.
func (s *Store) MarkFinished(ctx context.Context, runID string, categories, records int, runErr error) error {
	status := StatusDone
	msg := ""

	if runErr != nil {
		status = StatusFailed
		msg = runErr.Error()
	}

	q := fmt.Sprintf(`UPDATE runs SET status = %s, categories = %s, records = %s, error = %s, finished_at = %s
		WHERE id = %s`,
		s.dialect.placeholder(1), s.dialect.placeholder(2), s.dialect.placeholder(3),
		s.dialect.placeholder(4), s.dialect.placeholder(5), s.dialect.placeholder(6))

	_, err := s.db.ExecContext(ctx, q, status, categories, records, msg, time.Now().UTC(), runID)

	return err
}

func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	q := fmt.Sprintf(`SELECT id, status, categories, records, error FROM runs WHERE id = %s`,
		s.dialect.placeholder(1))

	var r Run
	if err := s.db.QueryRowContext(ctx, q, runID).Scan(&r.ID, &r.Status, &r.Categories, &r.Records, &r.Error); err != nil {
		return nil, err
	}

	return &r, nil
}
