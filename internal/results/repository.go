// Package results persists judging runs to PostgreSQL.
package results

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tidemark/challenge-judge/internal/contracts"
)

// ErrNoRuns is returned when no judging run has been stored yet.
var ErrNoRuns = errors.New("no judging runs stored")

// Repository implements contracts.ResultRepository on PostgreSQL.
// Judging runs are stored and read here and nowhere else.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new results repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the results tables if they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS judging_runs (
			run_id    TEXT PRIMARY KEY,
			deadline  TIMESTAMPTZ NOT NULL,
			judged_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS judging_entries (
			run_id     TEXT NOT NULL REFERENCES judging_runs(run_id) ON DELETE CASCADE,
			rank       INT NOT NULL,
			contestant TEXT NOT NULL,
			asset_id   TEXT NOT NULL,
			score      DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, rank)
		);

		CREATE INDEX IF NOT EXISTS idx_judging_runs_deadline
			ON judging_runs(deadline, judged_at DESC);
	`

	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create results schema: %w", err)
	}
	return nil
}

// SaveRun stores a leaderboard atomically: the run row and all entry
// rows commit together or not at all.
func (r *Repository) SaveRun(ctx context.Context, lb *contracts.Leaderboard) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO judging_runs (run_id, deadline, judged_at)
		VALUES ($1, $2, $3)
	`, lb.RunID, lb.Deadline, lb.JudgedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, e := range lb.Entries {
		_, err = tx.Exec(ctx, `
			INSERT INTO judging_entries (run_id, rank, contestant, asset_id, score)
			VALUES ($1, $2, $3, $4, $5)
		`, lb.RunID, e.Rank, e.Contestant, e.AssetID, e.Score)
		if err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", e.Rank, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// LatestLeaderboard returns the most recently judged run.
func (r *Repository) LatestLeaderboard(ctx context.Context) (*contracts.Leaderboard, error) {
	return r.loadRun(ctx, `
		SELECT run_id, deadline, judged_at
		FROM judging_runs
		ORDER BY judged_at DESC
		LIMIT 1
	`)
}

// LeaderboardByDeadline returns the most recent run judged for the
// given deadline. Re-judging a deadline supersedes earlier runs.
func (r *Repository) LeaderboardByDeadline(ctx context.Context, deadline time.Time) (*contracts.Leaderboard, error) {
	return r.loadRun(ctx, `
		SELECT run_id, deadline, judged_at
		FROM judging_runs
		WHERE deadline = $1
		ORDER BY judged_at DESC
		LIMIT 1
	`, deadline)
}

// loadRun fetches one run row by the given query, then its entries.
func (r *Repository) loadRun(ctx context.Context, query string, args ...interface{}) (*contracts.Leaderboard, error) {
	lb := &contracts.Leaderboard{}

	err := r.pool.QueryRow(ctx, query, args...).Scan(&lb.RunID, &lb.Deadline, &lb.JudgedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT rank, contestant, asset_id, score
		FROM judging_entries
		WHERE run_id = $1
		ORDER BY rank
	`, lb.RunID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e contracts.RankedEntry
		if err := rows.Scan(&e.Rank, &e.Contestant, &e.AssetID, &e.Score); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		lb.Entries = append(lb.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	// Stored timestamps come back in the session zone.
	lb.Deadline = lb.Deadline.UTC()
	lb.JudgedAt = lb.JudgedAt.UTC()

	return lb, nil
}
