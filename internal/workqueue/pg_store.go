package workqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore returns a Store backed by PostgreSQL.
func NewPgStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) Add(ctx context.Context, data json.RawMessage, reference string) (*Item, error) {
	now := time.Now().UTC()
	item := &Item{
		ID:        uuid.New().String(),
		Reference: reference,
		Data:      data,
		Status:    StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO work_items (id, reference, data, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		item.ID, item.Reference, item.Data, item.Status, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert work item: %w", err)
	}
	return item, nil
}

func (s *pgStore) ClearNew(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM work_items WHERE status = $1`, StatusNew)
	if err != nil {
		return 0, fmt.Errorf("clear new work items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Next leases the oldest new item. FOR UPDATE SKIP LOCKED keeps the lease
// safe even if an operator starts a second processor against the same queue.
func (s *pgStore) Next(ctx context.Context) (*Item, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE work_items
		SET status = $1, updated_at = NOW()
		WHERE id = (
			SELECT id FROM work_items
			WHERE status = $2
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, reference, data, status, error_message, created_at, updated_at`,
		StatusInProgress, StatusNew)

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoItem
	}
	if err != nil {
		return nil, fmt.Errorf("lease next work item: %w", err)
	}
	return item, nil
}

func (s *pgStore) Complete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE work_items
		SET status = $1, error_message = NULL, updated_at = NOW()
		WHERE id = $2`, StatusCompleted, id)
	return err
}

func (s *pgStore) Fail(ctx context.Context, id, errMsg string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE work_items
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3`, StatusFailed, errMsg, id)
	return err
}

func (s *pgStore) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM work_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("work item stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// scanItem reads a single work item row from any pgx row type.
func scanItem(row pgx.Row) (*Item, error) {
	var item Item
	err := row.Scan(
		&item.ID, &item.Reference, &item.Data, &item.Status,
		&item.ErrorMessage, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
