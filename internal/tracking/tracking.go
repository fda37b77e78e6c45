package tracking

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Tracker records one usage-telemetry event per created task.
// Fire-and-forget: callers log but never fail an item on a tracking error.
type Tracker interface {
	TrackTask(ctx context.Context, processName string) error
}

// Reporter records one row per finished run with the outcome counts.
type Reporter interface {
	Report(ctx context.Context, processName string, created, skipped, failed int) error
}

type pgTracker struct {
	pool *pgxpool.Pool
}

// NewPgTracker returns a Tracker writing to the tracking database.
func NewPgTracker(pool *pgxpool.Pool) Tracker {
	return &pgTracker{pool: pool}
}

func (t *pgTracker) TrackTask(ctx context.Context, processName string) error {
	_, err := t.pool.Exec(ctx, `
		INSERT INTO tracked_tasks (process_name, tracked_at)
		VALUES ($1, NOW())`, processName)
	if err != nil {
		return fmt.Errorf("track task: %w", err)
	}
	return nil
}

type pgReporter struct {
	pool *pgxpool.Pool
}

// NewPgReporter returns a Reporter writing to the reporting database.
func NewPgReporter(pool *pgxpool.Pool) Reporter {
	return &pgReporter{pool: pool}
}

func (r *pgReporter) Report(ctx context.Context, processName string, created, skipped, failed int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO process_runs (process_name, tasks_created, items_skipped, items_failed, run_at)
		VALUES ($1, $2, $3, $4, NOW())`, processName, created, skipped, failed)
	if err != nil {
		return fmt.Errorf("report run: %w", err)
	}
	return nil
}

// MockTracker records TrackTask calls for unit tests.
type MockTracker struct {
	mu    sync.Mutex
	Calls []string
	Err   error
}

func (m *MockTracker) TrackTask(_ context.Context, processName string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	m.Calls = append(m.Calls, processName)
	m.mu.Unlock()
	return nil
}

var (
	_ Tracker = (*pgTracker)(nil)
	_ Tracker = (*MockTracker)(nil)
)
