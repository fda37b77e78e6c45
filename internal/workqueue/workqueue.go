package workqueue

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Status represents the lifecycle of a work item. Items are created as new,
// leased by a processor as in_progress, and end completed or failed. The
// terminal states are owned by the queue infrastructure, not the processor.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ErrNoItem is returned by Next when no new items remain; the drain loop
// treats it as the end of the run.
var ErrNoItem = errors.New("no new work items")

// Item is one unit of work. Data is the serialized WorkItemData payload;
// Reference is the grant id, kept denormalized for idempotent re-population
// and traceability.
type Item struct {
	ID           string
	Reference    string
	Data         json.RawMessage
	Status       Status
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store defines all persistence operations on the work queue.
// The pgx implementation is in pg_store.go.
// Tests use a hand-written mock (mock_store.go).
type Store interface {
	// Add enqueues a new item. No deduplication is performed: adding the
	// same reference twice yields two items.
	Add(ctx context.Context, data json.RawMessage, reference string) (*Item, error)

	// ClearNew deletes all items still in status new and reports how many
	// were removed. Run before re-population.
	ClearNew(ctx context.Context) (int64, error)

	// Next leases the oldest new item, marking it in_progress.
	// Returns ErrNoItem when the queue is drained.
	Next(ctx context.Context) (*Item, error)

	Complete(ctx context.Context, id string) error
	Fail(ctx context.Context, id string, errMsg string) error

	// Stats reports the number of items per status.
	Stats(ctx context.Context) (map[Status]int, error)
}
