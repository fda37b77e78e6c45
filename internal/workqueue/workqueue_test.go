package workqueue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/odense-rpa/grant-reminder/internal/workqueue"
)

func addItem(t *testing.T, q *workqueue.MockStore, reference string) *workqueue.Item {
	t.Helper()
	item, err := q.Add(context.Background(), json.RawMessage(`{}`), reference)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	return item
}

func TestNext_LeasesOldestFirst(t *testing.T) {
	q := workqueue.NewMockStore()
	ctx := context.Background()

	addItem(t, q, "1")
	addItem(t, q, "2")

	first, err := q.Next(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Reference != "1" {
		t.Fatalf("expected reference 1 first, got %s", first.Reference)
	}
	if first.Status != workqueue.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", first.Status)
	}

	second, _ := q.Next(ctx)
	if second.Reference != "2" {
		t.Fatalf("expected reference 2 second, got %s", second.Reference)
	}

	if _, err := q.Next(ctx); !errors.Is(err, workqueue.ErrNoItem) {
		t.Fatalf("expected ErrNoItem on a drained queue, got %v", err)
	}
}

func TestAdd_NoDeduplication(t *testing.T) {
	q := workqueue.NewMockStore()

	addItem(t, q, "42")
	addItem(t, q, "42")

	items := q.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Reference != items[1].Reference {
		t.Fatal("expected identical references for duplicate population")
	}
	if items[0].ID == items[1].ID {
		t.Fatal("expected distinct item ids")
	}
}

func TestClearNew_OnlyRemovesNewItems(t *testing.T) {
	q := workqueue.NewMockStore()
	ctx := context.Background()

	done := addItem(t, q, "1")
	if _, err := q.Next(ctx); err != nil {
		t.Fatalf("lease: %v", err)
	}
	if err := q.Complete(ctx, done.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	addItem(t, q, "2")
	addItem(t, q, "3")

	removed, err := q.ClearNew(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	stats, _ := q.Stats(ctx)
	if stats[workqueue.StatusCompleted] != 1 {
		t.Fatalf("expected the completed item to survive, got %v", stats)
	}
	if stats[workqueue.StatusNew] != 0 {
		t.Fatalf("expected no new items, got %v", stats)
	}
}

func TestFail_RecordsErrorMessage(t *testing.T) {
	q := workqueue.NewMockStore()
	ctx := context.Background()

	item := addItem(t, q, "1")
	if _, err := q.Next(ctx); err != nil {
		t.Fatalf("lease: %v", err)
	}
	if err := q.Fail(ctx, item.ID, "pathway missing"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	items := q.Items()
	if items[0].Status != workqueue.StatusFailed {
		t.Fatalf("expected failed, got %s", items[0].Status)
	}
	if items[0].ErrorMessage == nil || *items[0].ErrorMessage != "pathway missing" {
		t.Fatalf("expected error message to be persisted, got %v", items[0].ErrorMessage)
	}
}
