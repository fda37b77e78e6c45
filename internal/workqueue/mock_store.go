package workqueue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is a hand-written, in-memory implementation of Store used in
// unit tests. Items are leased in insertion order, matching the FIFO
// behaviour of the Postgres store. No mock-generation library needed.
type MockStore struct {
	mu    sync.Mutex
	order []string
	items map[string]*Item

	// Optional error overrides — set in tests to simulate failure paths.
	AddErr  error
	NextErr error
}

func NewMockStore() *MockStore {
	return &MockStore{items: make(map[string]*Item)}
}

func (m *MockStore) Add(_ context.Context, data json.RawMessage, reference string) (*Item, error) {
	if m.AddErr != nil {
		return nil, m.AddErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	item := &Item{
		ID:        uuid.New().String(),
		Reference: reference,
		Data:      data,
		Status:    StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.items[item.ID] = item
	m.order = append(m.order, item.ID)
	clone := *item
	return &clone, nil
}

func (m *MockStore) ClearNew(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	remaining := m.order[:0]
	for _, id := range m.order {
		if m.items[id].Status == StatusNew {
			delete(m.items, id)
			removed++
			continue
		}
		remaining = append(remaining, id)
	}
	m.order = remaining
	return removed, nil
}

func (m *MockStore) Next(_ context.Context) (*Item, error) {
	if m.NextErr != nil {
		return nil, m.NextErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if item := m.items[id]; item.Status == StatusNew {
			item.Status = StatusInProgress
			item.UpdatedAt = time.Now().UTC()
			clone := *item
			return &clone, nil
		}
	}
	return nil, ErrNoItem
}

func (m *MockStore) Complete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		item.Status = StatusCompleted
		item.ErrorMessage = nil
	}
	return nil
}

func (m *MockStore) Fail(_ context.Context, id, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		item.Status = StatusFailed
		item.ErrorMessage = &errMsg
	}
	return nil
}

func (m *MockStore) Stats(_ context.Context) (map[Status]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := make(map[Status]int)
	for _, item := range m.items {
		stats[item.Status]++
	}
	return stats, nil
}

// Items returns all items in insertion order. Test helper.
func (m *MockStore) Items() []*Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*Item, 0, len(m.order))
	for _, id := range m.order {
		clone := *m.items[id]
		result = append(result, &clone)
	}
	return result
}
