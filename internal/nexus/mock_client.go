package nexus

import (
	"context"
	"sync"

	"github.com/odense-rpa/grant-reminder/internal/grant"
)

// MockClient is an in-memory Client for unit tests. Each lookup is backed
// by a map keyed the way the real system keys it; absent entries behave
// like 404s (nil, nil). Created tasks are recorded for assertions.
type MockClient struct {
	mu sync.Mutex

	Citizens    map[string]*grant.Citizen    // by CPR
	Pathways    map[string]*PathwayNode      // by citizen ID
	Grants      map[int64]*grant.Grant       // by grant ID
	FieldValues map[int64]*grant.FieldValues // by grant ID
	TaskHistory map[int64][]grant.Task       // by grant ID

	// Optional error overrides — set in tests to simulate failure paths.
	CitizenErr    error
	PathwayErr    error
	GrantErr      error
	FieldsErr     error
	TasksErr      error
	CreateTaskErr error

	// CreatedTasks records every CreateTask call in order.
	CreatedTasks []grant.NewTask

	// TasksCalls counts Tasks invocations, letting tests assert that
	// excluded suppliers never reach task-history evaluation.
	TasksCalls int
}

func NewMockClient() *MockClient {
	return &MockClient{
		Citizens:    make(map[string]*grant.Citizen),
		Pathways:    make(map[string]*PathwayNode),
		Grants:      make(map[int64]*grant.Grant),
		FieldValues: make(map[int64]*grant.FieldValues),
		TaskHistory: make(map[int64][]grant.Task),
	}
}

func (m *MockClient) Citizen(_ context.Context, cpr string) (*grant.Citizen, error) {
	if m.CitizenErr != nil {
		return nil, m.CitizenErr
	}
	return m.Citizens[cpr], nil
}

func (m *MockClient) PathwayTree(_ context.Context, citizen *grant.Citizen) (*PathwayNode, error) {
	if m.PathwayErr != nil {
		return nil, m.PathwayErr
	}
	return m.Pathways[citizen.ID], nil
}

func (m *MockClient) Grant(_ context.Context, ref *PathwayNode) (*grant.Grant, error) {
	if m.GrantErr != nil {
		return nil, m.GrantErr
	}
	return m.Grants[ref.GrantID], nil
}

func (m *MockClient) GrantFieldValues(_ context.Context, g *grant.Grant) (*grant.FieldValues, error) {
	if m.FieldsErr != nil {
		return nil, m.FieldsErr
	}
	return m.FieldValues[g.ID], nil
}

func (m *MockClient) Tasks(_ context.Context, g *grant.Grant) ([]grant.Task, error) {
	m.mu.Lock()
	m.TasksCalls++
	m.mu.Unlock()
	if m.TasksErr != nil {
		return nil, m.TasksErr
	}
	return m.TaskHistory[g.ID], nil
}

func (m *MockClient) CreateTask(_ context.Context, _ *grant.Grant, task grant.NewTask) error {
	if m.CreateTaskErr != nil {
		return m.CreateTaskErr
	}
	m.mu.Lock()
	m.CreatedTasks = append(m.CreatedTasks, task)
	m.mu.Unlock()
	return nil
}

// compile-time check that MockClient implements Client
var _ Client = (*MockClient)(nil)
