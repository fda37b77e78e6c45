package reporting

import (
	"context"

	"github.com/odense-rpa/grant-reminder/internal/grant"
)

// MockClient is an in-memory Client for unit tests. Grants are keyed by
// organisation name; the window and state filters are assumed to have been
// applied already.
type MockClient struct {
	Grants map[string][]grant.ModifiedGrant
	Err    error

	// Queries records each organisation name in call order.
	Queries []string
}

func NewMockClient() *MockClient {
	return &MockClient{Grants: make(map[string][]grant.ModifiedGrant)}
}

func (m *MockClient) ModifiedGrantsByOrganisation(_ context.Context, organisationName string, _ int, _ []string) ([]grant.ModifiedGrant, error) {
	m.Queries = append(m.Queries, organisationName)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Grants[organisationName], nil
}
