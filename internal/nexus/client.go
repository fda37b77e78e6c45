package nexus

import (
	"context"

	"github.com/odense-rpa/grant-reminder/internal/grant"
)

// Client abstracts the case-management platform's API. The HTTP
// implementation is in http_client.go. Mocking this interface in tests
// gives full control over remote behaviour without real HTTP calls.
//
// Lookups that can legitimately come back empty (merged citizens, removed
// grants) return nil without an error; the processor decides what each
// absence means.
type Client interface {
	// Citizen looks a citizen up by business key. Returns nil, nil when
	// the citizen does not exist.
	Citizen(ctx context.Context, cpr string) (*grant.Citizen, error)

	// PathwayTree fetches the citizen's full case-pathway tree, active and
	// inactive branches included. Returns nil, nil when absent.
	PathwayTree(ctx context.Context, citizen *grant.Citizen) (*PathwayNode, error)

	// Grant resolves a grant from a pathway reference node.
	// Returns nil, nil when the grant no longer exists.
	Grant(ctx context.Context, ref *PathwayNode) (*grant.Grant, error)

	// GrantFieldValues fetches the grant's field values (supplier name).
	// Returns nil, nil when the values are unavailable.
	GrantFieldValues(ctx context.Context, g *grant.Grant) (*grant.FieldValues, error)

	// Tasks fetches the grant's full task history.
	Tasks(ctx context.Context, g *grant.Grant) ([]grant.Task, error)

	// CreateTask creates a new follow-up task against the grant.
	CreateTask(ctx context.Context, g *grant.Grant, task grant.NewTask) error
}
