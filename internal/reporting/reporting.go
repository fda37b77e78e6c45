package reporting

import (
	"context"

	"github.com/odense-rpa/grant-reminder/internal/grant"
)

// Client is the read-only view of the case-management platform's reporting
// database. The pgx implementation is in pg_client.go; tests use the
// hand-written mock in mock_client.go.
type Client interface {
	// ModifiedGrantsByOrganisation returns grants belonging to the named
	// organisation whose workflow state changed within the last daysBack
	// days and whose state is one of workflowStates.
	ModifiedGrantsByOrganisation(ctx context.Context, organisationName string, daysBack int, workflowStates []string) ([]grant.ModifiedGrant, error)
}
