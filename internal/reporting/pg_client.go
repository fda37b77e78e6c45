package reporting

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odense-rpa/grant-reminder/internal/grant"
)

type pgClient struct {
	pool *pgxpool.Pool
}

// NewPgClient returns a Client backed by the reporting database.
// The pool must be connected with read-only credentials; this client never
// writes.
func NewPgClient(pool *pgxpool.Pool) Client {
	return &pgClient{pool: pool}
}

func (c *pgClient) ModifiedGrantsByOrganisation(ctx context.Context, organisationName string, daysBack int, workflowStates []string) ([]grant.ModifiedGrant, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT p.business_key, g.id, g.name, g.last_state_change
		FROM grants g
		JOIN patients p ON p.id = g.patient_id
		JOIN organisations o ON o.id = g.organisation_id
		WHERE o.name = $1
		  AND g.last_state_change >= NOW() - make_interval(days => $2)
		  AND g.workflow_state = ANY($3)
		ORDER BY g.last_state_change`,
		organisationName, daysBack, workflowStates)
	if err != nil {
		return nil, fmt.Errorf("query modified grants for %q: %w", organisationName, err)
	}
	defer rows.Close()

	var grants []grant.ModifiedGrant
	for rows.Next() {
		var g grant.ModifiedGrant
		if err := rows.Scan(&g.BusinessKey, &g.ID, &g.Name, &g.LastStateChange); err != nil {
			return nil, fmt.Errorf("scan modified grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
