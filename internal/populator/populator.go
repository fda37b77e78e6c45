package populator

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/odense-rpa/grant-reminder/internal/grant"
	"github.com/odense-rpa/grant-reminder/internal/reporting"
	"github.com/odense-rpa/grant-reminder/internal/rules"
	"github.com/odense-rpa/grant-reminder/internal/timeutil"
	"github.com/odense-rpa/grant-reminder/internal/workqueue"
)

// Populator fills the work queue from the reporting database: one item per
// grant modified within the trailing window, per configured organisation.
// It only mutates the queue — no task creation, no writes to the
// case-management system.
type Populator struct {
	rules    *rules.Mapping
	db       reporting.Client
	q        workqueue.Store
	daysBack int
	logger   *zap.Logger
}

func New(mapping *rules.Mapping, db reporting.Client, q workqueue.Store, daysBack int, logger *zap.Logger) *Populator {
	return &Populator{rules: mapping, db: db, q: q, daysBack: daysBack, logger: logger}
}

// Run queries each organisation in rule order and enqueues every returned
// grant with its id as the item reference. No deduplication happens here:
// running against an already-populated queue creates duplicate items, which
// is why the populate mode clears new items first.
func (p *Populator) Run(ctx context.Context) error {
	var enqueued int

	for _, organisation := range p.rules.Organisations() {
		grants, err := p.db.ModifiedGrantsByOrganisation(ctx, organisation, p.daysBack, p.rules.AcceptedStatuses())
		if err != nil {
			return fmt.Errorf("organisation %q: %w", organisation, err)
		}

		for _, g := range grants {
			data, err := json.Marshal(grant.WorkItemData{
				CPR:        g.BusinessKey,
				GrantID:    g.ID,
				GrantName:  g.Name,
				LastChange: g.LastStateChange.Format(timeutil.CivilLayout),
			})
			if err != nil {
				return fmt.Errorf("marshal item for grant %d: %w", g.ID, err)
			}

			if _, err := p.q.Add(ctx, data, strconv.FormatInt(g.ID, 10)); err != nil {
				return fmt.Errorf("enqueue grant %d: %w", g.ID, err)
			}
			enqueued++
		}

		p.logger.Info("organisation scanned",
			zap.String("organisation", organisation),
			zap.Int("modified_grants", len(grants)),
		)
	}

	p.logger.Info("queue populated", zap.Int("items", enqueued))
	return nil
}
