package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/odense-rpa/grant-reminder/internal/grant"
	"github.com/odense-rpa/grant-reminder/internal/nexus"
	"github.com/odense-rpa/grant-reminder/internal/rules"
	"github.com/odense-rpa/grant-reminder/internal/timeutil"
	"github.com/odense-rpa/grant-reminder/internal/tracking"
	"github.com/odense-rpa/grant-reminder/internal/workqueue"
)

// ProcessName identifies this automation in tracking and reporting.
const ProcessName = "Påmindelse om afregning af indsatser (voksne)"

// Follow-up task constants. SentinelTaskType is how this process recognizes
// its own previously created tasks during deduplication.
const (
	SentinelTaskType   = "Indsatser til økonomi - voksne"
	taskTitle          = "Påmindelse om afregning af indsats"
	taskDescription    = "Indsatsen har ændret status og skal afregnes. Oprettet automatisk."
	taskResponsibleOrg = "Regnskab BSF"
	activeTaskState    = "Aktiv"
)

// Summary counts the outcomes of one drain.
type Summary struct {
	Created int
	Skipped int
	Failed  int
}

// Processor drains the work queue one item at a time: it resolves each
// item's grant through the case-management system, applies the supplier
// exclusion, runs the deduplication decision and conditionally creates a
// follow-up task. One item's failure never aborts the drain.
type Processor struct {
	q       workqueue.Store
	nexus   nexus.Client
	rules   *rules.Mapping
	tracker tracking.Tracker
	loc     *time.Location
	logger  *zap.Logger

	// Hook for metrics — injected by main so the processor stays
	// metrics-agnostic. Called once per item with the outcome kind.
	onOutcome func(outcome string)
}

func New(
	q workqueue.Store,
	client nexus.Client,
	mapping *rules.Mapping,
	tracker tracking.Tracker,
	loc *time.Location,
	logger *zap.Logger,
	onOutcome func(outcome string),
) *Processor {
	if onOutcome == nil {
		onOutcome = func(string) {}
	}
	return &Processor{
		q:         q,
		nexus:     client,
		rules:     mapping,
		tracker:   tracker,
		loc:       loc,
		logger:    logger,
		onOutcome: onOutcome,
	}
}

// Run drains the queue to completion and returns the outcome counts.
// Hard and unclassified failures mark the item failed and move on; only a
// queue infrastructure error ends the run early.
func (p *Processor) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	for {
		item, err := p.q.Next(ctx)
		if errors.Is(err, workqueue.ErrNoItem) {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("lease next item: %w", err)
		}

		log := p.logger.With(
			zap.String("item_id", item.ID),
			zap.String("reference", item.Reference),
		)

		outcome, err := p.handle(ctx, item)
		if err != nil {
			// Unclassified failure: surface it on the item and continue.
			log.Error("item processing failed",
				zap.ByteString("data", item.Data),
				zap.Error(err),
			)
			p.markFailed(ctx, log, item, err.Error())
			summary.Failed++
			p.onOutcome(string(OutcomeFailed))
			continue
		}

		switch outcome.Kind {
		case OutcomeCreated:
			p.markCompleted(ctx, log, item)
			p.track(ctx, log)
			log.Info("follow-up task created")
			summary.Created++

		case OutcomeSkipped:
			p.markCompleted(ctx, log, item)
			log.Info("item skipped", zap.String("reason", outcome.Reason))
			summary.Skipped++

		case OutcomeFailed:
			log.Error("item failed",
				zap.String("reason", outcome.Reason),
				zap.ByteString("data", item.Data),
			)
			p.markFailed(ctx, log, item, outcome.Reason)
			summary.Failed++
		}
		p.onOutcome(string(outcome.Kind))
	}

	p.logger.Info("queue drained",
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// handle runs the per-item algorithm and returns an explicit outcome.
// A returned error means an unclassified failure the drain loop turns into
// an item failure.
func (p *Processor) handle(ctx context.Context, item *workqueue.Item) (Outcome, error) {
	var data grant.WorkItemData
	if err := json.Unmarshal(item.Data, &data); err != nil {
		return failed(fmt.Sprintf("unreadable item data: %v", err)), nil
	}

	// 1. Resolve citizen. Absence is a soft no-op: the citizen may have
	// been merged, deleted, or the CPR corrected since enqueue.
	citizen, err := p.nexus.Citizen(ctx, data.CPR)
	if err != nil {
		return Outcome{}, err
	}
	if citizen == nil {
		return skipped(grant.ErrCitizenNotFound.Error()), nil
	}

	// 2. Resolve care pathway. A citizen without a pathway tree violates a
	// data integrity assumption: hard failure.
	tree, err := p.nexus.PathwayTree(ctx, citizen)
	if err != nil {
		return Outcome{}, err
	}
	if tree == nil {
		return failed(grant.ErrPathwayMissing.Error()), nil
	}

	// 3. Locate the grant: structural match, then exact-id predicate.
	refs := nexus.FindGrantReferences(tree)
	ref := nexus.MatchGrantID(refs, data.GrantID)
	if ref == nil {
		return skipped(grant.ErrGrantNotFound.Error()), nil
	}

	g, err := p.nexus.Grant(ctx, ref)
	if err != nil {
		return Outcome{}, err
	}
	if g == nil {
		return skipped(grant.ErrGrantNotFound.Error()), nil
	}

	// 4. Supplier filter.
	values, err := p.nexus.GrantFieldValues(ctx, g)
	if err != nil {
		return Outcome{}, err
	}
	if values == nil {
		return skipped(grant.ErrFieldValuesUnavailable.Error()), nil
	}
	if p.rules.IsExcludedSupplier(values.Supplier) {
		return skipped(fmt.Sprintf("supplier %q is excluded", values.Supplier)), nil
	}

	// 5. Deduplication decision.
	itemTime, err := timeutil.ParseCivilInZone(data.LastChange, p.loc)
	if err != nil {
		return failed(fmt.Sprintf("item timestamp: %v", err)), nil
	}

	tasks, err := p.nexus.Tasks(ctx, g)
	if err != nil {
		return Outcome{}, err
	}
	if covered, why := existingTaskCovers(tasks, itemTime, p.loc); covered {
		return skipped(why), nil
	}

	// 6. Create task.
	today := time.Now().In(p.loc)
	newTask := grant.NewTask{
		Type:           SentinelTaskType,
		Title:          taskTitle,
		Description:    taskDescription,
		ResponsibleOrg: taskResponsibleOrg,
		StartDate:      today,
		DueDate:        today,
	}
	if err := p.nexus.CreateTask(ctx, g, newTask); err != nil {
		return Outcome{}, err
	}

	return created(), nil
}

// existingTaskCovers decides whether a historical task of the sentinel type
// already covers this change event: either its state is still active, or
// its last state change is strictly after the item's. Task timestamps may
// carry their own offset; they are normalized to the fixed zone before
// comparison.
func existingTaskCovers(tasks []grant.Task, itemTime time.Time, loc *time.Location) (bool, string) {
	for _, t := range tasks {
		if t.Type != SentinelTaskType {
			continue
		}
		if t.WorkflowState == activeTaskState {
			return true, fmt.Sprintf("task %d is still active", t.ID)
		}
		taskTime, err := timeutil.ParseInstantToZone(t.LastStateChangeDate, loc)
		if err != nil {
			// An unparseable history timestamp cannot qualify the task.
			continue
		}
		if taskTime.After(itemTime) {
			return true, fmt.Sprintf("task %d postdates the change", t.ID)
		}
	}
	return false, ""
}

func (p *Processor) markCompleted(ctx context.Context, log *zap.Logger, item *workqueue.Item) {
	if err := p.q.Complete(ctx, item.ID); err != nil {
		log.Error("failed to mark item completed", zap.Error(err))
	}
}

func (p *Processor) markFailed(ctx context.Context, log *zap.Logger, item *workqueue.Item, msg string) {
	if err := p.q.Fail(ctx, item.ID, msg); err != nil {
		log.Error("failed to mark item failed", zap.Error(err))
	}
}

// track records one usage event. Tracking is fire-and-forget: a failure is
// logged and the item stays completed.
func (p *Processor) track(ctx context.Context, log *zap.Logger) {
	if err := p.tracker.TrackTask(ctx, ProcessName); err != nil {
		log.Warn("tracking call failed", zap.Error(err))
	}
}
