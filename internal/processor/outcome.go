package processor

// OutcomeKind classifies how a work item ended.
type OutcomeKind string

const (
	// OutcomeCreated: a follow-up task was created.
	OutcomeCreated OutcomeKind = "created"
	// OutcomeSkipped: a soft business condition made the item a no-op
	// (missing citizen, removed grant, excluded supplier, covered by an
	// existing task). The item completes without error.
	OutcomeSkipped OutcomeKind = "skipped"
	// OutcomeFailed: a hard business failure (a data integrity assumption
	// was violated). The item is marked failed with a message.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the explicit result of handling one item. The drain loop
// pattern-matches on Kind instead of catching typed errors.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

func created() Outcome {
	return Outcome{Kind: OutcomeCreated}
}

func skipped(reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Reason: reason}
}

func failed(reason string) Outcome {
	return Outcome{Kind: OutcomeFailed, Reason: reason}
}
