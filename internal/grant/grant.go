package grant

import "time"

// WorkItemData is the lightweight payload stored on a queue item.
// The JSON field names match the reporting rows the populator reads,
// so queue contents stay directly comparable to the source data.
type WorkItemData struct {
	CPR        string `json:"cpr"`
	GrantID    int64  `json:"indsats_id"`
	GrantName  string `json:"indsats_navn"`
	LastChange string `json:"sidste_aendring"` // civil time, 02-01-2006 15:04:05, no offset
}

// ModifiedGrant is one row from the reporting database: a grant whose
// workflow state changed within the populator's trailing window.
type ModifiedGrant struct {
	BusinessKey     string
	ID              int64
	Name            string
	LastStateChange time.Time
}

// Citizen is the case-management record looked up by business key (CPR).
type Citizen struct {
	ID       string `json:"id"`
	CPR      string `json:"cpr"`
	FullName string `json:"fullName"`
}

// Grant is the read-only view of an indsats resolved from the
// case-management system.
type Grant struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	WorkflowState string `json:"workflowState"`
}

// FieldValues carries the grant field values this process inspects.
// Only the supplier is relevant; the remote record has many more fields.
type FieldValues struct {
	Supplier string
}

// Task is a follow-up work item attached to a grant. LastStateChangeDate
// is kept as the raw string the remote system returns: the format varies
// (with or without a UTC offset) and parsing it is a processor concern.
type Task struct {
	ID                  int64  `json:"id"`
	Type                string `json:"type"`
	Title               string `json:"title"`
	WorkflowState       string `json:"workflowState"`
	LastStateChangeDate string `json:"lastStateChangeDate"`
}

// NewTask is the payload for creating a follow-up task against a grant.
type NewTask struct {
	Type            string    `json:"type"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ResponsibleOrg  string    `json:"responsibleOrganisation"`
	ResponsibleUser string    `json:"responsibleUser,omitempty"`
	StartDate       time.Time `json:"startDate"`
	DueDate         time.Time `json:"dueDate"`
}
