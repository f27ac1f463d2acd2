package audit

import "time"

// Action represents the type of lifecycle event recorded.
type Action string

const (
	ActionProjectStarted       Action = "project_started"
	ActionProvisionFailed      Action = "provision_failed"
	ActionMemberAdded          Action = "member_added"
	ActionMemberRemoved        Action = "member_removed"
	ActionMemberLeft           Action = "member_left"
	ActionProjectEdited        Action = "project_edited"
	ActionTaskAssigned         Action = "task_assigned"
	ActionChannelAdded         Action = "channel_added"
	ActionTerminationOpened    Action = "termination_opened"
	ActionTerminationConfirmed Action = "termination_confirmed"
	ActionTerminationCancelled Action = "termination_cancelled"
	ActionTerminationTimeout   Action = "termination_timeout"
	ActionProjectForceDeleted  Action = "project_force_deleted"
	ActionLockCleared          Action = "lock_cleared"
)

// Entry represents one event in the audit log. Entries carry enough
// identifiers (project key, resource handles) to reconcile partial
// failures by hand.
type Entry struct {
	ID          int64     `json:"id"`
	ProjectID   string    `json:"project_id,omitempty"`
	GroupNumber int       `json:"group_number,omitempty"`
	ActorID     string    `json:"actor_id"`
	Action      Action    `json:"action"`
	Details     string    `json:"details,omitempty"` // JSON string
	CreatedAt   time.Time `json:"created_at"`
}
