package project

import (
	"context"

	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/audit"
)

// Repository provides persistence for projects. Mutations are field-level
// and conditional where a race is possible: Create claims the leader and
// group number atomically, SetConfirmationPending is a compare-and-set on
// the pending flag. Implementations must never require callers to hold a
// lock across a call.
type Repository interface {
	// Create persists a new active project, atomically enforcing the
	// one-active-project-per-leader and per-group-number invariants.
	// Returns repository.ErrDuplicateLeader or repository.ErrDuplicateGroup.
	Create(ctx context.Context, proj *Project) error

	GetByID(ctx context.Context, id string) (*Project, error)
	GetActiveByLeader(ctx context.Context, leaderID string) (*Project, error)
	GetActiveByGroup(ctx context.Context, groupNumber int) (*Project, error)
	GetActiveByMember(ctx context.Context, memberID string) (*Project, error)
	ListActive(ctx context.Context) ([]*Project, error)

	// SetResources stores the platform handles allocated during provisioning.
	SetResources(ctx context.Context, id, roleID, leaderRoleID string, channels []ChannelResource) error
	AddChannel(ctx context.Context, id string, ch ChannelResource) error

	AddMember(ctx context.Context, id, memberID string) error
	RemoveMember(ctx context.Context, id, memberID string) error

	UpdateDetails(ctx context.Context, id string, upd DetailsUpdate) error
	UpsertTask(ctx context.Context, id, memberID, task string) error

	// SetConfirmationPending flips the pending flag false -> true.
	// Returns repository.ErrConflict when the flag is already set.
	SetConfirmationPending(ctx context.Context, id string) error
	ClearConfirmationPending(ctx context.Context, id string) error

	// Terminate marks the project terminated and clears the pending flag.
	Terminate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// DetailsUpdate carries the optional fields of an edit request.
// Nil pointers leave the stored value untouched.
type DetailsUpdate struct {
	Progress           *int
	TechDocsStatus     *string
	PresentationStatus *string
}

// IsEmpty reports whether no field is set.
func (u DetailsUpdate) IsEmpty() bool {
	return u.Progress == nil && u.TechDocsStatus == nil && u.PresentationStatus == nil
}

// RoleSpec describes a platform role to create.
type RoleSpec struct {
	Name        string
	Color       string
	Mentionable bool
}

// ChannelSpec describes a platform channel to create.
type ChannelSpec struct {
	Name     string
	Kind     ChannelKind
	ParentID string
	// ReadOnly denies member writes (used for the info channel).
	ReadOnly bool
}

// Platform is the capability set consumed from the chat platform gateway.
// Every call is a suspension point; implementations are expected to be
// network clients and may fail independently of the store.
type Platform interface {
	CreateRole(ctx context.Context, spec RoleSpec) (string, error)
	DeleteRole(ctx context.Context, roleID string) error
	GrantRole(ctx context.Context, memberID, roleID string) error
	RevokeRole(ctx context.Context, memberID, roleID string) error
	CreateChannel(ctx context.Context, spec ChannelSpec) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
}

// EventKind classifies a notification event.
type EventKind string

const (
	EventProjectCreated       EventKind = "project.created"
	EventMemberAdded          EventKind = "member.added"
	EventMemberRemoved        EventKind = "member.removed"
	EventMemberLeft           EventKind = "member.left"
	EventProjectEdited        EventKind = "project.edited"
	EventTaskAssigned         EventKind = "task.assigned"
	EventChannelAdded         EventKind = "channel.added"
	EventTerminationConfirmed EventKind = "termination.confirmed"
	EventTerminationCancelled EventKind = "termination.cancelled"
	EventTerminationTimeout   EventKind = "termination.timeout"
	EventProjectDeleted       EventKind = "project.deleted"
)

// Event is the content contract for a notification. The rendering layer
// owns all user-visible text; the core supplies kinds and identifiers only.
// Events are never the system of record.
type Event struct {
	Kind        EventKind `json:"kind"`
	GroupNumber int       `json:"group_number"`
	ActorID     string    `json:"actor_id,omitempty"`
	TargetID    string    `json:"target_id,omitempty"`
	Task        string    `json:"task,omitempty"`
	// Transient hints the renderer to auto-expire the message.
	Transient bool `json:"transient,omitempty"`
}

// Notifier renders human-visible feedback. All methods are best-effort
// from the core's perspective; failures are logged, never authoritative.
type Notifier interface {
	// NotifyCaller delivers an ephemeral acknowledgement to the acting caller.
	NotifyCaller(ctx context.Context, callerID string, ev Event) error
	// NotifyChannel broadcasts to a project channel.
	NotifyChannel(ctx context.Context, channelID string, ev Event) error
	// RenderInfo (re-)renders the project info embed.
	RenderInfo(ctx context.Context, proj *Project) error
	// PromptTermination presents the confirm/cancel affordance for a
	// decision token to the caller who opened it.
	PromptTermination(ctx context.Context, channelID string, token *DecisionToken) error
}

// AuditLog records lifecycle events for manual reconciliation.
type AuditLog interface {
	Record(ctx context.Context, entry *audit.Entry)
}
