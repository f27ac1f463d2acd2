package repository

import (
	"context"

	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/audit"
	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/project"
)

// ProjectRepository manages project persistence. Uniqueness of the active
// leader and active group number is enforced by the store, not by callers;
// conditional mutations return ErrConflict when the precondition fails.
type ProjectRepository interface {
	Create(ctx context.Context, proj *project.Project) error
	GetByID(ctx context.Context, id string) (*project.Project, error)
	GetActiveByLeader(ctx context.Context, leaderID string) (*project.Project, error)
	GetActiveByGroup(ctx context.Context, groupNumber int) (*project.Project, error)
	GetActiveByMember(ctx context.Context, memberID string) (*project.Project, error)
	ListActive(ctx context.Context) ([]*project.Project, error)
	SetResources(ctx context.Context, id, roleID, leaderRoleID string, channels []project.ChannelResource) error
	AddChannel(ctx context.Context, id string, ch project.ChannelResource) error
	AddMember(ctx context.Context, id, memberID string) error
	RemoveMember(ctx context.Context, id, memberID string) error
	UpdateDetails(ctx context.Context, id string, upd project.DetailsUpdate) error
	UpsertTask(ctx context.Context, id, memberID, task string) error
	SetConfirmationPending(ctx context.Context, id string) error
	ClearConfirmationPending(ctx context.Context, id string) error
	Terminate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// AuditRepository manages audit log persistence
type AuditRepository interface {
	Log(ctx context.Context, entry *audit.Entry) error
	List(ctx context.Context, opts audit.ListOptions) ([]audit.Entry, error)
}
