package mocks

import (
	"context"

	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/audit"
	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for repository.ProjectRepository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) GetByID(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) GetActiveByLeader(ctx context.Context, leaderID string) (*project.Project, error) {
	args := m.Called(ctx, leaderID)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) GetActiveByGroup(ctx context.Context, groupNumber int) (*project.Project, error) {
	args := m.Called(ctx, groupNumber)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) GetActiveByMember(ctx context.Context, memberID string) (*project.Project, error) {
	args := m.Called(ctx, memberID)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) ListActive(ctx context.Context) ([]*project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]*project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) SetResources(ctx context.Context, id, roleID, leaderRoleID string, channels []project.ChannelResource) error {
	args := m.Called(ctx, id, roleID, leaderRoleID, channels)
	return args.Error(0)
}

func (m *ProjectRepository) AddChannel(ctx context.Context, id string, ch project.ChannelResource) error {
	args := m.Called(ctx, id, ch)
	return args.Error(0)
}

func (m *ProjectRepository) AddMember(ctx context.Context, id, memberID string) error {
	args := m.Called(ctx, id, memberID)
	return args.Error(0)
}

func (m *ProjectRepository) RemoveMember(ctx context.Context, id, memberID string) error {
	args := m.Called(ctx, id, memberID)
	return args.Error(0)
}

func (m *ProjectRepository) UpdateDetails(ctx context.Context, id string, upd project.DetailsUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *ProjectRepository) UpsertTask(ctx context.Context, id, memberID, task string) error {
	args := m.Called(ctx, id, memberID, task)
	return args.Error(0)
}

func (m *ProjectRepository) SetConfirmationPending(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProjectRepository) ClearConfirmationPending(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProjectRepository) Terminate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// AuditRepository is a mock for repository.AuditRepository.
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Log(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *AuditRepository) List(ctx context.Context, opts audit.ListOptions) ([]audit.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]audit.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Platform is a mock for project.Platform.
type Platform struct {
	mock.Mock
}

func (m *Platform) CreateRole(ctx context.Context, spec project.RoleSpec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}

func (m *Platform) DeleteRole(ctx context.Context, roleID string) error {
	args := m.Called(ctx, roleID)
	return args.Error(0)
}

func (m *Platform) GrantRole(ctx context.Context, memberID, roleID string) error {
	args := m.Called(ctx, memberID, roleID)
	return args.Error(0)
}

func (m *Platform) RevokeRole(ctx context.Context, memberID, roleID string) error {
	args := m.Called(ctx, memberID, roleID)
	return args.Error(0)
}

func (m *Platform) CreateChannel(ctx context.Context, spec project.ChannelSpec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}

func (m *Platform) DeleteChannel(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

// Notifier is a mock for project.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) NotifyCaller(ctx context.Context, callerID string, ev project.Event) error {
	args := m.Called(ctx, callerID, ev)
	return args.Error(0)
}

func (m *Notifier) NotifyChannel(ctx context.Context, channelID string, ev project.Event) error {
	args := m.Called(ctx, channelID, ev)
	return args.Error(0)
}

func (m *Notifier) RenderInfo(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *Notifier) PromptTermination(ctx context.Context, channelID string, token *project.DecisionToken) error {
	args := m.Called(ctx, channelID, token)
	return args.Error(0)
}
