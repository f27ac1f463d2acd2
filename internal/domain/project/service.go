package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/audit"
	"github.com/DeadGolden0/Guardia-Bot-V2/internal/repository/repoerr"
	"github.com/google/uuid"
)

const defaultStageStatus = "In progress"

// Service implements the project lifecycle: creation, membership changes,
// progress/task edits, and termination through the gate. Every operation
// takes the acting caller's identity and validates authority against the
// stored document before mutating anything.
type Service struct {
	repo     Repository
	platform Platform
	notify   Notifier
	audit    AuditLog
	gate     *TerminationGate
	logger   *slog.Logger
}

// NewService creates a new project lifecycle service.
func NewService(repo Repository, platform Platform, notify Notifier, auditLog AuditLog, gate *TerminationGate, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		platform: platform,
		notify:   notify,
		audit:    auditLog,
		gate:     gate,
		logger:   logger,
	}
}

// StartProject creates a new project group led by callerID. The document is
// claimed first (atomic insert guarded by the active-leader and active-group
// uniqueness constraints), then roles and channels are provisioned. On
// provisioning failure the claim is released and already-created resources
// are rolled back best-effort.
func (s *Service) StartProject(ctx context.Context, callerID string, groupNumber int) (*Project, error) {
	if groupNumber <= 0 {
		return nil, ErrInvalidGroupNumber
	}

	proj := &Project{
		ID:                 uuid.NewString(),
		GroupNumber:        groupNumber,
		LeaderID:           callerID,
		MemberIDs:          []string{callerID},
		Progress:           0,
		TechDocsStatus:     defaultStageStatus,
		PresentationStatus: defaultStageStatus,
		Status:             StatusActive,
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		switch {
		case errors.Is(err, repoerr.ErrDuplicateLeader):
			existing, lookupErr := s.repo.GetActiveByLeader(ctx, callerID)
			if lookupErr == nil {
				return nil, fmt.Errorf("%w: group %d", ErrCallerAlreadyLeader, existing.GroupNumber)
			}
			return nil, ErrCallerAlreadyLeader
		case errors.Is(err, repoerr.ErrDuplicateGroup):
			return nil, fmt.Errorf("%w: group %d", ErrGroupNumberTaken, groupNumber)
		}
		return nil, fmt.Errorf("creating project: %w", err)
	}

	prov, err := s.provision(ctx, proj)
	if err != nil {
		s.rollbackProvision(ctx, proj, prov)
		if delErr := s.repo.Delete(ctx, proj.ID); delErr != nil {
			s.logger.Error("releasing claim after failed provisioning",
				"project", proj.ID, "group", proj.GroupNumber, "error", delErr)
		}
		s.recordAudit(ctx, proj, callerID, audit.ActionProvisionFailed, map[string]any{
			"roles":    prov.roleIDs,
			"channels": prov.channelIDs,
			"cause":    err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrProvisionFailed, err)
	}

	proj.RoleID = prov.roleID
	proj.LeaderRoleID = prov.leaderRoleID
	proj.ChannelResources = prov.channels
	if err := s.repo.SetResources(ctx, proj.ID, prov.roleID, prov.leaderRoleID, prov.channels); err != nil {
		s.rollbackProvision(ctx, proj, prov)
		if delErr := s.repo.Delete(ctx, proj.ID); delErr != nil {
			s.logger.Error("releasing claim after failed resource write",
				"project", proj.ID, "group", proj.GroupNumber, "error", delErr)
		}
		return nil, fmt.Errorf("storing project resources: %w", err)
	}

	s.renderInfo(ctx, proj)
	s.notifyCaller(ctx, callerID, Event{
		Kind:        EventProjectCreated,
		GroupNumber: proj.GroupNumber,
		ActorID:     callerID,
		Transient:   true,
	})
	s.recordAudit(ctx, proj, callerID, audit.ActionProjectStarted, nil)

	s.logger.Info("project started", "group", proj.GroupNumber, "leader", callerID)
	return proj, nil
}

// provisioned tracks platform handles created so far, so a partial failure
// can be rolled back and reconciled.
type provisioned struct {
	roleID       string
	leaderRoleID string
	channels     []ChannelResource
	roleIDs      []string
	channelIDs   []string
}

func (s *Service) provision(ctx context.Context, proj *Project) (provisioned, error) {
	var prov provisioned

	leaderRoleID, err := s.platform.CreateRole(ctx, RoleSpec{
		Name:        fmt.Sprintf("Lead Group %d", proj.GroupNumber),
		Color:       "Gold",
		Mentionable: true,
	})
	if err != nil {
		return prov, fmt.Errorf("creating leader role: %w", err)
	}
	prov.leaderRoleID = leaderRoleID
	prov.roleIDs = append(prov.roleIDs, leaderRoleID)

	roleID, err := s.platform.CreateRole(ctx, RoleSpec{
		Name:        fmt.Sprintf("Group %d", proj.GroupNumber),
		Color:       "Blue",
		Mentionable: true,
	})
	if err != nil {
		return prov, fmt.Errorf("creating group role: %w", err)
	}
	prov.roleID = roleID
	prov.roleIDs = append(prov.roleIDs, roleID)

	if err := s.platform.GrantRole(ctx, proj.LeaderID, roleID); err != nil {
		return prov, fmt.Errorf("granting group role to leader: %w", err)
	}
	if err := s.platform.GrantRole(ctx, proj.LeaderID, leaderRoleID); err != nil {
		return prov, fmt.Errorf("granting leader role to leader: %w", err)
	}

	categoryID, err := s.platform.CreateChannel(ctx, ChannelSpec{
		Name: fmt.Sprintf("Group %d", proj.GroupNumber),
		Kind: KindCategory,
	})
	if err != nil {
		return prov, fmt.Errorf("creating category: %w", err)
	}
	prov.channels = append(prov.channels, ChannelResource{ID: categoryID, Kind: KindCategory})
	prov.channelIDs = append(prov.channelIDs, categoryID)

	children := []ChannelSpec{
		{Name: "project-info", Kind: KindInfo, ParentID: categoryID, ReadOnly: true},
		{Name: "discussion", Kind: KindDiscussion, ParentID: categoryID},
		{Name: "documents", Kind: KindDocuments, ParentID: categoryID},
		{Name: "voice", Kind: KindVoice, ParentID: categoryID},
	}
	for _, spec := range children {
		id, err := s.platform.CreateChannel(ctx, spec)
		if err != nil {
			return prov, fmt.Errorf("creating %s channel: %w", spec.Kind, err)
		}
		prov.channels = append(prov.channels, ChannelResource{ID: id, Kind: spec.Kind})
		prov.channelIDs = append(prov.channelIDs, id)
	}

	return prov, nil
}

// rollbackProvision deletes whatever provisioning managed to create.
// Individual failures are logged with the handle so an operator can
// reconcile by hand.
func (s *Service) rollbackProvision(ctx context.Context, proj *Project, prov provisioned) {
	for i := len(prov.channelIDs) - 1; i >= 0; i-- {
		if err := s.platform.DeleteChannel(ctx, prov.channelIDs[i]); err != nil {
			s.logger.Error("rollback: deleting channel",
				"group", proj.GroupNumber, "channel", prov.channelIDs[i], "error", err)
		}
	}
	for _, roleID := range prov.roleIDs {
		if err := s.platform.DeleteRole(ctx, roleID); err != nil {
			s.logger.Error("rollback: deleting role",
				"group", proj.GroupNumber, "role", roleID, "error", err)
		}
	}
}

// AddMember appends memberID to the caller's project and grants the group
// role. The role grant is eventual: a grant failure is logged, not fatal.
func (s *Service) AddMember(ctx context.Context, callerID, memberID string) error {
	proj, err := s.leaderProject(ctx, callerID)
	if err != nil {
		return err
	}
	if proj.HasMember(memberID) {
		return ErrAlreadyMember
	}

	if err := s.repo.AddMember(ctx, proj.ID, memberID); err != nil {
		return fmt.Errorf("adding member: %w", err)
	}
	proj.MemberIDs = append(proj.MemberIDs, memberID)

	if err := s.platform.GrantRole(ctx, memberID, proj.RoleID); err != nil {
		s.logger.Error("granting role to new member",
			"group", proj.GroupNumber, "member", memberID, "role", proj.RoleID, "error", err)
	}

	s.renderInfo(ctx, proj)
	ev := Event{Kind: EventMemberAdded, GroupNumber: proj.GroupNumber, ActorID: callerID, TargetID: memberID}
	s.notifyChannel(ctx, proj.Channel(KindDiscussion), ev)
	ev.Transient = true
	s.notifyCaller(ctx, callerID, ev)
	s.recordAudit(ctx, proj, callerID, audit.ActionMemberAdded, map[string]any{"member": memberID})
	return nil
}

// RemoveMember removes memberID from the caller's project (leader only).
// The leader cannot be removed this way.
func (s *Service) RemoveMember(ctx context.Context, callerID, memberID string) error {
	proj, err := s.leaderProject(ctx, callerID)
	if err != nil {
		return err
	}
	if memberID == proj.LeaderID {
		return ErrSelfRemovalForbidden
	}
	if !proj.HasMember(memberID) {
		return ErrMemberNotFound
	}

	if err := s.removeFromProject(ctx, proj, memberID); err != nil {
		return err
	}

	ev := Event{Kind: EventMemberRemoved, GroupNumber: proj.GroupNumber, ActorID: callerID, TargetID: memberID}
	s.notifyChannel(ctx, proj.Channel(KindDiscussion), ev)
	ev.Transient = true
	s.notifyCaller(ctx, callerID, ev)
	s.recordAudit(ctx, proj, callerID, audit.ActionMemberRemoved, map[string]any{"member": memberID})
	return nil
}

// LeaveProject removes the caller from their project. The leader must
// terminate the project instead of leaving it.
func (s *Service) LeaveProject(ctx context.Context, callerID string) error {
	proj, err := s.memberProject(ctx, callerID)
	if err != nil {
		return err
	}
	if callerID == proj.LeaderID {
		return ErrLeaderCannotLeave
	}

	if err := s.removeFromProject(ctx, proj, callerID); err != nil {
		return err
	}

	ev := Event{Kind: EventMemberLeft, GroupNumber: proj.GroupNumber, ActorID: callerID}
	s.notifyChannel(ctx, proj.Channel(KindDiscussion), ev)
	ev.Transient = true
	s.notifyCaller(ctx, callerID, ev)
	s.recordAudit(ctx, proj, callerID, audit.ActionMemberLeft, nil)
	return nil
}

func (s *Service) removeFromProject(ctx context.Context, proj *Project, memberID string) error {
	if err := s.repo.RemoveMember(ctx, proj.ID, memberID); err != nil {
		return fmt.Errorf("removing member: %w", err)
	}
	kept := proj.MemberIDs[:0]
	for _, m := range proj.MemberIDs {
		if m != memberID {
			kept = append(kept, m)
		}
	}
	proj.MemberIDs = kept

	if err := s.platform.RevokeRole(ctx, memberID, proj.RoleID); err != nil {
		s.logger.Error("revoking role from member",
			"group", proj.GroupNumber, "member", memberID, "role", proj.RoleID, "error", err)
	}

	s.renderInfo(ctx, proj)
	return nil
}

// EditProject updates progress and stage statuses. At least one field must
// be set; progress must stay within [0,100]. Any project member may edit.
func (s *Service) EditProject(ctx context.Context, callerID string, upd DetailsUpdate) error {
	proj, err := s.memberProject(ctx, callerID)
	if err != nil {
		return err
	}
	if upd.IsEmpty() {
		return ErrNoChangeSpecified
	}
	if upd.Progress != nil && (*upd.Progress < 0 || *upd.Progress > 100) {
		return ErrProgressInvalid
	}

	if err := s.repo.UpdateDetails(ctx, proj.ID, upd); err != nil {
		return fmt.Errorf("updating project details: %w", err)
	}
	if upd.Progress != nil {
		proj.Progress = *upd.Progress
	}
	if upd.TechDocsStatus != nil {
		proj.TechDocsStatus = *upd.TechDocsStatus
	}
	if upd.PresentationStatus != nil {
		proj.PresentationStatus = *upd.PresentationStatus
	}

	s.renderInfo(ctx, proj)
	s.notifyCaller(ctx, callerID, Event{
		Kind:        EventProjectEdited,
		GroupNumber: proj.GroupNumber,
		ActorID:     callerID,
		Transient:   true,
	})
	s.recordAudit(ctx, proj, callerID, audit.ActionProjectEdited, nil)
	return nil
}

// EditTask assigns taskText as memberID's single current task, replacing
// any previous one (leader only).
func (s *Service) EditTask(ctx context.Context, callerID, memberID, taskText string) error {
	proj, err := s.leaderProject(ctx, callerID)
	if err != nil {
		return err
	}
	if !proj.HasMember(memberID) {
		return ErrMemberNotFound
	}

	if err := s.repo.UpsertTask(ctx, proj.ID, memberID, taskText); err != nil {
		return fmt.Errorf("upserting task: %w", err)
	}
	replaced := false
	for i := range proj.Tasks {
		if proj.Tasks[i].MemberID == memberID {
			proj.Tasks[i].Task = taskText
			replaced = true
			break
		}
	}
	if !replaced {
		proj.Tasks = append(proj.Tasks, Task{MemberID: memberID, Task: taskText})
	}

	ev := Event{Kind: EventTaskAssigned, GroupNumber: proj.GroupNumber, ActorID: callerID, TargetID: memberID, Task: taskText}
	s.notifyChannel(ctx, proj.Channel(KindDiscussion), ev)
	s.renderInfo(ctx, proj)
	ev.Transient = true
	s.notifyCaller(ctx, callerID, ev)
	s.recordAudit(ctx, proj, callerID, audit.ActionTaskAssigned, map[string]any{"member": memberID})
	return nil
}

// AddChannel creates an extra text or voice channel under the project's
// category and records it so termination cleans it up (leader only).
func (s *Service) AddChannel(ctx context.Context, callerID, kind, name string) (string, error) {
	var channelKind ChannelKind
	switch kind {
	case "text":
		channelKind = KindDiscussion
	case "voice":
		channelKind = KindVoice
	default:
		return "", ErrChannelKindInvalid
	}

	proj, err := s.leaderProject(ctx, callerID)
	if err != nil {
		return "", err
	}
	categoryID := proj.Channel(KindCategory)
	if categoryID == "" {
		return "", fmt.Errorf("project %d has no category channel", proj.GroupNumber)
	}

	id, err := s.platform.CreateChannel(ctx, ChannelSpec{Name: name, Kind: channelKind, ParentID: categoryID})
	if err != nil {
		return "", fmt.Errorf("creating channel: %w", err)
	}
	if err := s.repo.AddChannel(ctx, proj.ID, ChannelResource{ID: id, Kind: channelKind}); err != nil {
		return "", fmt.Errorf("recording channel: %w", err)
	}

	s.notifyCaller(ctx, callerID, Event{
		Kind:        EventChannelAdded,
		GroupNumber: proj.GroupNumber,
		ActorID:     callerID,
		TargetID:    id,
		Transient:   true,
	})
	s.recordAudit(ctx, proj, callerID, audit.ActionChannelAdded, map[string]any{"channel": id, "kind": kind})
	return id, nil
}

// RequestTermination opens the termination decision window for the caller's
// project (leader only). The returned token must be resolved within the
// window or the request times out and the project stays active.
func (s *Service) RequestTermination(ctx context.Context, callerID string) (*DecisionToken, error) {
	proj, err := s.leaderProject(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.gate.Open(ctx, proj, callerID)
}

// ResolveTermination forwards a confirm/cancel click to the gate.
func (s *Service) ResolveTermination(ctx context.Context, tokenID, callerID string, choice Decision) error {
	return s.gate.Resolve(ctx, tokenID, callerID, choice)
}

// Info returns the active project the caller belongs to (read-only; works
// while a confirmation is pending).
func (s *Service) Info(ctx context.Context, callerID string) (*Project, error) {
	return s.memberProject(ctx, callerID)
}

// ListActive returns all active projects.
func (s *Service) ListActive(ctx context.Context) ([]*Project, error) {
	return s.repo.ListActive(ctx)
}

// ForceDelete removes a project by group number without a confirmation
// window. Admin surface: resource deletion is best-effort, the document is
// always removed.
func (s *Service) ForceDelete(ctx context.Context, adminID string, groupNumber int) error {
	proj, err := s.repo.GetActiveByGroup(ctx, groupNumber)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("loading project: %w", err)
	}

	releaseResources(ctx, s.platform, s.logger, proj)
	if err := s.repo.Delete(ctx, proj.ID); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	s.recordAudit(ctx, proj, adminID, audit.ActionProjectForceDeleted, nil)
	s.logger.Info("project force-deleted", "group", groupNumber, "admin", adminID)
	return nil
}

// ClearLock clears a stuck confirmationPending flag left by a crash
// mid-window. Admin surface.
func (s *Service) ClearLock(ctx context.Context, adminID string, groupNumber int) error {
	proj, err := s.repo.GetActiveByGroup(ctx, groupNumber)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("loading project: %w", err)
	}

	if err := s.repo.ClearConfirmationPending(ctx, proj.ID); err != nil {
		return fmt.Errorf("clearing confirmation lock: %w", err)
	}
	s.recordAudit(ctx, proj, adminID, audit.ActionLockCleared, nil)
	return nil
}

func (s *Service) leaderProject(ctx context.Context, callerID string) (*Project, error) {
	proj, err := s.repo.GetActiveByLeader(ctx, callerID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrNotLeader
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return proj, nil
}

func (s *Service) memberProject(ctx context.Context, callerID string) (*Project, error) {
	proj, err := s.repo.GetActiveByMember(ctx, callerID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrNoActiveProject
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return proj, nil
}

func (s *Service) renderInfo(ctx context.Context, proj *Project) {
	if err := s.notify.RenderInfo(ctx, proj); err != nil {
		s.logger.Error("rendering project info", "group", proj.GroupNumber, "error", err)
	}
}

func (s *Service) notifyCaller(ctx context.Context, callerID string, ev Event) {
	if err := s.notify.NotifyCaller(ctx, callerID, ev); err != nil {
		s.logger.Error("notifying caller", "caller", callerID, "kind", ev.Kind, "error", err)
	}
}

func (s *Service) notifyChannel(ctx context.Context, channelID string, ev Event) {
	if channelID == "" {
		s.logger.Warn("no channel for notification", "group", ev.GroupNumber, "kind", ev.Kind)
		return
	}
	if err := s.notify.NotifyChannel(ctx, channelID, ev); err != nil {
		s.logger.Error("notifying channel", "channel", channelID, "kind", ev.Kind, "error", err)
	}
}

func (s *Service) recordAudit(ctx context.Context, proj *Project, actorID string, action audit.Action, details map[string]any) {
	entry := &audit.Entry{
		ActorID: actorID,
		Action:  action,
	}
	if proj != nil {
		entry.ProjectID = proj.ID
		entry.GroupNumber = proj.GroupNumber
	}
	if len(details) > 0 {
		if data, err := json.Marshal(details); err == nil {
			entry.Details = string(data)
		}
	}
	s.audit.Record(ctx, entry)
}
