package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/audit"
	"github.com/DeadGolden0/Guardia-Bot-V2/internal/repository/repoerr"
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// DefaultDecisionWindow bounds the termination confirm/cancel window.
const DefaultDecisionWindow = 15 * time.Second

// Decision is a termination window choice.
type Decision string

const (
	DecisionConfirm Decision = "confirm"
	DecisionCancel  Decision = "cancel"
)

// DecisionToken identifies one open termination decision window. It is
// single-fire: the first of confirm, cancel or timeout wins and the other
// two become no-ops.
type DecisionToken struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	GroupNumber int       `json:"group_number"`
	CallerID    string    `json:"caller_id"`
	ChannelID   string    `json:"channel_id,omitempty"`
	Deadline    time.Time `json:"deadline"`

	timer *clock.Timer
}

// GateOptions configures the termination gate.
type GateOptions struct {
	// Window is the decision window length; DefaultDecisionWindow if zero.
	Window time.Duration
	// DeleteOnTerminate hard-deletes the document instead of marking it
	// terminated.
	DeleteOnTerminate bool
}

// TerminationGate serializes termination attempts per project and bounds
// the decision time. The persisted confirmationPending flag is the only
// cross-request mutex: it survives restarts, at the cost of a stuck lock
// needing ClearLock when the process dies mid-window.
type TerminationGate struct {
	repo     Repository
	platform Platform
	notify   Notifier
	audit    AuditLog
	clock    clock.Clock
	opts     GateOptions
	logger   *slog.Logger

	mu     sync.Mutex
	tokens map[string]*DecisionToken
}

// NewTerminationGate creates a termination gate. Pass a mock clock in tests
// to simulate the window instead of waiting on the wall clock.
func NewTerminationGate(repo Repository, platform Platform, notify Notifier, auditLog AuditLog, clk clock.Clock, opts GateOptions, logger *slog.Logger) *TerminationGate {
	if opts.Window <= 0 {
		opts.Window = DefaultDecisionWindow
	}
	if clk == nil {
		clk = clock.New()
	}
	return &TerminationGate{
		repo:     repo,
		platform: platform,
		notify:   notify,
		audit:    auditLog,
		clock:    clk,
		opts:     opts,
		logger:   logger,
		tokens:   make(map[string]*DecisionToken),
	}
}

// Open claims the project's confirmationPending flag (compare-and-set on
// the stored document) and arms the decision timer. Fails with
// ErrConfirmationPending when a window is already open.
func (g *TerminationGate) Open(ctx context.Context, proj *Project, callerID string) (*DecisionToken, error) {
	if err := g.repo.SetConfirmationPending(ctx, proj.ID); err != nil {
		switch {
		case errors.Is(err, repoerr.ErrConflict):
			return nil, ErrConfirmationPending
		case errors.Is(err, repoerr.ErrNotFound):
			return nil, ErrNoActiveProject
		}
		return nil, fmt.Errorf("locking project for termination: %w", err)
	}

	token := &DecisionToken{
		ID:          uuid.NewString(),
		ProjectID:   proj.ID,
		GroupNumber: proj.GroupNumber,
		CallerID:    callerID,
		ChannelID:   proj.Channel(KindDiscussion),
		Deadline:    g.clock.Now().Add(g.opts.Window),
	}

	g.mu.Lock()
	g.tokens[token.ID] = token
	token.timer = g.clock.AfterFunc(g.opts.Window, func() {
		g.OnTimeout(token)
	})
	g.mu.Unlock()

	if err := g.notify.PromptTermination(ctx, token.ChannelID, token); err != nil {
		// The window still times out and unlocks on its own.
		g.logger.Error("presenting termination prompt",
			"group", proj.GroupNumber, "token", token.ID, "error", err)
	}

	g.recordAudit(ctx, token, callerID, audit.ActionTerminationOpened)
	g.logger.Info("termination window opened",
		"group", proj.GroupNumber, "token", token.ID, "deadline", token.Deadline)
	return token, nil
}

// Resolve applies a confirm or cancel choice to an open window. Only the
// caller who opened the window may resolve it; any call after the first
// resolution or past the deadline fails with ErrWindowClosed.
func (g *TerminationGate) Resolve(ctx context.Context, tokenID, callerID string, choice Decision) error {
	if choice != DecisionConfirm && choice != DecisionCancel {
		return fmt.Errorf("unknown decision %q", choice)
	}

	g.mu.Lock()
	token, ok := g.tokens[tokenID]
	if !ok {
		g.mu.Unlock()
		return ErrWindowClosed
	}
	if callerID != token.CallerID {
		g.mu.Unlock()
		return ErrDecisionNotAllowed
	}
	if g.clock.Now().After(token.Deadline) {
		// Past the deadline the timer owns the outcome.
		g.mu.Unlock()
		return ErrWindowClosed
	}
	delete(g.tokens, tokenID)
	token.timer.Stop()
	g.mu.Unlock()

	if choice == DecisionConfirm {
		return g.confirm(ctx, token, callerID)
	}
	return g.cancel(ctx, token, callerID)
}

// OnTimeout resolves an expired window: the pending flag is cleared, the
// project stays active, resources stay intact. No-op when the token was
// already resolved.
func (g *TerminationGate) OnTimeout(token *DecisionToken) {
	g.mu.Lock()
	if _, ok := g.tokens[token.ID]; !ok {
		g.mu.Unlock()
		return
	}
	delete(g.tokens, token.ID)
	g.mu.Unlock()

	ctx := context.Background()
	if err := g.repo.ClearConfirmationPending(ctx, token.ProjectID); err != nil {
		g.logger.Error("clearing confirmation lock after timeout",
			"group", token.GroupNumber, "project", token.ProjectID, "error", err)
	}

	g.notifyChannel(ctx, token, Event{
		Kind:        EventTerminationTimeout,
		GroupNumber: token.GroupNumber,
		ActorID:     token.CallerID,
	})
	g.recordAudit(ctx, token, token.CallerID, audit.ActionTerminationTimeout)
	g.logger.Warn("termination window timed out", "group", token.GroupNumber, "token", token.ID)
}

func (g *TerminationGate) confirm(ctx context.Context, token *DecisionToken, callerID string) error {
	proj, err := g.repo.GetByID(ctx, token.ProjectID)
	if err != nil {
		return fmt.Errorf("loading project for termination: %w", err)
	}

	releaseResources(ctx, g.platform, g.logger, proj)

	if g.opts.DeleteOnTerminate {
		if err := g.repo.Delete(ctx, proj.ID); err != nil {
			return fmt.Errorf("deleting terminated project: %w", err)
		}
	} else {
		if err := g.repo.Terminate(ctx, proj.ID); err != nil {
			return fmt.Errorf("marking project terminated: %w", err)
		}
	}

	if err := g.notify.NotifyCaller(ctx, callerID, Event{
		Kind:        EventTerminationConfirmed,
		GroupNumber: token.GroupNumber,
		ActorID:     callerID,
		Transient:   true,
	}); err != nil {
		g.logger.Error("notifying termination confirmation",
			"group", token.GroupNumber, "caller", callerID, "error", err)
	}

	g.recordAudit(ctx, token, callerID, audit.ActionTerminationConfirmed)
	g.logger.Info("project terminated", "group", token.GroupNumber, "leader", callerID)
	return nil
}

func (g *TerminationGate) cancel(ctx context.Context, token *DecisionToken, callerID string) error {
	if err := g.repo.ClearConfirmationPending(ctx, token.ProjectID); err != nil {
		return fmt.Errorf("clearing confirmation lock: %w", err)
	}

	g.notifyChannel(ctx, token, Event{
		Kind:        EventTerminationCancelled,
		GroupNumber: token.GroupNumber,
		ActorID:     callerID,
	})
	if err := g.notify.NotifyCaller(ctx, callerID, Event{
		Kind:        EventTerminationCancelled,
		GroupNumber: token.GroupNumber,
		ActorID:     callerID,
		Transient:   true,
	}); err != nil {
		g.logger.Error("notifying termination cancellation",
			"group", token.GroupNumber, "caller", callerID, "error", err)
	}

	g.recordAudit(ctx, token, callerID, audit.ActionTerminationCancelled)
	g.logger.Info("termination cancelled", "group", token.GroupNumber, "leader", callerID)
	return nil
}

func (g *TerminationGate) notifyChannel(ctx context.Context, token *DecisionToken, ev Event) {
	if token.ChannelID == "" {
		return
	}
	if err := g.notify.NotifyChannel(ctx, token.ChannelID, ev); err != nil {
		g.logger.Error("notifying channel", "channel", token.ChannelID, "kind", ev.Kind, "error", err)
	}
}

func (g *TerminationGate) recordAudit(ctx context.Context, token *DecisionToken, actorID string, action audit.Action) {
	g.audit.Record(ctx, &audit.Entry{
		ProjectID:   token.ProjectID,
		GroupNumber: token.GroupNumber,
		ActorID:     actorID,
		Action:      action,
	})
}

// releaseResources deletes all platform handles owned by a project.
// Individual failures are logged and swallowed so one missing resource
// never blocks the overall teardown.
func releaseResources(ctx context.Context, platform Platform, logger *slog.Logger, proj *Project) {
	for i := len(proj.ChannelResources) - 1; i >= 0; i-- {
		ch := proj.ChannelResources[i]
		if err := platform.DeleteChannel(ctx, ch.ID); err != nil {
			logger.Error("deleting project channel",
				"group", proj.GroupNumber, "channel", ch.ID, "kind", ch.Kind, "error", err)
		}
	}
	for _, roleID := range []string{proj.RoleID, proj.LeaderRoleID} {
		if roleID == "" {
			continue
		}
		if err := platform.DeleteRole(ctx, roleID); err != nil {
			logger.Error("deleting project role",
				"group", proj.GroupNumber, "role", roleID, "error", err)
		}
	}
}
