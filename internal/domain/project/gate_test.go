package project_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/project"
	"github.com/DeadGolden0/Guardia-Bot-V2/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// openWindow opens a termination window for u1's project and returns the token.
func openWindow(t *testing.T, f *fixture) *project.DecisionToken {
	t.Helper()

	proj := activeProject("u1", 42, "m1")
	f.repo.On("GetActiveByLeader", mock.Anything, "u1").Return(proj, nil)
	f.repo.On("SetConfirmationPending", mock.Anything, "p1").Return(nil).Once()
	f.notifier.On("PromptTermination", mock.Anything, "disc", mock.Anything).Return(nil).Maybe()

	token, err := f.svc.RequestTermination(context.Background(), "u1")
	require.NoError(t, err)
	return token
}

func TestGate_OpenSetsPendingAndDeadline(t *testing.T) {
	f := newFixture(t, project.GateOptions{Window: 15 * time.Second})

	before := f.clk.Now()
	token := openWindow(t, f)

	require.NotEmpty(t, token.ID)
	require.Equal(t, "p1", token.ProjectID)
	require.Equal(t, 42, token.GroupNumber)
	require.Equal(t, "u1", token.CallerID)
	require.Equal(t, "disc", token.ChannelID)
	require.Equal(t, before.Add(15*time.Second), token.Deadline)

	f.repo.AssertCalled(t, "SetConfirmationPending", mock.Anything, "p1")
	f.notifier.AssertCalled(t, "PromptTermination", mock.Anything, "disc", token)
}

func TestGate_OpenWhileWindowOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.GateOptions{})
	f.allowNotifications()

	f.repo.On("GetActiveByLeader", ctx, "u1").Return(activeProject("u1", 42), nil)
	f.repo.On("SetConfirmationPending", ctx, "p1").Return(nil).Once()
	f.repo.On("SetConfirmationPending", ctx, "p1").Return(repository.ErrConflict)

	_, err := f.svc.RequestTermination(ctx, "u1")
	require.NoError(t, err)

	_, err = f.svc.RequestTermination(ctx, "u1")
	require.ErrorIs(t, err, project.ErrConfirmationPending)
}

func TestGate_ConfirmTerminates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.GateOptions{})
	f.allowNotifications()

	proj := activeProject("u1", 42, "m1")
	token := openWindow(t, f)

	f.repo.On("GetByID", ctx, "p1").Return(proj, nil)
	f.platform.On("DeleteChannel", ctx, mock.Anything).Return(nil)
	f.platform.On("DeleteRole", ctx, mock.Anything).Return(nil)
	f.repo.On("Terminate", ctx, "p1").Return(nil)

	err := f.svc.ResolveTermination(ctx, token.ID, "u1", project.DecisionConfirm)
	require.NoError(t, err)

	f.platform.AssertNumberOfCalls(t, "DeleteChannel", 5)
	f.platform.AssertNumberOfCalls(t, "DeleteRole", 2)
	f.repo.AssertCalled(t, "Terminate", ctx, "p1")
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	// First resolution wins; the token is gone.
	err = f.svc.ResolveTermination(ctx, token.ID, "u1", project.DecisionConfirm)
	require.ErrorIs(t, err, project.ErrWindowClosed)
}

func TestGate_ConfirmDeletesWhenConfigured(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.GateOptions{DeleteOnTerminate: true})
	f.allowNotifications()

	token := openWindow(t, f)

	f.repo.On("GetByID", ctx, "p1").Return(activeProject("u1", 42), nil)
	f.platform.On("DeleteChannel", ctx, mock.Anything).Return(nil)
	f.platform.On("DeleteRole", ctx, mock.Anything).Return(nil)
	f.repo.On("Delete", ctx, "p1").Return(nil)

	err := f.svc.ResolveTermination(ctx, token.ID, "u1", project.DecisionConfirm)
	require.NoError(t, err)

	f.repo.AssertCalled(t, "Delete", ctx, "p1")
	f.repo.AssertNotCalled(t, "Terminate", mock.Anything, mock.Anything)
}

func TestGate_ConfirmSurvivesPartialCleanupFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.GateOptions{})
	f.allowNotifications()

	token := openWindow(t, f)

	f.repo.On("GetByID", ctx, "p1").Return(activeProject("u1", 42), nil)
	f.platform.On("DeleteChannel", ctx, "voice").Return(errors.New("already gone"))
	f.platform.On("DeleteChannel", ctx, mock.Anything).Return(nil)
	f.platform.On("DeleteRole", ctx, mock.Anything).Return(nil)
	f.repo.On("Terminate", ctx, "p1").Return(nil)

	err := f.svc.ResolveTermination(ctx, token.ID, "u1", project.DecisionConfirm)
	require.NoError(t, err)
	f.repo.AssertCalled(t, "Terminate", ctx, "p1")
}

func TestGate_CancelKeepsProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.GateOptions{})

	token := openWindow(t, f)

	f.repo.On("ClearConfirmationPending", ctx, "p1").Return(nil)
	f.notifier.On("NotifyChannel", ctx, "disc", mock.MatchedBy(func(ev project.Event) bool {
		return ev.Kind == project.EventTerminationCancelled
	})).Return(nil)
	f.notifier.On("NotifyCaller", ctx, "u1", mock.Anything).Return(nil)

	err := f.svc.ResolveTermination(ctx, token.ID, "u1", project.DecisionCancel)
	require.NoError(t, err)

	f.repo.AssertCalled(t, "ClearConfirmationPending", ctx, "p1")
	f.platform.AssertNotCalled(t, "DeleteChannel", mock.Anything, mock.Anything)
	f.platform.AssertNotCalled(t, "DeleteRole", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "Terminate", mock.Anything, mock.Anything)

	err = f.svc.ResolveTermination(ctx, token.ID, "u1", project.DecisionCancel)
	require.ErrorIs(t, err, project.ErrWindowClosed)
}

func TestGate_TimeoutClearsLock(t *testing.T) {
	f := newFixture(t, project.GateOptions{Window: 15 * time.Second})

	token := openWindow(t, f)

	f.repo.On("ClearConfirmationPending", mock.Anything, "p1").Return(nil)
	f.notifier.On("NotifyChannel", mock.Anything, "disc", mock.MatchedBy(func(ev project.Event) bool {
		return ev.Kind == project.EventTerminationTimeout
	})).Return(nil)

	f.clk.Add(16 * time.Second)

	f.repo.AssertCalled(t, "ClearConfirmationPending", mock.Anything, "p1")
	f.platform.AssertNotCalled(t, "DeleteChannel", mock.Anything, mock.Anything)
	f.notifier.AssertExpectations(t)

	// A late click lands after the timer already resolved the window.
	err := f.svc.ResolveTermination(context.Background(), token.ID, "u1", project.DecisionConfirm)
	require.ErrorIs(t, err, project.ErrWindowClosed)
}

func TestGate_TimeoutAfterResolutionIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.GateOptions{Window: 15 * time.Second})
	f.allowNotifications()

	token := openWindow(t, f)

	f.repo.On("GetByID", ctx, "p1").Return(activeProject("u1", 42), nil)
	f.platform.On("DeleteChannel", ctx, mock.Anything).Return(nil)
	f.platform.On("DeleteRole", ctx, mock.Anything).Return(nil)
	f.repo.On("Terminate", ctx, "p1").Return(nil)

	require.NoError(t, f.svc.ResolveTermination(ctx, token.ID, "u1", project.DecisionConfirm))

	f.clk.Add(time.Minute)

	f.repo.AssertNotCalled(t, "ClearConfirmationPending", mock.Anything, mock.Anything)
}

func TestGate_ResolveWrongCaller(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, project.GateOptions{})
	f.allowNotifications()

	token := openWindow(t, f)

	err := f.svc.ResolveTermination(ctx, token.ID, "m1", project.DecisionConfirm)
	require.ErrorIs(t, err, project.ErrDecisionNotAllowed)

	// The window stays open for the caller who opened it.
	f.repo.On("ClearConfirmationPending", ctx, "p1").Return(nil)
	err = f.svc.ResolveTermination(ctx, token.ID, "u1", project.DecisionCancel)
	require.NoError(t, err)
}

func TestGate_ResolveUnknownToken(t *testing.T) {
	f := newFixture(t, project.GateOptions{})

	err := f.svc.ResolveTermination(context.Background(), "no-such-token", "u1", project.DecisionConfirm)
	require.ErrorIs(t, err, project.ErrWindowClosed)
}

func TestGate_ResolveBadDecision(t *testing.T) {
	f := newFixture(t, project.GateOptions{})

	err := f.svc.ResolveTermination(context.Background(), "whatever", "u1", project.Decision("maybe"))
	require.Error(t, err)
	require.NotErrorIs(t, err, project.ErrWindowClosed)
}
