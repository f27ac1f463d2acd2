package audit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/audit"
	"github.com/DeadGolden0/Guardia-Bot-V2/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecordFillsTimestamp(t *testing.T) {
	repo := &mocks.AuditRepository{}
	svc := audit.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var logged *audit.Entry
	repo.On("Log", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		logged = args.Get(1).(*audit.Entry)
	}).Return(nil)

	svc.Record(context.Background(), &audit.Entry{ActorID: "u1", Action: audit.ActionProjectStarted})

	require.NotNil(t, logged)
	require.False(t, logged.CreatedAt.IsZero())
}

func TestRecordSwallowsFailures(t *testing.T) {
	repo := &mocks.AuditRepository{}
	svc := audit.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	repo.On("Log", mock.Anything, mock.Anything).Return(errors.New("db locked"))

	// Must not panic or propagate.
	svc.Record(context.Background(), &audit.Entry{Action: audit.ActionMemberAdded})
	svc.Record(context.Background(), nil)

	repo.AssertNumberOfCalls(t, "Log", 1)
}
