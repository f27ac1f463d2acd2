package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrInvalidInput indicates a nil or malformed entry.
var ErrInvalidInput = errors.New("invalid audit entry")

// Service handles audit log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new audit service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record persists an audit entry. Audit failures never abort the calling
// operation; they are logged and dropped.
func (s *Service) Record(ctx context.Context, entry *Entry) {
	if entry == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.repo.Log(ctx, entry); err != nil && s.logger != nil {
		s.logger.Error("audit write failed",
			"action", entry.Action,
			"project", entry.ProjectID,
			"group", entry.GroupNumber,
			"error", err)
	}
}

// List returns audit entries with filtering.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	return s.repo.List(ctx, opts)
}
