package audit

import "context"

// Repository provides persistence operations for audit entries.
type Repository interface {
	Log(ctx context.Context, entry *Entry) error
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
}

// ListOptions provides filtering options for listing audit entries.
type ListOptions struct {
	ProjectID   string
	GroupNumber int
	Action      *Action
	Limit       int
	Offset      int
}
