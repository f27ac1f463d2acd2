package sqlite

import (
	"context"
	"fmt"

	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/audit"
)

// AuditRepository implements repository.AuditRepository for SQLite
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Log appends an audit entry
func (r *AuditRepository) Log(ctx context.Context, entry *audit.Entry) error {
	query := `
		INSERT INTO audit_log (project_id, group_number, actor_id, action, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.ProjectID,
		entry.GroupNumber,
		entry.ActorID,
		string(entry.Action),
		entry.Details,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit entry: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// List returns audit entries, newest first
func (r *AuditRepository) List(ctx context.Context, opts audit.ListOptions) ([]audit.Entry, error) {
	query := `
		SELECT id, project_id, group_number, actor_id, action, details, created_at
		FROM audit_log
		WHERE 1=1
	`
	args := []any{}

	if opts.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, opts.ProjectID)
	}
	if opts.GroupNumber != 0 {
		query += " AND group_number = ?"
		args = append(args, opts.GroupNumber)
	}
	if opts.Action != nil {
		query += " AND action = ?"
		args = append(args, string(*opts.Action))
	}

	query += " ORDER BY created_at DESC, id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			entry  audit.Entry
			action string
		)
		err := rows.Scan(
			&entry.ID,
			&entry.ProjectID,
			&entry.GroupNumber,
			&entry.ActorID,
			&action,
			&entry.Details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Action = audit.Action(action)
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}

	return entries, nil
}
