package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/DeadGolden0/Guardia-Bot-V2/internal/domain/project"
	"github.com/DeadGolden0/Guardia-Bot-V2/internal/repository"
)

// ProjectRepository implements repository.ProjectRepository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `
	id, group_number, leader_id, role_id, leader_role_id,
	progress, tech_docs_status, presentation_status,
	status, confirmation_pending, created_at, updated_at
`

// Create persists a new project and its initial member set. The partial
// unique indexes on active leader and active group number make this the
// atomic claim; violations map to ErrDuplicateLeader / ErrDuplicateGroup.
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO projects (
			id, group_number, leader_id, role_id, leader_role_id,
			progress, tech_docs_status, presentation_status, status, confirmation_pending
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		proj.ID,
		proj.GroupNumber,
		proj.LeaderID,
		proj.RoleID,
		proj.LeaderRoleID,
		proj.Progress,
		proj.TechDocsStatus,
		proj.PresentationStatus,
		string(proj.Status),
		boolToInt(proj.ConfirmationPending),
	)
	if err != nil {
		if isUniqueViolation(err) {
			if violatedColumn(err, "projects.leader_id") {
				return repository.ErrDuplicateLeader
			}
			if violatedColumn(err, "projects.group_number") {
				return repository.ErrDuplicateGroup
			}
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	for _, memberID := range proj.MemberIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO project_members (project_id, member_id) VALUES (?, ?)`,
			proj.ID, memberID,
		)
		if err != nil {
			return fmt.Errorf("failed to add initial member: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*project.Project, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetActiveByLeader retrieves the active project led by leaderID
func (r *ProjectRepository) GetActiveByLeader(ctx context.Context, leaderID string) (*project.Project, error) {
	return r.getOne(ctx, "leader_id = ? AND status = 'active'", leaderID)
}

// GetActiveByGroup retrieves the active project with the given group number
func (r *ProjectRepository) GetActiveByGroup(ctx context.Context, groupNumber int) (*project.Project, error) {
	return r.getOne(ctx, "group_number = ? AND status = 'active'", groupNumber)
}

// GetActiveByMember retrieves the active project memberID belongs to
func (r *ProjectRepository) GetActiveByMember(ctx context.Context, memberID string) (*project.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE status = 'active'
		  AND id IN (SELECT project_id FROM project_members WHERE member_id = ?)
	`

	proj, err := r.scanOne(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	if err := r.loadAssociations(ctx, proj); err != nil {
		return nil, err
	}
	return proj, nil
}

// ListActive returns all active projects ordered by group number
func (r *ProjectRepository) ListActive(ctx context.Context) ([]*project.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE status = 'active'
		ORDER BY group_number ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*project.Project
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, proj)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	for _, proj := range projects {
		if err := r.loadAssociations(ctx, proj); err != nil {
			return nil, err
		}
	}

	return projects, nil
}

// SetResources stores the platform handles allocated during provisioning
func (r *ProjectRepository) SetResources(ctx context.Context, id, roleID, leaderRoleID string, channels []project.ChannelResource) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE projects
		SET role_id = ?, leader_role_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, roleID, leaderRoleID, id)
	if err != nil {
		return fmt.Errorf("failed to set role handles: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	} else if affected == 0 {
		return repository.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM project_channels WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear channel resources: %w", err)
	}
	for i, ch := range channels {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO project_channels (project_id, channel_id, kind, position)
			VALUES (?, ?, ?, ?)
		`, id, ch.ID, string(ch.Kind), i)
		if err != nil {
			return fmt.Errorf("failed to store channel resource: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AddChannel appends one channel resource to a project
func (r *ProjectRepository) AddChannel(ctx context.Context, id string, ch project.ChannelResource) error {
	query := `
		INSERT INTO project_channels (project_id, channel_id, kind, position)
		VALUES (?, ?, ?, (
			SELECT COALESCE(MAX(position), -1) + 1 FROM project_channels WHERE project_id = ?
		))
	`

	_, err := r.db.ExecContext(ctx, query, id, ch.ID, string(ch.Kind), id)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to add channel resource: %w", err)
	}
	return nil
}

// AddMember inserts memberID into the project's member set
func (r *ProjectRepository) AddMember(ctx context.Context, id, memberID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO project_members (project_id, member_id) VALUES (?, ?)`,
		id, memberID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveMember deletes memberID from the project's member set
func (r *ProjectRepository) RemoveMember(ctx context.Context, id, memberID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = ? AND member_id = ?`,
		id, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateDetails applies a field-level update to progress and stage statuses
func (r *ProjectRepository) UpdateDetails(ctx context.Context, id string, upd project.DetailsUpdate) error {
	if upd.IsEmpty() {
		return nil
	}

	query := "UPDATE projects SET updated_at = CURRENT_TIMESTAMP"
	args := []any{}
	if upd.Progress != nil {
		query += ", progress = ?"
		args = append(args, *upd.Progress)
	}
	if upd.TechDocsStatus != nil {
		query += ", tech_docs_status = ?"
		args = append(args, *upd.TechDocsStatus)
	}
	if upd.PresentationStatus != nil {
		query += ", presentation_status = ?"
		args = append(args, *upd.PresentationStatus)
	}
	query += " WHERE id = ? AND status = 'active'"
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update project details: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpsertTask assigns task as memberID's single current task
func (r *ProjectRepository) UpsertTask(ctx context.Context, id, memberID, task string) error {
	query := `
		INSERT INTO project_tasks (project_id, member_id, task)
		VALUES (?, ?, ?)
		ON CONFLICT (project_id, member_id)
		DO UPDATE SET task = excluded.task, updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query, id, memberID, task)
	if err != nil {
		return fmt.Errorf("failed to upsert task: %w", err)
	}
	return nil
}

// SetConfirmationPending flips the pending flag false -> true with a
// conditional update. Losing the compare-and-set returns ErrConflict; a
// missing or terminated project returns ErrNotFound.
func (r *ProjectRepository) SetConfirmationPending(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET confirmation_pending = 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'active' AND confirmation_pending = 0
	`, id)
	if err != nil {
		return fmt.Errorf("failed to set confirmation pending: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var pending int
	err = r.db.QueryRowContext(ctx,
		`SELECT confirmation_pending FROM projects WHERE id = ? AND status = 'active'`, id,
	).Scan(&pending)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to inspect confirmation flag: %w", err)
	}
	return repository.ErrConflict
}

// ClearConfirmationPending resets the pending flag
func (r *ProjectRepository) ClearConfirmationPending(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET confirmation_pending = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to clear confirmation pending: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Terminate marks an active project terminated and clears the pending flag
func (r *ProjectRepository) Terminate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET status = 'terminated', confirmation_pending = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'active'
	`, id)
	if err != nil {
		return fmt.Errorf("failed to terminate project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a project document and its associations
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) getOne(ctx context.Context, where string, args ...any) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE ` + where

	proj, err := r.scanOne(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := r.loadAssociations(ctx, proj); err != nil {
		return nil, err
	}
	return proj, nil
}

func (r *ProjectRepository) scanOne(ctx context.Context, query string, args ...any) (*project.Project, error) {
	row := r.db.QueryRowContext(ctx, query, args...)

	proj, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return proj, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*project.Project, error) {
	var (
		proj      project.Project
		status    string
		pending   int
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(
		&proj.ID,
		&proj.GroupNumber,
		&proj.LeaderID,
		&proj.RoleID,
		&proj.LeaderRoleID,
		&proj.Progress,
		&proj.TechDocsStatus,
		&proj.PresentationStatus,
		&status,
		&pending,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	proj.Status = project.Status(status)
	proj.ConfirmationPending = pending != 0
	proj.CreatedAt = createdAt
	proj.UpdatedAt = updatedAt
	return &proj, nil
}

func (r *ProjectRepository) loadAssociations(ctx context.Context, proj *project.Project) error {
	memberRows, err := r.db.QueryContext(ctx,
		`SELECT member_id FROM project_members WHERE project_id = ? ORDER BY added_at ASC, member_id ASC`,
		proj.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load members: %w", err)
	}
	defer memberRows.Close()
	for memberRows.Next() {
		var memberID string
		if err := memberRows.Scan(&memberID); err != nil {
			return fmt.Errorf("failed to scan member: %w", err)
		}
		proj.MemberIDs = append(proj.MemberIDs, memberID)
	}
	if err = memberRows.Err(); err != nil {
		return fmt.Errorf("error iterating member rows: %w", err)
	}

	channelRows, err := r.db.QueryContext(ctx,
		`SELECT channel_id, kind FROM project_channels WHERE project_id = ? ORDER BY position ASC`,
		proj.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load channels: %w", err)
	}
	defer channelRows.Close()
	for channelRows.Next() {
		var (
			channelID string
			kind      string
		)
		if err := channelRows.Scan(&channelID, &kind); err != nil {
			return fmt.Errorf("failed to scan channel: %w", err)
		}
		proj.ChannelResources = append(proj.ChannelResources, project.ChannelResource{
			ID:   channelID,
			Kind: project.ChannelKind(kind),
		})
	}
	if err = channelRows.Err(); err != nil {
		return fmt.Errorf("error iterating channel rows: %w", err)
	}

	taskRows, err := r.db.QueryContext(ctx,
		`SELECT member_id, task FROM project_tasks WHERE project_id = ? ORDER BY member_id ASC`,
		proj.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	defer taskRows.Close()
	for taskRows.Next() {
		var task project.Task
		if err := taskRows.Scan(&task.MemberID, &task.Task); err != nil {
			return fmt.Errorf("failed to scan task: %w", err)
		}
		proj.Tasks = append(proj.Tasks, task)
	}
	if err = taskRows.Err(); err != nil {
		return fmt.Errorf("error iterating task rows: %w", err)
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
