package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema. The partial unique indexes on
// projects(leader_id) and projects(group_number) are what make Create an
// atomic claim: a second active project for the same leader or group
// number is rejected by the store, not by a check-then-write.
func (db *DB) RunMigrations() error {
	migration := `
-- Projects table
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    group_number INTEGER NOT NULL,
    leader_id TEXT NOT NULL,
    role_id TEXT NOT NULL DEFAULT '',
    leader_role_id TEXT NOT NULL DEFAULT '',
    progress INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
    tech_docs_status TEXT NOT NULL DEFAULT 'In progress',
    presentation_status TEXT NOT NULL DEFAULT 'In progress',
    status TEXT NOT NULL CHECK(status IN ('active', 'terminated')),
    confirmation_pending INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_active_leader ON projects(leader_id) WHERE status = 'active';
CREATE UNIQUE INDEX IF NOT EXISTS idx_active_group ON projects(group_number) WHERE status = 'active';

-- Project members (leader always present)
CREATE TABLE IF NOT EXISTS project_members (
    project_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (project_id, member_id),
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_member_projects ON project_members(member_id);

-- Channel resources owned by a project, in creation order
CREATE TABLE IF NOT EXISTS project_channels (
    project_id TEXT NOT NULL,
    channel_id TEXT NOT NULL,
    kind TEXT NOT NULL CHECK(kind IN ('category', 'info', 'discussion', 'documents', 'voice')),
    position INTEGER NOT NULL,
    PRIMARY KEY (project_id, channel_id),
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

-- One open task per member per project; re-assignment overwrites
CREATE TABLE IF NOT EXISTS project_tasks (
    project_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    task TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (project_id, member_id),
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

-- Audit log for manual reconciliation
CREATE TABLE IF NOT EXISTS audit_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id TEXT,
    group_number INTEGER,
    actor_id TEXT NOT NULL,
    action TEXT NOT NULL,
    details TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_audit_project ON audit_log(project_id);
CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_log(created_at);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
