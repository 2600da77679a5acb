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

	// A single connection keeps :memory: databases and connection-scoped
	// pragmas consistent across queries.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema if it does not exist yet
func (db *DB) RunMigrations() error {
	migration := `
-- Grant proposals
CREATE TABLE IF NOT EXISTS grant_proposals (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER,
    organization_name TEXT NOT NULL,
    project_title TEXT NOT NULL,
    mission TEXT NOT NULL,
    description TEXT NOT NULL,
    target_population TEXT NOT NULL,
    amount TEXT NOT NULL,
    timeline TEXT NOT NULL,
    goals TEXT NOT NULL,
    generated_proposal TEXT,
    status TEXT NOT NULL DEFAULT 'draft' CHECK(status IN ('draft', 'generated', 'completed')),
    share_token TEXT NOT NULL UNIQUE,
    is_public INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_proposals_user ON grant_proposals(user_id);

-- Collaborator roster, one row per identity per proposal
CREATE TABLE IF NOT EXISTS proposal_collaborators (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    proposal_id INTEGER NOT NULL,
    identity_key TEXT NOT NULL,
    user_id INTEGER,
    guest_name TEXT,
    role TEXT NOT NULL DEFAULT 'editor' CHECK(role IN ('owner', 'editor', 'viewer')),
    joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (proposal_id, identity_key),
    FOREIGN KEY (proposal_id) REFERENCES grant_proposals(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_collaborators_proposal ON proposal_collaborators(proposal_id);

-- Field update log (append only)
CREATE TABLE IF NOT EXISTS proposal_updates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    proposal_id INTEGER NOT NULL,
    user_id INTEGER,
    guest_name TEXT,
    field TEXT NOT NULL,
    old_value TEXT,
    new_value TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_updates_proposal ON proposal_updates(proposal_id, created_at);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
