// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS people (
	id TEXT PRIMARY KEY,
	name TEXT,
	url TEXT,
	profile_image TEXT,
	location TEXT,
	headline TEXT,
	about TEXT,
	current_position TEXT,
	current_company TEXT,
	email TEXT,
	phone TEXT,
	websites TEXT NOT NULL DEFAULT '[]',
	connected INTEGER NOT NULL DEFAULT 0,
	connection_degree INTEGER NOT NULL DEFAULT 0 CHECK(connection_degree >= 0),
	status TEXT NOT NULL DEFAULT 'Not Started (1/12)',
	engagement INTEGER NOT NULL DEFAULT 0 CHECK(engagement >= 0),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_people_created_at ON people(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_people_email ON people(email);
CREATE INDEX IF NOT EXISTS idx_people_status ON people(status);

CREATE TABLE IF NOT EXISTS sync_state (
	service TEXT PRIMARY KEY,
	last_sync_time DATETIME,
	last_sync_token TEXT,
	status TEXT CHECK(status IN ('idle', 'syncing', 'error')),
	error_message TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sync_log (
	id TEXT PRIMARY KEY,
	source_service TEXT NOT NULL,
	source_id TEXT NOT NULL,
	person_id TEXT NOT NULL,
	imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(source_service, source_id)
);

CREATE INDEX IF NOT EXISTS idx_sync_log_person ON sync_log(person_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
