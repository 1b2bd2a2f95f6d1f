package sqlite

import "database/sql"

// EnsureSchema creates the tables if they do not exist. SQLite is the local
// and test driver, so it owns its own DDL; Postgres schema setup is handled
// by deployment migrations.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            display_name TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS collections (
            collection_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            kind TEXT NOT NULL,
            name TEXT NOT NULL,
            type TEXT NOT NULL DEFAULT '',
            archived BOOLEAN NOT NULL DEFAULT 0,
            created_at TIMESTAMP NOT NULL,
            updated_at TIMESTAMP NOT NULL,
            UNIQUE(user_id, kind, name)
        );`,
		`CREATE TABLE IF NOT EXISTS list_items (
            item_id TEXT PRIMARY KEY,
            collection_id TEXT NOT NULL REFERENCES collections(collection_id),
            item_text TEXT NOT NULL,
            completed BOOLEAN NOT NULL DEFAULT 0,
            status TEXT,
            priority INTEGER NOT NULL DEFAULT 0,
            due_date TIMESTAMP,
            notes TEXT,
            quantity INTEGER NOT NULL DEFAULT 1,
            created_at TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS schedule_events (
            event_id TEXT PRIMARY KEY,
            collection_id TEXT NOT NULL REFERENCES collections(collection_id),
            title TEXT NOT NULL,
            start_time TIMESTAMP,
            end_time TIMESTAMP,
            location TEXT,
            description TEXT,
            event_type TEXT,
            all_day BOOLEAN NOT NULL DEFAULT 0,
            reminder_minutes INTEGER,
            recurrence_rule TEXT,
            cancelled BOOLEAN NOT NULL DEFAULT 0,
            created_at TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS memory_items (
            memory_item_id TEXT PRIMARY KEY,
            collection_id TEXT NOT NULL REFERENCES collections(collection_id),
            memory_key TEXT NOT NULL,
            memory_value TEXT NOT NULL DEFAULT '',
            memory_type TEXT,
            importance INTEGER NOT NULL DEFAULT 0,
            tags TEXT,
            expires_at TIMESTAMP,
            private BOOLEAN NOT NULL DEFAULT 0,
            created_at TIMESTAMP NOT NULL,
            UNIQUE(collection_id, memory_key)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_collections_user_kind
            ON collections(user_id, kind, updated_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
