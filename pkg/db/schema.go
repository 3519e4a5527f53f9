package db

const (
	// SchemaV1 defines version 1 of the memoirs database schema.
	// Media lists live in a JSON column; their order is display order.
	SchemaV1 = `
CREATE TABLE IF NOT EXISTS memoirs_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS memoirs (
    id TEXT PRIMARY KEY,
    title TEXT,
    content TEXT,
    date TEXT,
    created_at TEXT,
    updated_at TEXT,
    media TEXT NOT NULL DEFAULT '[]',
    bookmark BOOLEAN NOT NULL DEFAULT FALSE,
    title_visible BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS memoirs_date_idx ON memoirs (date, created_at);
`
)
