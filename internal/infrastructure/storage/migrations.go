package storage

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "documents: paper metadata for link resolution",
		SQL: `
CREATE TABLE documents (
    id           TEXT PRIMARY KEY,
    title        TEXT NOT NULL,
    abstract     TEXT NOT NULL DEFAULT '',
    url          TEXT NOT NULL DEFAULT '',
    pdf_url      TEXT NOT NULL DEFAULT '',
    source       TEXT NOT NULL DEFAULT '',
    published_at INTEGER NOT NULL,
    created_at   INTEGER NOT NULL,
    updated_at   INTEGER NOT NULL
);

CREATE INDEX idx_documents_published ON documents(published_at DESC);
`,
	},
	{
		Version:     2,
		Description: "track_matches: per-track keyword scores",
		SQL: `
CREATE TABLE track_matches (
    document_id   TEXT NOT NULL,
    track_name    TEXT NOT NULL,
    score         INTEGER NOT NULL CHECK (score >= 0),
    matched_terms TEXT NOT NULL DEFAULT '[]',
    matched_at    INTEGER NOT NULL,

    PRIMARY KEY (document_id, track_name)
);

CREATE INDEX idx_matches_track      ON track_matches(track_name);
CREATE INDEX idx_matches_matched_at ON track_matches(matched_at DESC);
`,
	},
	{
		Version:     3,
		Description: "judgments: external 1-5 relevance judgments",
		SQL: `
CREATE TABLE judgments (
    document_id   TEXT PRIMARY KEY,
    value         INTEGER NOT NULL CHECK (value BETWEEN 1 AND 5),
    justification TEXT NOT NULL DEFAULT '',
    judged_at     INTEGER NOT NULL
);
`,
	},
	{
		Version:     4,
		Description: "deliveries: append-only daily delivery ledger",
		SQL: `
CREATE TABLE deliveries (
    document_id TEXT NOT NULL,
    day         TEXT NOT NULL,
    track_name  TEXT NOT NULL,
    sent_at     INTEGER NOT NULL,

    PRIMARY KEY (document_id, day, track_name)
);

CREATE INDEX idx_deliveries_day ON deliveries(day DESC);
CREATE INDEX idx_deliveries_doc ON deliveries(document_id);
`,
	},
	{
		Version:     5,
		Description: "weekly_deliveries: deep-dive ledger keyed by ISO week",
		SQL: `
CREATE TABLE weekly_deliveries (
    document_id TEXT PRIMARY KEY,
    week        TEXT NOT NULL,
    sent_at     INTEGER NOT NULL
);

CREATE INDEX idx_weekly_week ON weekly_deliveries(week);
`,
	},
}

func (db *DB) migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
