package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"TrackDigest/internal/domain"
	"TrackDigest/internal/ports"
)

var _ ports.MatchStore = (*DB)(nil)

// UpsertMatch replaces the score, terms, and timestamp for a
// (document, track) pair, so re-matching after track edits is safe.
func (db *DB) UpsertMatch(ctx context.Context, m domain.TrackMatch) error {
	terms, err := json.Marshal(m.MatchedTerms)
	if err != nil {
		return fmt.Errorf("marshal matched terms: %w", err)
	}

	query, args, err := db.builder.
		Insert("track_matches").
		Columns("document_id", "track_name", "score", "matched_terms", "matched_at").
		Values(m.DocumentID, m.TrackName, m.Score, string(terms), m.MatchedAt.UnixMilli()).
		Suffix(`ON CONFLICT(document_id, track_name) DO UPDATE SET
			score = excluded.score,
			matched_terms = excluded.matched_terms,
			matched_at = excluded.matched_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build match upsert: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match %s/%s: %w", m.DocumentID, m.TrackName, err)
	}
	return nil
}

// ListMatches loads the full track-match relation as a snapshot.
func (db *DB) ListMatches(ctx context.Context) ([]domain.TrackMatch, error) {
	return db.listMatches(ctx, nil)
}

// ListMatchesBetween loads matches stamped inside [from, to).
func (db *DB) ListMatchesBetween(ctx context.Context, from, to time.Time) ([]domain.TrackMatch, error) {
	return db.listMatches(ctx, sq.And{
		sq.GtOrEq{"matched_at": from.UnixMilli()},
		sq.Lt{"matched_at": to.UnixMilli()},
	})
}

func (db *DB) listMatches(ctx context.Context, where sq.Sqlizer) ([]domain.TrackMatch, error) {
	builder := db.builder.
		Select("document_id", "track_name", "score", "matched_terms", "matched_at").
		From("track_matches").
		OrderBy("matched_at ASC", "document_id ASC", "track_name ASC")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build matches query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.TrackMatch
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func scanMatch(rows *sql.Rows) (domain.TrackMatch, error) {
	var (
		m         domain.TrackMatch
		terms     string
		matchedAt int64
	)
	if err := rows.Scan(&m.DocumentID, &m.TrackName, &m.Score, &terms, &matchedAt); err != nil {
		return domain.TrackMatch{}, fmt.Errorf("scan match: %w", err)
	}
	if err := json.Unmarshal([]byte(terms), &m.MatchedTerms); err != nil {
		return domain.TrackMatch{}, fmt.Errorf("decode matched terms for %s/%s: %w", m.DocumentID, m.TrackName, err)
	}
	m.MatchedAt = time.UnixMilli(matchedAt).UTC()
	return m, nil
}
