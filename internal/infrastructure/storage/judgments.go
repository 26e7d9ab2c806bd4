package storage

import (
	"context"
	"fmt"
	"time"

	"TrackDigest/internal/domain"
	"TrackDigest/internal/ports"
)

var _ ports.JudgmentStore = (*DB)(nil)

const upsertJudgmentSQL = `
INSERT INTO judgments (document_id, value, justification, judged_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(document_id) DO UPDATE SET
    value = excluded.value,
    justification = excluded.justification,
    judged_at = excluded.judged_at`

// UpsertJudgment stores a relevance judgment, last write wins.
func (db *DB) UpsertJudgment(ctx context.Context, j domain.RelevanceJudgment) error {
	if err := validateJudgment(j); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, upsertJudgmentSQL,
		j.DocumentID, j.Value, j.Justification, j.JudgedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert judgment %s: %w", j.DocumentID, err)
	}
	return nil
}

// UpsertJudgments writes a batch inside one transaction: a failure on any
// row rolls every row back, so no document of the batch ends up judged while
// another stays unjudged.
func (db *DB) UpsertJudgments(ctx context.Context, js []domain.RelevanceJudgment) error {
	if len(js) == 0 {
		return nil
	}
	for _, j := range js {
		if err := validateJudgment(j); err != nil {
			return err
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin judgment batch: %w", err)
	}

	for _, j := range js {
		if _, err := tx.ExecContext(ctx, upsertJudgmentSQL,
			j.DocumentID, j.Value, j.Justification, j.JudgedAt.UnixMilli()); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert judgment %s: %w", j.DocumentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit judgment batch: %w", err)
	}
	return nil
}

// ListJudgments loads the full judgment relation keyed by document ID.
func (db *DB) ListJudgments(ctx context.Context) (map[string]domain.RelevanceJudgment, error) {
	query, args, err := db.builder.
		Select("document_id", "value", "justification", "judged_at").
		From("judgments").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build judgments query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query judgments: %w", err)
	}
	defer rows.Close()

	result := map[string]domain.RelevanceJudgment{}
	for rows.Next() {
		var (
			j        domain.RelevanceJudgment
			judgedAt int64
		)
		if err := rows.Scan(&j.DocumentID, &j.Value, &j.Justification, &judgedAt); err != nil {
			return nil, fmt.Errorf("scan judgment: %w", err)
		}
		j.JudgedAt = time.UnixMilli(judgedAt).UTC()
		result[j.DocumentID] = j
	}
	return result, rows.Err()
}

func validateJudgment(j domain.RelevanceJudgment) error {
	if j.DocumentID == "" {
		return fmt.Errorf("judgment missing document id")
	}
	if j.Value < 1 || j.Value > 5 {
		return fmt.Errorf("judgment %s: value %d out of 1-5 range", j.DocumentID, j.Value)
	}
	return nil
}
