package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"TrackDigest/internal/domain"
	"TrackDigest/internal/ports"
)

var _ ports.DeliveryLedger = (*DB)(nil)

// MarkDelivered appends a daily ledger row. Re-marking the same
// (document, day, track) is a no-op rather than an error or a duplicate.
func (db *DB) MarkDelivered(ctx context.Context, rec domain.DeliveryRecord) error {
	query, args, err := db.builder.
		Insert("deliveries").
		Columns("document_id", "day", "track_name", "sent_at").
		Values(rec.DocumentID, rec.Day, rec.TrackName, rec.SentAt.UnixMilli()).
		Suffix("ON CONFLICT(document_id, day, track_name) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build delivery insert: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark delivered %s: %w", rec.DocumentID, err)
	}
	return nil
}

// ListDeliveredSince loads ledger rows with a calendar day at or after the
// given day. The ledger itself is never pruned.
func (db *DB) ListDeliveredSince(ctx context.Context, day time.Time) ([]domain.DeliveryRecord, error) {
	query, args, err := db.builder.
		Select("document_id", "day", "track_name", "sent_at").
		From("deliveries").
		Where(sq.GtOrEq{"day": domain.DayString(day)}).
		OrderBy("day ASC", "document_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build deliveries query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	var records []domain.DeliveryRecord
	for rows.Next() {
		var (
			rec    domain.DeliveryRecord
			sentAt int64
		)
		if err := rows.Scan(&rec.DocumentID, &rec.Day, &rec.TrackName, &sentAt); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		rec.SentAt = time.UnixMilli(sentAt).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MarkWeeklyDelivered records a deep-dive pick, upserting so a retried
// send never errors or duplicates.
func (db *DB) MarkWeeklyDelivered(ctx context.Context, rec domain.WeeklyDeliveryRecord) error {
	query, args, err := db.builder.
		Insert("weekly_deliveries").
		Columns("document_id", "week", "sent_at").
		Values(rec.DocumentID, rec.Week, rec.SentAt.UnixMilli()).
		Suffix(`ON CONFLICT(document_id) DO UPDATE SET
			week = excluded.week,
			sent_at = excluded.sent_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build weekly delivery upsert: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark weekly delivered %s: %w", rec.DocumentID, err)
	}
	return nil
}

// ListWeeklyDelivered loads the weekly ledger keyed by document ID.
func (db *DB) ListWeeklyDelivered(ctx context.Context) (map[string]domain.WeeklyDeliveryRecord, error) {
	query, args, err := db.builder.
		Select("document_id", "week", "sent_at").
		From("weekly_deliveries").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build weekly deliveries query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query weekly deliveries: %w", err)
	}
	defer rows.Close()

	result := map[string]domain.WeeklyDeliveryRecord{}
	for rows.Next() {
		var (
			rec    domain.WeeklyDeliveryRecord
			sentAt int64
		)
		if err := rows.Scan(&rec.DocumentID, &rec.Week, &sentAt); err != nil {
			return nil, fmt.Errorf("scan weekly delivery: %w", err)
		}
		rec.SentAt = time.UnixMilli(sentAt).UTC()
		result[rec.DocumentID] = rec
	}
	return result, rows.Err()
}
