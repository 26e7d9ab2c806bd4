package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"TrackDigest/internal/domain"
	"TrackDigest/internal/ports"
)

var _ ports.DocumentStore = (*DB)(nil)

// SaveDocument upserts paper metadata. Re-discovery refreshes the mutable
// columns and the updated_at stamp; the identifier never changes.
func (db *DB) SaveDocument(ctx context.Context, doc domain.Document) error {
	now := time.Now().UnixMilli()

	query, args, err := db.builder.
		Insert("documents").
		Columns("id", "title", "abstract", "url", "pdf_url", "source", "published_at", "created_at", "updated_at").
		Values(doc.ID, doc.Title, doc.Abstract, doc.URL, doc.PDFURL, doc.Source, doc.PublishedAt.UnixMilli(), now, now).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			abstract = excluded.abstract,
			url = excluded.url,
			pdf_url = excluded.pdf_url,
			source = excluded.source,
			published_at = excluded.published_at,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build document upsert: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	return nil
}

// GetDocuments resolves documents by ID. Missing IDs are simply absent from
// the result map; the caller treats them as documents without links.
func (db *DB) GetDocuments(ctx context.Context, ids []string) (map[string]domain.Document, error) {
	result := make(map[string]domain.Document, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := db.builder.
		Select("id", "title", "abstract", "url", "pdf_url", "source", "published_at").
		From("documents").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build documents query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			doc         domain.Document
			publishedAt int64
		)
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Abstract, &doc.URL, &doc.PDFURL, &doc.Source, &publishedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.PublishedAt = time.UnixMilli(publishedAt).UTC()
		result[doc.ID] = doc
	}
	return result, rows.Err()
}
