package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrackDigest/internal/domain"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })
	return db
}

func TestMigrationsCreateTables(t *testing.T) {
	db := testDB(t)

	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	tables := []string{"documents", "track_matches", "judgments", "deliveries", "weekly_deliveries"}
	for _, table := range tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestSaveDocumentRefreshesOnRediscovery(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	doc := domain.Document{
		ID:          "arXiv:2608.00001",
		Title:       "First title",
		Abstract:    "Abstract.",
		URL:         "https://arxiv.org/abs/2608.00001",
		PublishedAt: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.SaveDocument(ctx, doc))

	doc.Title = "Revised title"
	doc.PDFURL = "https://arxiv.org/pdf/2608.00001"
	require.NoError(t, db.SaveDocument(ctx, doc))

	got, err := db.GetDocuments(ctx, []string{doc.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Revised title", got[doc.ID].Title)
	assert.Equal(t, "https://arxiv.org/pdf/2608.00001", got[doc.ID].PDFURL)
}

func TestUpsertMatchReplacesScoreAndTerms(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	m := domain.TrackMatch{
		DocumentID:   "doc-1",
		TrackName:    "rag",
		Score:        2,
		MatchedTerms: []string{"rag", "retrieval"},
		MatchedAt:    at,
	}
	require.NoError(t, db.UpsertMatch(ctx, m))

	m.Score = 5
	m.MatchedTerms = []string{"retrieval augmented generation", "rag"}
	m.MatchedAt = at.Add(time.Hour)
	require.NoError(t, db.UpsertMatch(ctx, m))

	matches, err := db.ListMatches(ctx)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 5, matches[0].Score)
	assert.Equal(t, []string{"retrieval augmented generation", "rag"}, matches[0].MatchedTerms)
	assert.True(t, matches[0].MatchedAt.Equal(at.Add(time.Hour)))
}

func TestListMatchesBetween(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "in", "late"} {
		require.NoError(t, db.UpsertMatch(ctx, domain.TrackMatch{
			DocumentID:   id,
			TrackName:    "ml",
			Score:        1,
			MatchedTerms: []string{"ml"},
			MatchedAt:    base.AddDate(0, 0, 3*i-3), // -3, 0, +3 days
		}))
	}

	matches, err := db.ListMatchesBetween(ctx, base, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "in", matches[0].DocumentID)
}

func TestUpsertJudgmentIdempotentLastWriteWins(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	j := domain.RelevanceJudgment{
		DocumentID:    "doc-1",
		Value:         3,
		Justification: "first pass",
		JudgedAt:      time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.UpsertJudgment(ctx, j))

	j.Value = 5
	j.Justification = "re-judged"
	require.NoError(t, db.UpsertJudgment(ctx, j))

	judgments, err := db.ListJudgments(ctx)
	require.NoError(t, err)
	require.Len(t, judgments, 1)
	assert.Equal(t, 5, judgments["doc-1"].Value)
	assert.Equal(t, "re-judged", judgments["doc-1"].Justification)
}

func TestUpsertJudgmentsBatchAtomic(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	batch := []domain.RelevanceJudgment{
		{DocumentID: "a", Value: 4, JudgedAt: at},
		{DocumentID: "b", Value: 9, JudgedAt: at}, // out of range
	}

	err := db.UpsertJudgments(ctx, batch)
	require.Error(t, err)

	judgments, listErr := db.ListJudgments(ctx)
	require.NoError(t, listErr)
	assert.Empty(t, judgments, "a failed batch must not leave partial writes")

	batch[1].Value = 2
	require.NoError(t, db.UpsertJudgments(ctx, batch))
	judgments, listErr = db.ListJudgments(ctx)
	require.NoError(t, listErr)
	assert.Len(t, judgments, 2)
}

func TestMarkDeliveredIdempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	rec := domain.DeliveryRecord{
		DocumentID: "doc-1",
		Day:        "2026-08-31",
		TrackName:  "ml",
		SentAt:     time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.MarkDelivered(ctx, rec))
	require.NoError(t, db.MarkDelivered(ctx, rec))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM deliveries").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestListDeliveredSince(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	sent := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	days := []string{"2026-08-20", "2026-08-24", "2026-08-31"}
	for _, day := range days {
		require.NoError(t, db.MarkDelivered(ctx, domain.DeliveryRecord{
			DocumentID: "doc-" + day,
			Day:        day,
			TrackName:  "ml",
			SentAt:     sent,
		}))
	}

	records, err := db.ListDeliveredSince(ctx, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2026-08-24", records[0].Day)
	assert.Equal(t, "2026-08-31", records[1].Day)
}

func TestMarkWeeklyDeliveredIdempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	rec := domain.WeeklyDeliveryRecord{
		DocumentID: "doc-1",
		Week:       "2026-W35",
		SentAt:     time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.MarkWeeklyDelivered(ctx, rec))
	require.NoError(t, db.MarkWeeklyDelivered(ctx, rec))

	sent, err := db.ListWeeklyDelivered(ctx)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "2026-W35", sent["doc-1"].Week)
}
