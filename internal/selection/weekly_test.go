package selection

import (
	"testing"
	"time"

	"TrackDigest/internal/domain"
)

func TestSelectWeeklyShortlistRanksAndCaps(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC)

	pool := []domain.SelectedDocument{
		{Document: domain.Document{ID: "low"}, TrackName: "ml", Score: 1, MatchedAt: at},
		{Document: domain.Document{ID: "high"}, TrackName: "ml", Score: 8, MatchedAt: at},
		{Document: domain.Document{ID: "judged"}, TrackName: "ml", Score: 2, MatchedAt: at,
			Judgment: &domain.RelevanceJudgment{DocumentID: "judged", Value: 3}},
	}

	entries := SelectWeeklyShortlist(pool, 2)
	if len(entries) != 2 {
		t.Fatalf("expected topN=2 entries, got %d", len(entries))
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Fatalf("expected 1-based ranks, got %d and %d", entries[0].Rank, entries[1].Rank)
	}
	if entries[0].Document.ID != "judged" {
		t.Fatalf("judged document must rank first, got %s", entries[0].Document.ID)
	}
	if entries[1].Document.ID != "high" {
		t.Fatalf("expected keyword order within unjudged partition, got %s", entries[1].Document.ID)
	}
}

func TestSelectWeeklyShortlistEmptyPool(t *testing.T) {
	t.Parallel()

	entries := SelectWeeklyShortlist(nil, 5)
	if len(entries) != 0 {
		t.Fatalf("expected empty shortlist for empty pool, got %d entries", len(entries))
	}

	related := RelatedToPick(nil, "anything")
	if len(related.Shown) != 0 || related.More != 0 {
		t.Fatalf("expected zero related papers for empty pool, got %+v", related)
	}
}

func TestRelatedToPickCapsAndCountsOverflow(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC)
	pool := make([]domain.SelectedDocument, 0, 8)
	ids := []string{"pick", "r1", "r2", "r3", "r4", "r5", "r6", "r7"}
	for i, id := range ids {
		pool = append(pool, domain.SelectedDocument{
			Document:  domain.Document{ID: id},
			TrackName: "ml",
			Score:     10 - i,
			MatchedAt: at,
		})
	}

	related := RelatedToPick(pool, "pick")
	if len(related.Shown) != RelatedDisplayCap {
		t.Fatalf("expected %d shown, got %d", RelatedDisplayCap, len(related.Shown))
	}
	if related.More != 2 {
		t.Fatalf("expected overflow of 2, got %d", related.More)
	}
	for _, doc := range related.Shown {
		if doc.Document.ID == "pick" {
			t.Fatal("chosen pick must be excluded from the related list")
		}
	}
}

func TestWeekPoolScopesToISOWeekAndPriorDeliveries(t *testing.T) {
	t.Parallel()

	inWeek := time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC)   // 2026-W35
	lastWeek := time.Date(2026, time.August, 19, 12, 0, 0, 0, time.UTC) // 2026-W34
	week := domain.ISOWeekString(inWeek)

	snap := Snapshot{
		Matches: []domain.TrackMatch{
			{DocumentID: "fresh", TrackName: "ml", Score: 3, MatchedAt: inWeek},
			{DocumentID: "fresh", TrackName: "agents", Score: 5, MatchedAt: inWeek},
			{DocumentID: "stale", TrackName: "ml", Score: 9, MatchedAt: lastWeek},
			{DocumentID: "spent", TrackName: "ml", Score: 9, MatchedAt: inWeek},
		},
	}
	weeklySent := map[string]domain.WeeklyDeliveryRecord{
		"spent": {DocumentID: "spent", Week: domain.ISOWeekString(lastWeek)},
	}

	pool := WeekPool(snap, week, weeklySent)
	if len(pool) != 1 {
		t.Fatalf("expected a single pooled document, got %d", len(pool))
	}
	if pool[0].Document.ID != "fresh" {
		t.Fatalf("unexpected pool entry %s", pool[0].Document.ID)
	}
	if pool[0].TrackName != "agents" || pool[0].Score != 5 {
		t.Fatalf("expected best-ranked pair per document, got %+v", pool[0])
	}
}
