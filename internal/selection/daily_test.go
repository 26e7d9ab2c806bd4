package selection

import (
	"testing"
	"time"

	"TrackDigest/internal/domain"
)

var testDay = time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC)

func match(docID, track string, score int, at time.Time) domain.TrackMatch {
	return domain.TrackMatch{
		DocumentID:   docID,
		TrackName:    track,
		Score:        score,
		MatchedTerms: []string{"term"},
		MatchedAt:    at,
	}
}

func judged(docID string, value int) domain.RelevanceJudgment {
	return domain.RelevanceJudgment{
		DocumentID:    docID,
		Value:         value,
		Justification: "because",
		JudgedAt:      testDay,
	}
}

func TestSelectDailyJudgmentDominatesKeywordScore(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		Matches: []domain.TrackMatch{
			match("doc-5", "ml", 1, testDay),
			match("doc-4", "ml", 2, testDay),
			match("doc-3", "ml", 3, testDay),
			match("doc-raw", "ml", 99, testDay),
		},
		Judgments: map[string]domain.RelevanceJudgment{
			"doc-5": judged("doc-5", 5),
			"doc-4": judged("doc-4", 4),
			"doc-3": judged("doc-3", 3),
		},
	}

	sel := SelectDaily(snap, Options{Today: testDay})
	docs := sel.Tracks["ml"]
	if len(docs) != 4 {
		t.Fatalf("expected 4 documents, got %d", len(docs))
	}

	wantOrder := []string{"doc-5", "doc-4", "doc-3", "doc-raw"}
	for i, want := range wantOrder {
		if docs[i].Document.ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, docs[i].Document.ID)
		}
	}
}

func TestSelectDailyLowJudgmentStillBeatsUnjudged(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		Matches: []domain.TrackMatch{
			match("doc-low", "ml", 5, testDay),
			match("doc-high", "ml", 429, testDay),
			match("doc-mid", "ml", 1, testDay),
		},
		Judgments: map[string]domain.RelevanceJudgment{
			"doc-low": judged("doc-low", 2),
			"doc-mid": judged("doc-mid", 4),
		},
	}

	sel := SelectDaily(snap, Options{Today: testDay})
	docs := sel.Tracks["ml"]

	wantOrder := []string{"doc-mid", "doc-low", "doc-high"}
	for i, want := range wantOrder {
		if docs[i].Document.ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, docs[i].Document.ID)
		}
	}
}

func TestSelectDailyDedupIsPerDocumentNotPerTrack(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		Matches: []domain.TrackMatch{
			match("doc-1", "track-a", 3, testDay),
			match("doc-1", "track-b", 2, testDay),
			match("doc-2", "track-b", 1, testDay),
		},
		Delivered: []domain.DeliveryRecord{
			{DocumentID: "doc-1", Day: domain.DayString(testDay), TrackName: "track-a", SentAt: testDay},
		},
	}

	sel := SelectDaily(snap, Options{Today: testDay})

	if _, ok := sel.Tracks["track-a"]; ok {
		t.Fatalf("track-a should be empty and dropped, got %v", sel.Tracks["track-a"])
	}
	docs := sel.Tracks["track-b"]
	if len(docs) != 1 || docs[0].Document.ID != "doc-2" {
		t.Fatalf("expected only doc-2 under track-b, got %v", docs)
	}
}

func TestSelectDailyDedupWindowBoundary(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		Matches: []domain.TrackMatch{
			match("doc-7", "ml", 3, testDay),
			match("doc-8", "ml", 2, testDay),
			match("doc-10", "ml", 1, testDay),
		},
		Delivered: []domain.DeliveryRecord{
			{DocumentID: "doc-7", Day: domain.DayString(testDay.AddDate(0, 0, -7)), TrackName: "ml", SentAt: testDay},
			{DocumentID: "doc-8", Day: domain.DayString(testDay.AddDate(0, 0, -8)), TrackName: "ml", SentAt: testDay},
			{DocumentID: "doc-10", Day: domain.DayString(testDay.AddDate(0, 0, -10)), TrackName: "ml", SentAt: testDay},
		},
	}

	sel := SelectDaily(snap, Options{DedupDays: 7, Today: testDay})
	docs := sel.Tracks["ml"]
	if len(docs) != 2 {
		t.Fatalf("expected 2 eligible documents, got %d", len(docs))
	}
	for _, d := range docs {
		if d.Document.ID == "doc-7" {
			t.Fatal("document delivered exactly 7 days ago must stay excluded")
		}
	}
}

func TestSelectDailyCapFairness(t *testing.T) {
	t.Parallel()

	early := testDay.Add(-2 * time.Hour)
	late := testDay.Add(-1 * time.Hour)

	snap := Snapshot{
		Matches: []domain.TrackMatch{
			match("a1", "track-a", 9, early),
			match("a2", "track-a", 8, early),
			match("a3", "track-a", 7, early),
			match("b1", "track-b", 9, late),
			match("b2", "track-b", 8, late),
			match("b3", "track-b", 7, late),
		},
	}

	sel := SelectDaily(snap, Options{MaxItemsPerDigest: 4, MaxPerTrack: 2, Today: testDay})

	if sel.ItemCount != 4 {
		t.Fatalf("expected 4 total items, got %d", sel.ItemCount)
	}
	if sel.TrackCount != 2 {
		t.Fatalf("expected 2 tracks, got %d", sel.TrackCount)
	}
	for _, name := range []string{"track-a", "track-b"} {
		if got := len(sel.Tracks[name]); got != 2 {
			t.Fatalf("track %s should contribute 2 items, got %d", name, got)
		}
	}
}

func TestSelectDailyGlobalCapTruncatesAndDropsEmptyTracks(t *testing.T) {
	t.Parallel()

	early := testDay.Add(-3 * time.Hour)
	mid := testDay.Add(-2 * time.Hour)
	late := testDay.Add(-1 * time.Hour)

	snap := Snapshot{
		Matches: []domain.TrackMatch{
			match("a1", "track-a", 9, early),
			match("a2", "track-a", 8, early),
			match("b1", "track-b", 9, mid),
			match("b2", "track-b", 8, mid),
			match("c1", "track-c", 9, late),
		},
	}

	sel := SelectDaily(snap, Options{MaxItemsPerDigest: 3, MaxPerTrack: 2, Today: testDay})

	if sel.ItemCount != 3 {
		t.Fatalf("expected 3 items total, got %d", sel.ItemCount)
	}
	if len(sel.Tracks["track-a"]) != 2 {
		t.Fatalf("first track should keep both items, got %d", len(sel.Tracks["track-a"]))
	}
	if len(sel.Tracks["track-b"]) != 1 {
		t.Fatalf("second track should truncate to remaining room, got %d", len(sel.Tracks["track-b"]))
	}
	if _, ok := sel.Tracks["track-c"]; ok {
		t.Fatal("track emptied by the global cap must be dropped from the output")
	}

	wantOrder := []string{"track-a", "track-b"}
	if len(sel.TrackOrder) != len(wantOrder) {
		t.Fatalf("unexpected track order %v", sel.TrackOrder)
	}
	for i, name := range wantOrder {
		if sel.TrackOrder[i] != name {
			t.Fatalf("track order %d: expected %s, got %s", i, name, sel.TrackOrder[i])
		}
	}
}

func TestSelectDailyPerTrackCapHonorsTrackMaxPerDay(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		Matches: []domain.TrackMatch{
			match("a1", "track-a", 9, testDay),
			match("a2", "track-a", 8, testDay),
			match("a3", "track-a", 7, testDay),
		},
	}

	sel := SelectDaily(snap, Options{
		MaxPerTrack: 3,
		TrackCaps:   map[string]int{"track-a": 1},
		Today:       testDay,
	})

	if len(sel.Tracks["track-a"]) != 1 {
		t.Fatalf("track cap should win over global per-track cap, got %d items", len(sel.Tracks["track-a"]))
	}
}

func TestSelectDailyMissingDocumentRecordKeepsEntry(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		Matches: []domain.TrackMatch{match("ghost", "ml", 2, testDay)},
		Documents: map[string]domain.Document{
			"other": {ID: "other", URL: "https://example.org/other"},
		},
	}

	sel := SelectDaily(snap, Options{Today: testDay})
	docs := sel.Tracks["ml"]
	if len(docs) != 1 {
		t.Fatalf("expected the orphan match to survive, got %d docs", len(docs))
	}
	got := docs[0].Document
	if got.ID != "ghost" {
		t.Fatalf("expected document ID to be preserved, got %q", got.ID)
	}
	if got.HasLinks() {
		t.Fatalf("expected null link fields for unresolvable document, got %+v", got)
	}
}

func TestSelectDailyRecencyBreaksTies(t *testing.T) {
	t.Parallel()

	older := testDay.Add(-2 * time.Hour)
	newer := testDay.Add(-1 * time.Hour)

	snap := Snapshot{
		Matches: []domain.TrackMatch{
			match("old", "ml", 3, older),
			match("new", "ml", 3, newer),
		},
	}

	sel := SelectDaily(snap, Options{Today: testDay})
	docs := sel.Tracks["ml"]
	if docs[0].Document.ID != "new" {
		t.Fatalf("expected most recent match first on equal scores, got %s", docs[0].Document.ID)
	}
}
