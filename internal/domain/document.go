package domain

import (
	"fmt"
	"time"
)

// Document is a core entity describing paper metadata fetched from providers.
// Immutable once ingested except for timestamp refresh on re-discovery.
type Document struct {
	ID          string
	Title       string
	Abstract    string
	URL         string
	PDFURL      string
	Source      string
	PublishedAt time.Time
}

// HasLinks reports whether any display link could be resolved for the document.
func (d Document) HasLinks() bool {
	return d.URL != "" || d.PDFURL != ""
}

// Track is a user-defined interest profile loaded from configuration.
// Phrases score 3 per hit, keywords 1 per whole-word hit, and any exclusion
// hit zeroes the whole match. Never mutated by the engine.
type Track struct {
	Name       string
	Enabled    bool
	Phrases    []string
	Keywords   []string
	Exclusions []string
	MinScore   int
	MaxPerDay  int
}

// TrackMatch is the result of matching one Document against one Track,
// keyed by (DocumentID, TrackName). Re-matching the same pair replaces it.
type TrackMatch struct {
	DocumentID   string
	TrackName    string
	Score        int
	MatchedTerms []string
	MatchedAt    time.Time
}

// RelevanceJudgment is an externally supplied 1-5 relevance value for one
// document, at most one per document. Absence means "unscored", which ranks
// after every judged value regardless of keyword score.
type RelevanceJudgment struct {
	DocumentID    string
	Value         int
	Justification string
	JudgedAt      time.Time
}

// DeliveryRecord logs a daily digest delivery. Unique on
// (DocumentID, Day, TrackName); deduplication reads it per document only.
type DeliveryRecord struct {
	DocumentID string
	Day        string // calendar date, "2006-01-02"
	TrackName  string
	SentAt     time.Time
}

// WeeklyDeliveryRecord logs a weekly deep-dive delivery, keyed by ISO week.
type WeeklyDeliveryRecord struct {
	DocumentID string
	Week       string // ISO week, e.g. "2026-W35"
	SentAt     time.Time
}

// SelectedDocument is one ranked entry of a digest selection: the fused view
// of a (Document, Track) pair. Judgment is nil for unscored documents.
// Document carries only the ID when its record could not be resolved.
type SelectedDocument struct {
	Document     Document
	TrackName    string
	Score        int
	MatchedTerms []string
	Judgment     *RelevanceJudgment
	MatchedAt    time.Time
}

// DigestSelection groups selected documents per track, capped and ranked,
// with a deterministic track visitation order.
type DigestSelection struct {
	Tracks     map[string][]SelectedDocument
	TrackOrder []string
	TrackCount int
	ItemCount  int
}

// ShortlistEntry is one candidate of the weekly pick-one shortlist.
type ShortlistEntry struct {
	Rank int // 1-based
	SelectedDocument
}

// RelatedPapers is the side list accompanying a weekly deep-dive pick.
type RelatedPapers struct {
	Shown []SelectedDocument
	More  int // overflow beyond the display cap
}

// UnscoredDocument aggregates a document lacking a RelevanceJudgment:
// its maximum keyword score across tracks and every track it matched.
type UnscoredDocument struct {
	Document Document
	MaxScore int
	Tracks   []string
}

// DayString formats a calendar date the way the delivery ledger stores it.
func DayString(t time.Time) string {
	return t.Format("2006-01-02")
}

// ISOWeekString formats the ISO week key used by the weekly ledger.
func ISOWeekString(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}
