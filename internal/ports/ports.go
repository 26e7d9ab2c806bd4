package ports

import (
	"context"
	"time"

	"TrackDigest/internal/domain"
)

// DocumentSource pulls fresh paper metadata from upstream providers.
type DocumentSource interface {
	FetchDaily(ctx context.Context, day time.Time) ([]domain.Document, error)
}

// DocumentStore persists document metadata for link resolution and audit.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc domain.Document) error
	GetDocuments(ctx context.Context, ids []string) (map[string]domain.Document, error)
}

// MatchStore persists per-track keyword scores, upserted on
// (documentId, trackName) so re-scoring after track changes is safe.
type MatchStore interface {
	UpsertMatch(ctx context.Context, m domain.TrackMatch) error
	ListMatches(ctx context.Context) ([]domain.TrackMatch, error)
	ListMatchesBetween(ctx context.Context, from, to time.Time) ([]domain.TrackMatch, error)
}

// JudgmentStore persists external relevance judgments, at most one per
// document, last write wins. The batch variant is atomic.
type JudgmentStore interface {
	UpsertJudgment(ctx context.Context, j domain.RelevanceJudgment) error
	UpsertJudgments(ctx context.Context, js []domain.RelevanceJudgment) error
	ListJudgments(ctx context.Context) (map[string]domain.RelevanceJudgment, error)
}

// DeliveryLedger records what was sent. Written by the pipeline after a
// successful send, never by the selection engine. Marking is idempotent.
type DeliveryLedger interface {
	MarkDelivered(ctx context.Context, rec domain.DeliveryRecord) error
	ListDeliveredSince(ctx context.Context, day time.Time) ([]domain.DeliveryRecord, error)
	MarkWeeklyDelivered(ctx context.Context, rec domain.WeeklyDeliveryRecord) error
	ListWeeklyDelivered(ctx context.Context) (map[string]domain.WeeklyDeliveryRecord, error)
}

// Judge asks the external relevance oracle for a 1-5 judgment.
type Judge interface {
	Judge(ctx context.Context, doc domain.Document, trackNames []string) (domain.RelevanceJudgment, error)
}

// Notifier streams rendered digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
