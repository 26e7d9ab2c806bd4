package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"TrackDigest/internal/domain"
	"TrackDigest/internal/ports"
	"TrackDigest/internal/selection"
)

// WeeklyDeps wires the adapters used by the weekly deep-dive pipeline.
type WeeklyDeps struct {
	Documents ports.DocumentStore
	Matches   ports.MatchStore
	Judgments ports.JudgmentStore
	Ledger    ports.DeliveryLedger
	Notifier  ports.Notifier
	Logger    *slog.Logger
	TopN      int
}

// WeeklyPipeline ranks the week's candidates for a single deep-dive pick
// with a related-papers side list.
type WeeklyPipeline struct {
	documents ports.DocumentStore
	matches   ports.MatchStore
	judgments ports.JudgmentStore
	ledger    ports.DeliveryLedger
	notifier  ports.Notifier
	logger    *slog.Logger
	topN      int
}

// NewWeeklyPipeline constructs the weekly orchestration component.
func NewWeeklyPipeline(deps WeeklyDeps) *WeeklyPipeline {
	return &WeeklyPipeline{
		documents: deps.Documents,
		matches:   deps.Matches,
		judgments: deps.Judgments,
		ledger:    deps.Ledger,
		notifier:  deps.Notifier,
		logger:    deps.Logger,
		topN:      deps.TopN,
	}
}

// ProcessWeek selects the current ISO week's shortlist, delivers the top
// pick with its related papers, and marks the pick in the weekly ledger.
func (p *WeeklyPipeline) ProcessWeek(ctx context.Context, now time.Time) error {
	week := domain.ISOWeekString(now)

	snap := selection.Snapshot{}
	var err error
	snap.Matches, err = p.matches.ListMatches(ctx)
	if err != nil {
		return fmt.Errorf("load matches: %w", err)
	}
	snap.Judgments, err = p.judgments.ListJudgments(ctx)
	if err != nil {
		return fmt.Errorf("load judgments: %w", err)
	}

	ids := make([]string, 0, len(snap.Matches))
	seen := map[string]struct{}{}
	for _, m := range snap.Matches {
		if _, ok := seen[m.DocumentID]; ok {
			continue
		}
		seen[m.DocumentID] = struct{}{}
		ids = append(ids, m.DocumentID)
	}
	snap.Documents, err = p.documents.GetDocuments(ctx, ids)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}

	weeklySent, err := p.ledger.ListWeeklyDelivered(ctx)
	if err != nil {
		return fmt.Errorf("load weekly ledger: %w", err)
	}

	pool := selection.WeekPool(snap, week, weeklySent)
	shortlist := selection.SelectWeeklyShortlist(pool, p.topN)
	p.info("weekly shortlist ready", "week", week, "pool", len(pool), "shortlist", len(shortlist))

	if p.notifier == nil {
		return nil
	}

	if len(shortlist) == 0 {
		return p.notifier.PublishDigest(ctx, renderQuietWeek(week))
	}

	pick := shortlist[0]
	related := selection.RelatedToPick(pool, pick.Document.ID)

	message := renderWeeklyDigest(week, pick, shortlist, related)
	if err := p.notifier.PublishDigest(ctx, message); err != nil {
		return fmt.Errorf("publish weekly digest: %w", err)
	}

	rec := domain.WeeklyDeliveryRecord{
		DocumentID: pick.Document.ID,
		Week:       week,
		SentAt:     time.Now().UTC(),
	}
	if err := p.ledger.MarkWeeklyDelivered(ctx, rec); err != nil {
		return fmt.Errorf("record weekly delivery %s: %w", pick.Document.ID, err)
	}

	return nil
}

func (p *WeeklyPipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
