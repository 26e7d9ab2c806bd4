package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"TrackDigest/internal/domain"
	"TrackDigest/internal/matcher"
	"TrackDigest/internal/ports"
	"TrackDigest/internal/selection"
)

// DailyDeps wires all driven adapters into the daily digest pipeline.
type DailyDeps struct {
	Source    ports.DocumentSource
	Documents ports.DocumentStore
	Matches   ports.MatchStore
	Judgments ports.JudgmentStore
	Ledger    ports.DeliveryLedger
	Judge     ports.Judge
	Notifier  ports.Notifier
	Logger    *slog.Logger
	Tracks    []domain.Track
	Options   selection.Options
}

// DailyPipeline implements the fetch → match → judge → select → deliver flow.
type DailyPipeline struct {
	source    ports.DocumentSource
	documents ports.DocumentStore
	matches   ports.MatchStore
	judgments ports.JudgmentStore
	ledger    ports.DeliveryLedger
	judge     ports.Judge
	notifier  ports.Notifier
	logger    *slog.Logger
	tracks    []domain.Track
	options   selection.Options
}

// NewDailyPipeline constructs the orchestration component.
func NewDailyPipeline(deps DailyDeps) *DailyPipeline {
	return &DailyPipeline{
		source:    deps.Source,
		documents: deps.Documents,
		matches:   deps.Matches,
		judgments: deps.Judgments,
		ledger:    deps.Ledger,
		judge:     deps.Judge,
		notifier:  deps.Notifier,
		logger:    deps.Logger,
		tracks:    deps.Tracks,
		options:   deps.Options,
	}
}

// ProcessDay orchestrates one daily run: ingest and match new papers, ask
// the oracle about unjudged ones, select the digest, deliver it, and only
// then record the deliveries in the ledger.
func (p *DailyPipeline) ProcessDay(ctx context.Context, day time.Time) error {
	if err := p.ingest(ctx, day); err != nil {
		return err
	}

	opts := p.options
	opts.Today = day

	snap, err := loadSnapshot(ctx, p.matches, p.judgments, p.documents, p.ledger,
		dedupCutoff(day, opts.DedupDays))
	if err != nil {
		return err
	}

	p.judgeUnscored(ctx, &snap)

	sel := selection.SelectDaily(snap, opts)
	p.info("daily selection done", "tracks", sel.TrackCount, "items", sel.ItemCount)

	if sel.ItemCount == 0 || p.notifier == nil {
		return nil
	}

	message := renderDailyDigest(sel)
	if err := p.notifier.PublishDigest(ctx, message); err != nil {
		return fmt.Errorf("publish digest: %w", err)
	}

	// The ledger is written only after a confirmed send.
	sentAt := time.Now().UTC()
	for _, trackName := range sel.TrackOrder {
		for _, doc := range sel.Tracks[trackName] {
			rec := domain.DeliveryRecord{
				DocumentID: doc.Document.ID,
				Day:        domain.DayString(day),
				TrackName:  trackName,
				SentAt:     sentAt,
			}
			if err := p.ledger.MarkDelivered(ctx, rec); err != nil {
				return fmt.Errorf("record delivery %s: %w", doc.Document.ID, err)
			}
		}
	}

	return nil
}

// ingest fetches the day's papers, persists them, and upserts track matches.
// Skipped entirely when no source is wired (selection-only runs).
func (p *DailyPipeline) ingest(ctx context.Context, day time.Time) error {
	if p.source == nil {
		return nil
	}

	docs, err := p.source.FetchDaily(ctx, day)
	if err != nil {
		return fmt.Errorf("fetch daily: %w", err)
	}
	p.info("fetched documents", "count", len(docs))

	now := time.Now().UTC()
	for _, doc := range docs {
		if err := p.documents.SaveDocument(ctx, doc); err != nil {
			return fmt.Errorf("persist document %s: %w", doc.ID, err)
		}
		for _, m := range matcher.MatchAll(p.tracks, doc, now) {
			if err := p.matches.UpsertMatch(ctx, m); err != nil {
				return fmt.Errorf("persist match %s/%s: %w", m.DocumentID, m.TrackName, err)
			}
		}
	}
	return nil
}

// judgeUnscored asks the oracle about every document still lacking a judgment
// and folds successful verdicts back into the snapshot. Oracle failures are
// logged and skipped; keyword-only ranking still works without them.
func (p *DailyPipeline) judgeUnscored(ctx context.Context, snap *selection.Snapshot) {
	if p.judge == nil {
		return
	}

	var fresh []domain.RelevanceJudgment
	for _, un := range selection.Unscored(*snap) {
		j, err := p.judge.Judge(ctx, un.Document, un.Tracks)
		if err != nil {
			p.warn("judge failed", "document", un.Document.ID, "error", err)
			continue
		}
		fresh = append(fresh, j)
	}
	if len(fresh) == 0 {
		return
	}

	if err := p.judgments.UpsertJudgments(ctx, fresh); err != nil {
		p.warn("persist judgments failed", "count", len(fresh), "error", err)
		return
	}

	if snap.Judgments == nil {
		snap.Judgments = map[string]domain.RelevanceJudgment{}
	}
	for _, j := range fresh {
		snap.Judgments[j.DocumentID] = j
	}
}

func (p *DailyPipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *DailyPipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
