package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"TrackDigest/internal/config"
	"TrackDigest/internal/domain"
	"TrackDigest/internal/infrastructure/llm"
	"TrackDigest/internal/infrastructure/parser"
	"TrackDigest/internal/infrastructure/scheduler"
	"TrackDigest/internal/infrastructure/storage"
	"TrackDigest/internal/infrastructure/telegram"
	"TrackDigest/internal/logging"
	"TrackDigest/internal/ports"
	"TrackDigest/internal/scanner"
	"TrackDigest/internal/selection"
	"TrackDigest/internal/usecase"
)

// Application wires configuration to stores, pipelines, and adapters.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	db     *storage.DB
	judge  ports.Judge
	daily  *usecase.DailyPipeline
	weekly *usecase.WeeklyPipeline
}

// New builds a runnable application instance, opening the database and
// wiring every adapter the configuration enables.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = storage.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewArxivScanner(nil))

	source := parser.NewStrategySource(registry, cfg.Sites, logging.Component(baseLogger, "source"))

	var judge ports.Judge
	if cfg.Judge.APIKey != "" {
		judge = llm.NewChatJudge(cfg.Judge)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	daily := usecase.NewDailyPipeline(usecase.DailyDeps{
		Source:    source,
		Documents: db,
		Matches:   db,
		Judgments: db,
		Ledger:    db,
		Judge:     judge,
		Notifier:  notifier,
		Logger:    logging.Component(baseLogger, "pipeline.daily"),
		Tracks:    cfg.DomainTracks(),
		Options: selection.Options{
			MaxItemsPerDigest: cfg.Selection.MaxItemsPerDigest,
			MaxPerTrack:       cfg.Selection.MaxPerTrack,
			DedupDays:         cfg.Selection.DedupDays,
			TrackCaps:         cfg.TrackCaps(),
		},
	})

	weekly := usecase.NewWeeklyPipeline(usecase.WeeklyDeps{
		Documents: db,
		Matches:   db,
		Judgments: db,
		Ledger:    db,
		Notifier:  notifier,
		Logger:    logging.Component(baseLogger, "pipeline.weekly"),
		TopN:      cfg.Selection.WeeklyTopN,
	})

	return &Application{
		cfg:    cfg,
		logger: baseLogger,
		db:     db,
		judge:  judge,
		daily:  daily,
		weekly: weekly,
	}, nil
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// RunDaily executes one daily digest pass for "today" in the configured zone.
func (a *Application) RunDaily(ctx context.Context) error {
	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.daily.ProcessDay(ctx, now)
}

// RunDailyFor executes a daily pass for an explicit day (backfills).
func (a *Application) RunDailyFor(ctx context.Context, day time.Time) error {
	return a.daily.ProcessDay(ctx, day)
}

// RunWeekly executes the weekly deep-dive pass for the current ISO week.
func (a *Application) RunWeekly(ctx context.Context) error {
	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.weekly.ProcessWeek(ctx, now)
}

// RunScheduled blocks, running the daily pipeline on the configured cadence
// until the context is cancelled. One run at a time; the caller is expected
// to keep a single instance alive.
func (a *Application) RunScheduled(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression)
	sched := usecase.NewScheduler(driver, a.daily)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()
	return sched.Stop(context.Background())
}

// Unscored lists documents with track matches but no relevance judgment,
// each with its max score across tracks and the tracks it matched.
func (a *Application) Unscored(ctx context.Context) ([]domain.UnscoredDocument, error) {
	snap, err := a.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return selection.Unscored(snap), nil
}

// JudgeUnscored asks the configured oracle about every unjudged document
// and stores the verdicts as one atomic batch. Returns the judged count.
func (a *Application) JudgeUnscored(ctx context.Context) (int, error) {
	if a.judge == nil {
		return 0, fmt.Errorf("no judge configured (set JUDGE_API_KEY)")
	}

	snap, err := a.snapshot(ctx)
	if err != nil {
		return 0, err
	}

	var fresh []domain.RelevanceJudgment
	for _, un := range selection.Unscored(snap) {
		j, err := a.judge.Judge(ctx, un.Document, un.Tracks)
		if err != nil {
			a.logger.Warn("judge failed", "document", un.Document.ID, "error", err)
			continue
		}
		fresh = append(fresh, j)
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	if err := a.db.UpsertJudgments(ctx, fresh); err != nil {
		return 0, err
	}
	return len(fresh), nil
}

func (a *Application) snapshot(ctx context.Context) (selection.Snapshot, error) {
	snap := selection.Snapshot{}

	var err error
	snap.Matches, err = a.db.ListMatches(ctx)
	if err != nil {
		return snap, fmt.Errorf("load matches: %w", err)
	}
	snap.Judgments, err = a.db.ListJudgments(ctx)
	if err != nil {
		return snap, fmt.Errorf("load judgments: %w", err)
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
	snap.Documents, err = a.db.GetDocuments(ctx, ids)
	if err != nil {
		return snap, fmt.Errorf("load documents: %w", err)
	}

	return snap, nil
}
