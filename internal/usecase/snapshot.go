package usecase

import (
	"context"
	"fmt"
	"time"

	"TrackDigest/internal/ports"
	"TrackDigest/internal/selection"
)

// loadSnapshot materializes the persisted relations into the typed
// collections the selection engine folds over. Aggregation happens in memory
// rather than SQL, so the engine stays a pure function of this snapshot.
func loadSnapshot(ctx context.Context, matches ports.MatchStore, judgments ports.JudgmentStore,
	documents ports.DocumentStore, ledger ports.DeliveryLedger, dedupSince time.Time) (selection.Snapshot, error) {

	snap := selection.Snapshot{}

	var err error
	snap.Matches, err = matches.ListMatches(ctx)
	if err != nil {
		return snap, fmt.Errorf("load matches: %w", err)
	}

	snap.Judgments, err = judgments.ListJudgments(ctx)
	if err != nil {
		return snap, fmt.Errorf("load judgments: %w", err)
	}

	snap.Delivered, err = ledger.ListDeliveredSince(ctx, dedupSince)
	if err != nil {
		return snap, fmt.Errorf("load delivery ledger: %w", err)
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

	snap.Documents, err = documents.GetDocuments(ctx, ids)
	if err != nil {
		return snap, fmt.Errorf("load documents: %w", err)
	}

	return snap, nil
}

func dedupCutoff(day time.Time, dedupDays int) time.Time {
	if dedupDays <= 0 {
		dedupDays = selection.DefaultDedupDays
	}
	return day.AddDate(0, 0, -dedupDays)
}
