package selection

import (
	"TrackDigest/internal/domain"
)

// RelatedDisplayCap bounds the "related papers" side list; the overflow is
// reported as a count so callers can render "...and N more".
const RelatedDisplayCap = 5

// WeekPool builds the weekly candidate pool: all matches stamped inside the
// given ISO week, minus documents already delivered as a deep dive in any
// prior week. Multiple tracks matching the same document collapse to that
// document's best-ranked pair, since the weekly decision is per paper.
func WeekPool(snap Snapshot, week string, weeklySent map[string]domain.WeeklyDeliveryRecord) []domain.SelectedDocument {
	best := map[string]domain.SelectedDocument{}
	for _, m := range snap.Matches {
		if domain.ISOWeekString(m.MatchedAt) != week {
			continue
		}
		if sent, ok := weeklySent[m.DocumentID]; ok && sent.Week != week {
			continue
		}
		cand := resolve(snap, m)
		if prev, ok := best[m.DocumentID]; !ok || rankBefore(cand, prev) {
			best[m.DocumentID] = cand
		}
	}

	pool := make([]domain.SelectedDocument, 0, len(best))
	for _, cand := range best {
		pool = append(pool, cand)
	}
	sortRanked(pool)
	return pool
}

// SelectWeeklyShortlist ranks the pool for a single human pick-one decision.
// Same key as the daily engine: judgment first, then keyword score, then
// recency. An empty pool yields an empty list, never an error.
func SelectWeeklyShortlist(pool []domain.SelectedDocument, topN int) []domain.ShortlistEntry {
	ranked := make([]domain.SelectedDocument, len(pool))
	copy(ranked, pool)
	sortRanked(ranked)

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}

	entries := make([]domain.ShortlistEntry, 0, len(ranked))
	for i, cand := range ranked {
		entries = append(entries, domain.ShortlistEntry{Rank: i + 1, SelectedDocument: cand})
	}
	return entries
}

// RelatedToPick returns the remainder of the week's pool once a deep-dive
// pick is chosen, capped for display with the overflow counted separately.
func RelatedToPick(pool []domain.SelectedDocument, chosenID string) domain.RelatedPapers {
	var rest []domain.SelectedDocument
	for _, cand := range pool {
		if cand.Document.ID == chosenID {
			continue
		}
		rest = append(rest, cand)
	}
	sortRanked(rest)

	related := domain.RelatedPapers{Shown: rest}
	if len(rest) > RelatedDisplayCap {
		related.Shown = rest[:RelatedDisplayCap]
		related.More = len(rest) - RelatedDisplayCap
	}
	return related
}
