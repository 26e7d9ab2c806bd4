package selection

import (
	"sort"
	"time"

	"TrackDigest/internal/domain"
)

// DefaultDedupDays is the trailing dedup window applied when Options leaves
// DedupDays unset.
const DefaultDedupDays = 7

// Snapshot is the consistent read the engine folds over: every persisted
// relation materialized into typed collections before selection starts.
// The engine itself never touches storage.
type Snapshot struct {
	Matches   []domain.TrackMatch
	Documents map[string]domain.Document
	Judgments map[string]domain.RelevanceJudgment
	Delivered []domain.DeliveryRecord
}

// Options bounds a daily selection pass.
type Options struct {
	MaxItemsPerDigest int
	MaxPerTrack       int
	DedupDays         int // trailing window in whole days, inclusive
	Today             time.Time
	TrackCaps         map[string]int // per-track daily caps from configuration
}

// SelectDaily produces the capped, deduplicated, per-track digest grouping.
//
// Documents delivered within the dedup window are excluded from every
// track's candidates, no matter which track the prior delivery was filed
// under. Surviving pairs are grouped by track, ranked, capped per track,
// then capped globally. Track visitation order for the global cap is the
// earliest match timestamp per track, ties broken by track name; tracks
// emptied by the global cap are dropped from the output.
func SelectDaily(snap Snapshot, opts Options) domain.DigestSelection {
	dedupDays := opts.DedupDays
	if dedupDays <= 0 {
		dedupDays = DefaultDedupDays
	}

	blocked := deliveredWithin(snap.Delivered, opts.Today, dedupDays)

	grouped := map[string][]domain.SelectedDocument{}
	for _, m := range snap.Matches {
		if _, dup := blocked[m.DocumentID]; dup {
			continue
		}
		grouped[m.TrackName] = append(grouped[m.TrackName], resolve(snap, m))
	}

	order := visitOrder(grouped)

	for name, docs := range grouped {
		sortRanked(docs)
		limit := trackCap(opts, name)
		if limit > 0 && len(docs) > limit {
			docs = docs[:limit]
		}
		grouped[name] = docs
	}

	result := domain.DigestSelection{Tracks: map[string][]domain.SelectedDocument{}}
	remaining := opts.MaxItemsPerDigest
	for _, name := range order {
		docs := grouped[name]
		if opts.MaxItemsPerDigest > 0 {
			if remaining <= 0 {
				break
			}
			if len(docs) > remaining {
				docs = docs[:remaining]
			}
			remaining -= len(docs)
		}
		if len(docs) == 0 {
			continue
		}
		result.Tracks[name] = docs
		result.TrackOrder = append(result.TrackOrder, name)
		result.ItemCount += len(docs)
	}
	result.TrackCount = len(result.TrackOrder)

	return result
}

// deliveredWithin collects document IDs whose last delivery falls inside the
// trailing window, inclusive of the boundary day. The ledger is never
// pruned; the window is pure date arithmetic at query time.
func deliveredWithin(records []domain.DeliveryRecord, today time.Time, days int) map[string]struct{} {
	cutoff := today.AddDate(0, 0, -days)
	cutoffDay := domain.DayString(cutoff)

	blocked := map[string]struct{}{}
	for _, rec := range records {
		if rec.Day >= cutoffDay {
			blocked[rec.DocumentID] = struct{}{}
		}
	}
	return blocked
}

// resolve joins a match with its document and judgment. A missing document
// record is not fatal: the entry keeps its ID and loses only link fields.
func resolve(snap Snapshot, m domain.TrackMatch) domain.SelectedDocument {
	sel := domain.SelectedDocument{
		Document:     domain.Document{ID: m.DocumentID},
		TrackName:    m.TrackName,
		Score:        m.Score,
		MatchedTerms: m.MatchedTerms,
		MatchedAt:    m.MatchedAt,
	}
	if doc, ok := snap.Documents[m.DocumentID]; ok {
		sel.Document = doc
	}
	if j, ok := snap.Judgments[m.DocumentID]; ok {
		judged := j
		sel.Judgment = &judged
	}
	return sel
}

func trackCap(opts Options, name string) int {
	limit := opts.MaxPerTrack
	if trackMax, ok := opts.TrackCaps[name]; ok && trackMax > 0 {
		if limit <= 0 || trackMax < limit {
			limit = trackMax
		}
	}
	return limit
}

// visitOrder derives the deterministic track sequence the global cap walks:
// tracks ascending by their earliest match timestamp, ties by name.
func visitOrder(grouped map[string][]domain.SelectedDocument) []string {
	type first struct {
		name  string
		since time.Time
	}

	firsts := make([]first, 0, len(grouped))
	for name, docs := range grouped {
		earliest := docs[0].MatchedAt
		for _, d := range docs[1:] {
			if d.MatchedAt.Before(earliest) {
				earliest = d.MatchedAt
			}
		}
		firsts = append(firsts, first{name: name, since: earliest})
	}

	sort.Slice(firsts, func(i, j int) bool {
		if !firsts[i].since.Equal(firsts[j].since) {
			return firsts[i].since.Before(firsts[j].since)
		}
		return firsts[i].name < firsts[j].name
	})

	order := make([]string, len(firsts))
	for i, f := range firsts {
		order[i] = f.name
	}
	return order
}
