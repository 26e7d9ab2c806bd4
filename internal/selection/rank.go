package selection

import (
	"sort"

	"TrackDigest/internal/domain"
)

// rankBefore reports whether a outranks b.
//
// The key is a tagged comparison, not numeric fusion: any judged document
// orders before every unjudged one, however low its value and however high
// the other's keyword score. Within a partition the order is judgment value
// descending, then keyword score descending, then most recent match first.
func rankBefore(a, b domain.SelectedDocument) bool {
	aJudged := a.Judgment != nil
	bJudged := b.Judgment != nil
	if aJudged != bJudged {
		return aJudged
	}
	if aJudged && a.Judgment.Value != b.Judgment.Value {
		return a.Judgment.Value > b.Judgment.Value
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.MatchedAt.Equal(b.MatchedAt) {
		return a.MatchedAt.After(b.MatchedAt)
	}
	// Full tie: fall back to identifiers so runs stay deterministic.
	if a.Document.ID != b.Document.ID {
		return a.Document.ID < b.Document.ID
	}
	return a.TrackName < b.TrackName
}

func sortRanked(docs []domain.SelectedDocument) {
	sort.SliceStable(docs, func(i, j int) bool {
		return rankBefore(docs[i], docs[j])
	})
}
