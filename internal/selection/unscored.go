package selection

import (
	"sort"

	"TrackDigest/internal/domain"
)

// Unscored lists documents holding at least one track match but no relevance
// judgment, aggregated per document: the maximum keyword score across every
// matching track and the full list of track names. An in-memory fold over
// the snapshot; output ordered by max score descending, ties by document ID.
func Unscored(snap Snapshot) []domain.UnscoredDocument {
	type agg struct {
		maxScore int
		tracks   []string
	}

	byDoc := map[string]*agg{}
	var ids []string
	for _, m := range snap.Matches {
		if _, judged := snap.Judgments[m.DocumentID]; judged {
			continue
		}
		entry, ok := byDoc[m.DocumentID]
		if !ok {
			entry = &agg{}
			byDoc[m.DocumentID] = entry
			ids = append(ids, m.DocumentID)
		}
		if m.Score > entry.maxScore {
			entry.maxScore = m.Score
		}
		entry.tracks = append(entry.tracks, m.TrackName)
	}

	result := make([]domain.UnscoredDocument, 0, len(ids))
	for _, id := range ids {
		entry := byDoc[id]
		doc, ok := snap.Documents[id]
		if !ok {
			doc = domain.Document{ID: id}
		}
		result = append(result, domain.UnscoredDocument{
			Document: doc,
			MaxScore: entry.maxScore,
			Tracks:   entry.tracks,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].MaxScore != result[j].MaxScore {
			return result[i].MaxScore > result[j].MaxScore
		}
		return result[i].Document.ID < result[j].Document.ID
	})
	return result
}
