package matcher

import (
	"regexp"
	"strings"
	"time"

	"TrackDigest/internal/domain"
)

// Result holds the outcome of matching one document against one track.
type Result struct {
	Score        int
	MatchedTerms []string
}

// Match scores a document's title and body against a single track.
//
// Any exclusion term occurring as a case-insensitive substring zeroes the
// whole result, even when phrase or keyword terms also hit. Phrases match as
// case-insensitive substrings and weigh 3; keywords match whole words only
// (so "rag" hits "RAG is cool" but not "Ragtime music") and weigh 1.
// MatchedTerms keeps stable insertion order: phrases first, then keywords.
// Pure function; empty inputs yield score 0.
func Match(track domain.Track, title, body string) Result {
	text := strings.ToLower(title + " " + body)

	for _, excl := range track.Exclusions {
		excl = strings.TrimSpace(strings.ToLower(excl))
		if excl == "" {
			continue
		}
		if strings.Contains(text, excl) {
			return Result{Score: 0, MatchedTerms: []string{}}
		}
	}

	var (
		score int
		terms []string
		seen  = map[string]struct{}{}
	)

	add := func(term string, weight int) {
		score += weight
		if _, ok := seen[strings.ToLower(term)]; ok {
			return
		}
		seen[strings.ToLower(term)] = struct{}{}
		terms = append(terms, term)
	}

	for _, phrase := range track.Phrases {
		trimmed := strings.TrimSpace(phrase)
		if trimmed == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(trimmed)) {
			add(trimmed, 3)
		}
	}

	for _, keyword := range track.Keywords {
		trimmed := strings.TrimSpace(keyword)
		if trimmed == "" {
			continue
		}
		if matchesWholeWord(text, strings.ToLower(trimmed)) {
			add(trimmed, 1)
		}
	}

	if terms == nil {
		terms = []string{}
	}
	return Result{Score: score, MatchedTerms: terms}
}

// MatchAll runs Match for every enabled track and keeps results at or above
// each track's minimum score, producing upsert-ready TrackMatch rows.
func MatchAll(tracks []domain.Track, doc domain.Document, now time.Time) []domain.TrackMatch {
	var matches []domain.TrackMatch
	for _, track := range tracks {
		if !track.Enabled {
			continue
		}
		res := Match(track, doc.Title, doc.Abstract)
		if res.Score <= 0 || res.Score < track.MinScore {
			continue
		}
		matches = append(matches, domain.TrackMatch{
			DocumentID:   doc.ID,
			TrackName:    track.Name,
			Score:        res.Score,
			MatchedTerms: res.MatchedTerms,
			MatchedAt:    now,
		})
	}
	return matches
}

func matchesWholeWord(text, keyword string) bool {
	expr, err := wordPattern(keyword)
	if err != nil {
		return false
	}
	return expr.MatchString(text)
}

func wordPattern(keyword string) (*regexp.Regexp, error) {
	return regexp.Compile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
}
