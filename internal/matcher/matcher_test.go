package matcher

import (
	"testing"
	"time"

	"TrackDigest/internal/domain"
)

func TestMatchExclusionZeroesEverything(t *testing.T) {
	t.Parallel()

	track := domain.Track{
		Name:       "rag",
		Phrases:    []string{"retrieval augmented generation"},
		Keywords:   []string{"rag"},
		Exclusions: []string{"survey"},
	}

	res := Match(track, "A Survey of Retrieval Augmented Generation", "RAG everywhere.")
	if res.Score != 0 {
		t.Fatalf("expected score 0 on exclusion hit, got %d", res.Score)
	}
	if len(res.MatchedTerms) != 0 {
		t.Fatalf("expected empty matched terms, got %v", res.MatchedTerms)
	}
}

func TestMatchKeywordWholeWord(t *testing.T) {
	t.Parallel()

	track := domain.Track{Name: "rag", Keywords: []string{"rag"}}

	res := Match(track, "RAG is cool", "")
	if res.Score != 1 {
		t.Fatalf("expected whole-word hit score 1, got %d", res.Score)
	}
	if len(res.MatchedTerms) != 1 || res.MatchedTerms[0] != "rag" {
		t.Fatalf("unexpected matched terms: %v", res.MatchedTerms)
	}

	res = Match(track, "Ragtime music", "")
	if res.Score != 0 {
		t.Fatalf("expected no hit inside a longer word, got %d", res.Score)
	}
}

func TestMatchPhraseAndKeywordWeights(t *testing.T) {
	t.Parallel()

	track := domain.Track{
		Name:     "agents",
		Phrases:  []string{"multi-agent system"},
		Keywords: []string{"planner", "agent"},
	}

	res := Match(track,
		"A Multi-Agent System With a Planner",
		"Each agent coordinates with the planner.")
	// phrase 3 + planner 1 + agent 1
	if res.Score != 5 {
		t.Fatalf("expected score 5, got %d", res.Score)
	}

	want := []string{"multi-agent system", "planner", "agent"}
	if len(res.MatchedTerms) != len(want) {
		t.Fatalf("expected %d terms, got %v", len(want), res.MatchedTerms)
	}
	for i, term := range want {
		if res.MatchedTerms[i] != term {
			t.Fatalf("term %d: expected %q, got %q", i, term, res.MatchedTerms[i])
		}
	}
}

func TestMatchCaseInsensitive(t *testing.T) {
	t.Parallel()

	track := domain.Track{
		Name:    "llm",
		Phrases: []string{"Large Language Model"},
	}

	res := Match(track, "LARGE LANGUAGE MODEL COMPRESSION", "")
	if res.Score != 3 {
		t.Fatalf("expected case-insensitive phrase hit, got score %d", res.Score)
	}
}

func TestMatchEmptyInputs(t *testing.T) {
	t.Parallel()

	track := domain.Track{Name: "empty", Keywords: []string{"anything"}}
	res := Match(track, "", "")
	if res.Score != 0 {
		t.Fatalf("expected score 0 for empty inputs, got %d", res.Score)
	}
}

func TestMatchAllFiltersDisabledAndBelowThreshold(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 31, 8, 0, 0, 0, time.UTC)
	doc := domain.Document{
		ID:       "arXiv:2608.00001",
		Title:    "Benchmarking RAG pipelines",
		Abstract: "We study retrieval quality.",
	}

	tracks := []domain.Track{
		{Name: "rag", Enabled: true, Keywords: []string{"rag", "retrieval"}, MinScore: 1},
		{Name: "strict", Enabled: true, Keywords: []string{"retrieval"}, MinScore: 5},
		{Name: "off", Enabled: false, Keywords: []string{"rag"}},
	}

	matches := MatchAll(tracks, doc, now)
	if len(matches) != 1 {
		t.Fatalf("expected one surviving match, got %d", len(matches))
	}
	if matches[0].TrackName != "rag" || matches[0].Score != 2 {
		t.Fatalf("unexpected match: %+v", matches[0])
	}
	if !matches[0].MatchedAt.Equal(now) {
		t.Fatalf("expected match timestamp %v, got %v", now, matches[0].MatchedAt)
	}
}
