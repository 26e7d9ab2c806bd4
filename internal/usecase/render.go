package usecase

import (
	"fmt"
	"strings"

	"TrackDigest/internal/domain"
)

// renderDailyDigest formats the per-track selection as a Markdown message.
// Transport-level truncation is the notifier's concern, not ours.
func renderDailyDigest(sel domain.DigestSelection) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Daily digest* — %d papers across %d tracks\n\n", sel.ItemCount, sel.TrackCount)
	for _, trackName := range sel.TrackOrder {
		fmt.Fprintf(&b, "*%s*\n", trackName)
		for _, doc := range sel.Tracks[trackName] {
			fmt.Fprintf(&b, "- %s\n", doc.Document.Title)
			fmt.Fprintf(&b, "  %s\n", formatScore(doc))
			if len(doc.MatchedTerms) > 0 {
				fmt.Fprintf(&b, "  matched: %s\n", strings.Join(doc.MatchedTerms, ", "))
			}
			if doc.Document.URL != "" {
				fmt.Fprintf(&b, "  %s\n", doc.Document.URL)
			}
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderWeeklyDigest formats the deep-dive pick, the shortlist, and the
// related-papers side list, including the "...and N more" overflow line.
func renderWeeklyDigest(week string, pick domain.ShortlistEntry, shortlist []domain.ShortlistEntry, related domain.RelatedPapers) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Weekly deep dive* — %s\n\n", week)
	fmt.Fprintf(&b, "*Pick:* %s\n%s\n", pick.Document.Title, formatScore(pick.SelectedDocument))
	if pick.Judgment != nil && pick.Judgment.Justification != "" {
		fmt.Fprintf(&b, "_%s_\n", pick.Judgment.Justification)
	}
	if pick.Document.URL != "" {
		fmt.Fprintf(&b, "%s\n", pick.Document.URL)
	}

	if len(shortlist) > 1 {
		b.WriteString("\n*Shortlist:*\n")
		for _, entry := range shortlist {
			fmt.Fprintf(&b, "%d. %s (%s)\n", entry.Rank, entry.Document.Title, formatScore(entry.SelectedDocument))
		}
	}

	if len(related.Shown) > 0 {
		b.WriteString("\n*Related papers:*\n")
		for _, doc := range related.Shown {
			fmt.Fprintf(&b, "- %s\n", doc.Document.Title)
		}
		if related.More > 0 {
			fmt.Fprintf(&b, "...and %d more\n", related.More)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderQuietWeek(week string) string {
	return fmt.Sprintf("*Weekly deep dive* — %s\n\nA quiet week: no new papers matched your tracks.", week)
}

func formatScore(doc domain.SelectedDocument) string {
	if doc.Judgment != nil {
		return fmt.Sprintf("relevance %d/5, keyword score %d", doc.Judgment.Value, doc.Score)
	}
	return fmt.Sprintf("unscored, keyword score %d", doc.Score)
}
