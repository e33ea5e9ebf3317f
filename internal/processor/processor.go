// Package processor decides which crawled candidates are in scope:
// an ASCII-ratio language check plus a private-market keyword match, and
// a calendar-day date window.
package processor

import (
	"strings"
	"time"

	"github.com/marketpulse/newsradar/internal/collector"
)

// asciiThreshold is the fraction of ASCII runes above which text counts
// as English. This is a heuristic, not a language detector: English text
// heavy on curly quotes and non-English text in plain ASCII both slip
// through, and that trade-off is accepted.
const asciiThreshold = 0.8

var lowerKeywords = func() []string {
	out := make([]string, len(Keywords))
	for i, k := range Keywords {
		out[i] = strings.ToLower(k)
	}
	return out
}()

// IsEnglish reports whether more than asciiThreshold of the runes in text
// are ASCII. Empty text fails the check.
func IsEnglish(text string) bool {
	if text == "" {
		return false
	}
	total, ascii := 0, 0
	for _, r := range text {
		total++
		if r <= 0x7F {
			ascii++
		}
	}
	return float64(ascii)/float64(total) > asciiThreshold
}

// MatchesKeywords reports whether any vocabulary term appears in text as
// a case-insensitive substring.
func MatchesKeywords(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range lowerKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// InScope applies both predicates to the candidate's combined text.
func InScope(c collector.Candidate) bool {
	text := c.Headline + " " + c.BodyText
	return IsEnglish(text) && MatchesKeywords(text)
}

// InRange reports whether a candidate's publish time falls inside the
// inclusive [start 00:00:00, end 23:59:59.999] window. Candidates with an
// unknown date are always in range: dropping undated articles silently
// would be worse than the occasional stale one.
func InRange(published *time.Time, start, end time.Time) bool {
	if published == nil {
		return true
	}
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	dayEnd := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999_000_000, end.Location())
	return !published.Before(dayStart) && !published.After(dayEnd)
}

// FilterByRange keeps candidates inside the window, preserving order.
func FilterByRange(cands []collector.Candidate, start, end time.Time) []collector.Candidate {
	out := make([]collector.Candidate, 0, len(cands))
	for _, c := range cands {
		if InRange(c.PublishedAt, start, end) {
			out = append(out, c)
		}
	}
	return out
}

// Partition splits classified candidates into the matching set (headed for
// the article store) and the non-matching backlog.
func Partition(cands []collector.Candidate) (matching, nonMatching []collector.Candidate) {
	for _, c := range cands {
		if InScope(c) {
			matching = append(matching, c)
		} else {
			nonMatching = append(nonMatching, c)
		}
	}
	return matching, nonMatching
}
