package processor

import (
	"testing"
	"time"

	"github.com/marketpulse/newsradar/internal/collector"
)

func TestIsEnglishASCIIRatio(t *testing.T) {
	if !IsEnglish("Private equity firm closes $2B fund") {
		t.Fatalf("plain ASCII headline should pass")
	}
	if IsEnglish("プライベートエクイティファンドが新規の資金調達を完了しました") {
		t.Fatalf("non-ASCII text should fail")
	}
	if IsEnglish("") {
		t.Fatalf("empty text should fail")
	}
	// Mostly non-ASCII with a short ASCII tail stays below the threshold.
	if IsEnglish("基金完成了一轮融资基金完成了一轮融资基金完成了一轮融资 PE") {
		t.Fatalf("ratio under threshold should fail")
	}
}

func TestMatchesKeywordsSubstringCaseInsensitive(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"Blackstone leads SERIES A for logistics startup", true},
		{"Fund manager announces buyout of rival", true},
		{"the general partner committed more capital", true},
		{"Local council debates new bus routes", false},
		{"", false},
	}
	for _, c := range cases {
		if got := MatchesKeywords(c.text); got != c.want {
			t.Fatalf("MatchesKeywords(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestInRangeNilDateAlwaysPasses(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	if !InRange(nil, start, end) {
		t.Fatalf("unknown publish date must be treated as in range")
	}
}

func TestInRangeInclusiveEndOfDay(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	lastMoment := time.Date(2025, 1, 5, 23, 59, 59, 999_000_000, time.UTC)
	if !InRange(&lastMoment, start, end) {
		t.Fatalf("end day should be inclusive to the last millisecond")
	}

	justAfter := lastMoment.Add(time.Millisecond)
	if InRange(&justAfter, start, end) {
		t.Fatalf("one millisecond past end of day should be out of range")
	}

	firstMoment := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !InRange(&firstMoment, start, end) {
		t.Fatalf("start day midnight should be in range")
	}

	before := firstMoment.Add(-time.Millisecond)
	if InRange(&before, start, end) {
		t.Fatalf("before start day should be out of range")
	}
}

func TestPartitionSplitsByBothPredicates(t *testing.T) {
	cands := []collector.Candidate{
		{Headline: "PE fund closes record buyout", BodyText: "private equity deal"},
		{Headline: "Weather improves across the region", BodyText: "sunny skies ahead"},
		{Headline: "ファンドが新しい資金調達を完了、ドルドルドルドルドルドル", BodyText: ""},
	}

	matching, nonMatching := Partition(cands)
	if len(matching) != 1 {
		t.Fatalf("expected 1 matching, got %d", len(matching))
	}
	if matching[0].Headline != "PE fund closes record buyout" {
		t.Fatalf("wrong candidate matched: %q", matching[0].Headline)
	}
	if len(nonMatching) != 2 {
		t.Fatalf("expected 2 non-matching, got %d", len(nonMatching))
	}
}

func TestFilterByRangeKeepsNilAndWindowed(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	inWindow := time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)
	outside := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	cands := []collector.Candidate{
		{URL: "a", PublishedAt: &inWindow},
		{URL: "b", PublishedAt: &outside},
		{URL: "c", PublishedAt: nil},
	}

	got := FilterByRange(cands, start, end)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].URL != "a" || got[1].URL != "c" {
		t.Fatalf("unexpected survivors: %+v", got)
	}
}
