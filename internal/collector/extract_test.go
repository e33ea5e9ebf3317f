package collector

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func TestCleanContentStripsMarkdown(t *testing.T) {
	in := "# Big Heading\n\nSome **bold** and *italic* text with a [link](https://e.com) and ![img](https://e.com/p.png).\n\n\n\n- bullet one\n- bullet two\n   indented   \n"
	got := CleanContent(in, 500)

	if strings.Contains(got, "#") || strings.Contains(got, "**") || strings.Contains(got, "](") {
		t.Fatalf("markdown markers should be stripped: %q", got)
	}
	if !strings.Contains(got, "link") {
		t.Fatalf("link text should survive: %q", got)
	}
	if strings.Contains(got, "img") {
		t.Fatalf("image alt text should be removed: %q", got)
	}
	if strings.Contains(got, "- bullet") {
		t.Fatalf("list markers should be stripped: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Fatalf("blank-line runs should collapse: %q", got)
	}
}

func TestCleanContentTruncatesAtRuneBoundary(t *testing.T) {
	in := strings.Repeat("é", 600)
	got := CleanContent(in, 500)
	if len([]rune(got)) != 500 {
		t.Fatalf("expected 500 runes, got %d", len([]rune(got)))
	}
}

func TestParseDateLayoutsAndPatterns(t *testing.T) {
	cases := []struct {
		in   string
		want string // YYYY-MM-DD, "" means nil expected
	}{
		{"2026-02-01T10:30:00Z", "2026-02-01"},
		{"Mon, 02 Feb 2026 10:30:00 +0000", "2026-02-02"},
		{"3 Mar 2026", "2026-03-03"},
		{"Published on 3 March 2026 by staff", "2026-03-03"},
		{"2026-04-05", "2026-04-05"},
		{"snippet mentioning 2026-04-05 inline", "2026-04-05"},
		{"not a date at all", ""},
		{"", ""},
	}
	for _, c := range cases {
		got := ParseDate(c.in)
		if c.want == "" {
			if got != nil {
				t.Fatalf("ParseDate(%q) = %v, want nil", c.in, got)
			}
			continue
		}
		if got == nil {
			t.Fatalf("ParseDate(%q) = nil, want %s", c.in, c.want)
		}
		if got.Format("2006-01-02") != c.want {
			t.Fatalf("ParseDate(%q) = %s, want %s", c.in, got.Format("2006-01-02"), c.want)
		}
	}
}

func TestDateFromURL(t *testing.T) {
	got := DateFromURL("https://e.com/2026/02/01/story")
	if got == nil || got.Format("2006-01-02") != "2026-02-01" {
		t.Fatalf("DateFromURL = %v, want 2026-02-01", got)
	}
	if DateFromURL("https://e.com/news/plain-slug") != nil {
		t.Fatalf("expected nil for URL without a date path")
	}
}

func TestStripSiteSuffix(t *testing.T) {
	cases := []struct {
		title, site, want string
	}{
		{"Fund closes $2B round | TechCrunch", "TechCrunch", "Fund closes $2B round"},
		{"Fund closes $2B round - Crunchbase News", "Crunchbase News", "Fund closes $2B round"},
		{"Fund closes $2B round | Some Other Site", "TechCrunch", "Fund closes $2B round | Some Other Site"},
		{"Bolt-on deals - the quiet PE strategy", "TechCrunch", "Bolt-on deals - the quiet PE strategy"},
	}
	for _, c := range cases {
		if got := StripSiteSuffix(c.title, c.site); got != c.want {
			t.Fatalf("StripSiteSuffix(%q, %q) = %q, want %q", c.title, c.site, got, c.want)
		}
	}
}

func TestCandidateFromPageDiscardsShortHeadlines(t *testing.T) {
	page := &RenderedPage{Title: "Too short", Content: "body text"}
	if _, ok := CandidateFromPage("TechCrunch", "https://e.com/news/1", page, maxListBody); ok {
		t.Fatalf("headline under 10 chars should be discarded")
	}
}

func TestCandidateFromPageDateResolutionOrder(t *testing.T) {
	// Metadata wins.
	page := &RenderedPage{
		Title:       "A perfectly fine headline",
		Content:     "body",
		PublishedAt: "2026-01-15T08:00:00Z",
	}
	cand, ok := CandidateFromPage("TechCrunch", "https://e.com/2026/02/01/story", page, maxListBody)
	if !ok {
		t.Fatalf("expected a candidate")
	}
	if cand.PublishedAt.Format("2006-01-02") != "2026-01-15" {
		t.Fatalf("metadata date should win, got %s", cand.PublishedAt.Format("2006-01-02"))
	}

	// URL date next.
	page.PublishedAt = ""
	cand, _ = CandidateFromPage("TechCrunch", "https://e.com/2026/02/01/story", page, maxListBody)
	if cand.PublishedAt.Format("2006-01-02") != "2026-02-01" {
		t.Fatalf("URL date should be the fallback, got %s", cand.PublishedAt.Format("2006-01-02"))
	}

	// Crawl time last: the scrape path never leaves the date unknown.
	cand, _ = CandidateFromPage("TechCrunch", "https://e.com/news/slug", page, maxListBody)
	if cand.PublishedAt == nil {
		t.Fatalf("scrape path should default to now, not nil")
	}
	if time.Since(*cand.PublishedAt) > time.Minute {
		t.Fatalf("default date should be crawl time, got %v", cand.PublishedAt)
	}
}

func TestCandidateFromPageFirstHeadingFallback(t *testing.T) {
	page := &RenderedPage{
		Content: "## Startup raises a giant round\n\nbody text here",
	}
	cand, ok := CandidateFromPage("TechCrunch", "https://e.com/news/1", page, maxListBody)
	if !ok {
		t.Fatalf("expected a candidate from the first heading")
	}
	if cand.Headline != "Startup raises a giant round" {
		t.Fatalf("unexpected headline: %q", cand.Headline)
	}
}

func TestCandidateFromFeedItemKeepsNilDate(t *testing.T) {
	item := &gofeed.Item{
		Title:       "Buyout shop eyes take-private deal",
		Link:        "https://e.com/news/2?utm_source=rss",
		Description: "<p>Some <b>html</b> description</p>",
	}
	cand, ok := CandidateFromFeedItem("PEI", item)
	if !ok {
		t.Fatalf("expected a candidate")
	}
	if cand.PublishedAt != nil {
		t.Fatalf("feed path must keep unknown dates nil, got %v", cand.PublishedAt)
	}
	if cand.URL != "https://e.com/news/2" {
		t.Fatalf("tracking params should be stripped: %q", cand.URL)
	}
	if strings.Contains(cand.BodyText, "<") {
		t.Fatalf("html should be stripped from description: %q", cand.BodyText)
	}
}

func TestCandidateFromFeedItemRequiresTitleAndLink(t *testing.T) {
	if _, ok := CandidateFromFeedItem("PEI", &gofeed.Item{Title: "Headline long enough", Link: ""}); ok {
		t.Fatalf("missing link should be rejected")
	}
	if _, ok := CandidateFromFeedItem("PEI", &gofeed.Item{Title: "", Link: "https://e.com/a"}); ok {
		t.Fatalf("missing title should be rejected")
	}
	if _, ok := CandidateFromFeedItem("PEI", nil); ok {
		t.Fatalf("nil item should be rejected")
	}
}
