package collector

import (
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/marketpulse/newsradar/internal/source"
)

const (
	// maxListBody caps snippets captured during a list crawl; deep scrapes
	// fetch a longer body.
	maxListBody = 500
	maxDeepBody = 5000

	maxHeadline = 500
	// Headlines shorter than this are navigation noise, not articles.
	minHeadline = 10
)

var (
	reImage    = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	reLink     = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	reHeading  = regexp.MustCompile(`(?m)^#{1,6}\s+[^\n]*\n?`)
	reBold     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reItalic   = regexp.MustCompile(`\*([^*]+)\*`)
	reBullet   = regexp.MustCompile(`(?m)^\s*[-*•]\s+`)
	reBlankRun = regexp.MustCompile(`\n{3,}`)
	reLineTrim = regexp.MustCompile(`(?m)^[ \t]+|[ \t]+$`)
	reTag      = regexp.MustCompile(`<[^>]+>`)

	reFirstHeading = regexp.MustCompile(`(?m)^#{1,3}\s+(.+)$`)
	reURLDate      = regexp.MustCompile(`/(\d{4})/(\d{2})/(\d{2})(?:/|$)`)
	reTextualDate  = regexp.MustCompile(`(?i)(\d{1,2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+(\d{4})`)
	reISODate      = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
)

// CleanContent reduces rendered markdown (or plain text) to a readable
// body: headings and images go, links keep their text, emphasis and list
// markers go, blank-line runs collapse, and the result is truncated to
// limit runes.
func CleanContent(s string, limit int) string {
	s = reImage.ReplaceAllString(s, "")
	s = reHeading.ReplaceAllString(s, "")
	s = reLink.ReplaceAllString(s, "$1")
	s = reBold.ReplaceAllString(s, "$1")
	s = reItalic.ReplaceAllString(s, "$1")
	s = reBullet.ReplaceAllString(s, "")
	s = reLineTrim.ReplaceAllString(s, "")
	s = reBlankRun.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)
	return truncateRunes(s, limit)
}

// truncateRunes cuts at a rune boundary so multi-byte text never ends in
// a broken sequence.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// StripSiteSuffix drops a trailing " | Site" / " - Site" style segment
// when it names the source, which page titles almost always carry.
func StripSiteSuffix(title, siteName string) string {
	for _, sep := range []string{" | ", " – ", " — ", " - "} {
		idx := strings.LastIndex(title, sep)
		if idx <= 0 {
			continue
		}
		suffix := strings.ToLower(strings.TrimSpace(title[idx+len(sep):]))
		site := strings.ToLower(siteName)
		if suffix == "" {
			continue
		}
		if strings.Contains(suffix, site) || strings.Contains(site, suffix) {
			return strings.TrimSpace(title[:idx])
		}
	}
	return strings.TrimSpace(title)
}

// ParseDate turns free-text timestamps into a time, trying native layouts
// first and then the small set of textual patterns seen in feeds and page
// metadata. A nil result means "unknown", not "now".
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z0700",
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"January 2, 2006",
		"2 January 2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	if m := reTextualDate.FindStringSubmatch(s); m != nil {
		month := strings.ToUpper(m[2][:1]) + strings.ToLower(m[2][1:])
		normalized := m[1] + " " + month + " " + m[3]
		if t, err := time.Parse("2 Jan 2006", normalized); err == nil {
			return &t
		}
	}
	if m := reISODate.FindStringSubmatch(s); m != nil {
		if t, err := time.Parse("2006-01-02", m[0]); err == nil {
			return &t
		}
	}
	return nil
}

// DateFromURL recovers a publish date from /YYYY/MM/DD/ permalinks.
func DateFromURL(link string) *time.Time {
	m := reURLDate.FindStringSubmatch(link)
	if m == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
	if err != nil {
		return nil
	}
	return &t
}

// CandidateFromPage builds a candidate from one rendered article page.
// The bool result is false when the page does not yield a usable headline.
// Date resolution order: page metadata, URL permalink, crawl time.
func CandidateFromPage(sourceName, pageURL string, page *RenderedPage, bodyLimit int) (Candidate, bool) {
	headline := strings.TrimSpace(page.Title)
	if headline == "" {
		if m := reFirstHeading.FindStringSubmatch(page.Content); m != nil {
			headline = strings.TrimSpace(m[1])
		}
	}
	headline = StripSiteSuffix(headline, sourceName)
	if len([]rune(headline)) < minHeadline {
		return Candidate{}, false
	}
	headline = truncateRunes(headline, maxHeadline)

	published := ParseDate(page.PublishedAt)
	if published == nil {
		published = DateFromURL(pageURL)
	}
	if published == nil {
		now := time.Now().UTC()
		published = &now
	}

	return Candidate{
		URL:         pageURL,
		SourceName:  sourceName,
		PublishedAt: published,
		Headline:    headline,
		BodyText:    CleanContent(page.Content, bodyLimit),
	}, true
}

// CandidateFromFeedItem builds a candidate from one syndication entry.
// Unlike the scrape path, a missing date stays nil here: feeds that omit
// pubDate give no better signal to fall back on.
func CandidateFromFeedItem(sourceName string, item *gofeed.Item) (Candidate, bool) {
	if item == nil {
		return Candidate{}, false
	}

	headline := strings.TrimSpace(reTag.ReplaceAllString(item.Title, ""))
	link := source.StripTracking(strings.TrimSpace(item.Link))
	if headline == "" || link == "" {
		return Candidate{}, false
	}
	if len([]rune(headline)) < minHeadline {
		return Candidate{}, false
	}
	headline = truncateRunes(headline, maxHeadline)

	var published *time.Time
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		published = &t
	} else {
		published = ParseDate(item.Published)
	}

	body := strings.TrimSpace(reTag.ReplaceAllString(item.Description, ""))
	body = truncateRunes(body, maxListBody)

	return Candidate{
		URL:         link,
		SourceName:  sourceName,
		PublishedAt: published,
		Headline:    headline,
		BodyText:    body,
	}, true
}

// DeepBodyFromPage extracts the long-form body used by deep scrapes.
func DeepBodyFromPage(page *RenderedPage) string {
	return CleanContent(page.Content, maxDeepBody)
}
