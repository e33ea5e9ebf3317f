package source

import (
	"net/url"
	"strings"
)

// Source describes one news site the crawler knows about. The list is
// static configuration: it is never mutated at runtime.
type Source struct {
	Name string
	// URL is the listing page rendered by the primary scrape path.
	URL string
	// FeedURL is the syndication fallback; empty when the site has no
	// usable feed.
	FeedURL string
	// LinkPatterns are substrings a discovered link must contain (any one
	// of them) to count as an article link on this site.
	LinkPatterns []string
}

// defaultLinkPatterns match article-looking paths on most news sites,
// including date-based permalinks like /2026/01/.
var defaultLinkPatterns = []string{"/news/", "/article/", "/story/", "/post/", "/20"}

// excludedLinkParts rejects navigation, taxonomy and asset links no matter
// what the per-source patterns say.
var excludedLinkParts = []string{
	"/tag/", "/category/", "/author/", "/page/", "/search", "/login",
	"/register", "/signup", "/wp-login", "#",
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".pdf", ".zip", ".mp4", ".css", ".js",
}

var registry = []Source{
	{Name: "TechCrunch", URL: "https://techcrunch.com", FeedURL: "https://techcrunch.com/feed/", LinkPatterns: defaultLinkPatterns},
	{Name: "Crunchbase News", URL: "https://news.crunchbase.com", FeedURL: "https://news.crunchbase.com/feed/", LinkPatterns: defaultLinkPatterns},
	{Name: "Moneycontrol", URL: "https://www.moneycontrol.com/news/business", FeedURL: "https://www.moneycontrol.com/rss/business.xml", LinkPatterns: defaultLinkPatterns},
	{Name: "LiveMint", URL: "https://www.livemint.com/companies", FeedURL: "https://www.livemint.com/rss/companies", LinkPatterns: defaultLinkPatterns},
	{Name: "ET", URL: "https://economictimes.indiatimes.com", FeedURL: "https://economictimes.indiatimes.com/rssfeedstopstories.cms", LinkPatterns: defaultLinkPatterns},
	{Name: "PR Newswire", URL: "https://www.prnewswire.com/news-releases/financial-services-latest-news", FeedURL: "https://www.prnewswire.com/rss/financial-services-latest-news/financial-services-latest-news-list.rss", LinkPatterns: []string{"/news-releases/", "/news/", "/20"}},
	{Name: "BusinessWire", URL: "https://www.businesswire.com/portal/site/home", FeedURL: "https://feed.businesswire.com/rss/home/?rss=G1QFDERJXkJeEFpRWQ==", LinkPatterns: []string{"/news/", "/article/", "/20"}},
	{Name: "VCCircle", URL: "https://www.vccircle.com", LinkPatterns: defaultLinkPatterns},
	{Name: "DealStreetAsia", URL: "https://www.dealstreetasia.com", LinkPatterns: defaultLinkPatterns},
	{Name: "PEI", URL: "https://www.privateequityinternational.com", LinkPatterns: defaultLinkPatterns},
}

// All returns the fixed, ordered source list.
func All() []Source {
	out := make([]Source, len(registry))
	copy(out, registry)
	return out
}

// AcceptsLink reports whether a discovered link looks like an article on
// this source: it must contain at least one of the source's patterns and
// none of the global exclusions. Matching is case-insensitive.
func (s Source) AcceptsLink(link string) bool {
	if link == "" {
		return false
	}
	lower := strings.ToLower(link)
	for _, ex := range excludedLinkParts {
		if strings.Contains(lower, ex) {
			return false
		}
	}
	for _, p := range s.LinkPatterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// FilterLinks keeps accepted links, strips tracking parameters and drops
// duplicates while preserving discovery order.
func (s Source) FilterLinks(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, l := range links {
		l = StripTracking(strings.TrimSpace(l))
		if !s.AcceptsLink(l) {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// StripTracking removes utm_* query parameters so the same article
// crawled through different campaigns dedupes to one URL. Other query
// parameters survive: two links differing only in non-utm params stay
// distinct.
func StripTracking(link string) string {
	if !strings.Contains(link, "utm_") {
		return link
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	q := u.Query()
	changed := false
	for k := range q {
		if strings.HasPrefix(k, "utm_") {
			q.Del(k)
			changed = true
		}
	}
	if !changed {
		return link
	}
	u.RawQuery = q.Encode()
	return u.String()
}
