package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

type renderRequest struct {
	URL      string `json:"url"`
	MaxChars int    `json:"maxChars"`
}

type renderResponse struct {
	OK          bool     `json:"ok"`
	Title       string   `json:"title,omitempty"`
	Text        string   `json:"text,omitempty"`
	Links       []string `json:"links,omitempty"`
	PublishedAt string   `json:"publishedAt,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Headless-browser sidecar: renders a page and returns its title, main
// text, outbound links and publish metadata. The crawler and deep-scrape
// paths talk to it through POST /render.
func main() {
	// One headless instance for the whole process; each request gets its
	// own timeout context on top of it.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// Warm up so the first real request doesn't pay the browser start cost.
	if err := chromedp.Run(browserCtx); err != nil {
		log.Printf("warn: warmup chromedp failed: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/render", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req renderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, renderResponse{OK: false, Error: "invalid json"})
			return
		}
		if req.URL == "" {
			writeJSON(w, http.StatusBadRequest, renderResponse{OK: false, Error: "url is required"})
			return
		}
		if req.MaxChars <= 0 || req.MaxChars > 16000 {
			req.MaxChars = 8000
		}

		ctx, cancel := context.WithTimeout(browserCtx, 25*time.Second)
		defer cancel()

		var (
			title     string
			text      string
			published string
			links     []string
		)
		err := chromedp.Run(ctx,
			chromedp.Navigate(req.URL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Title(&title),
			chromedp.Evaluate(extractTextJS(), &text),
			chromedp.Evaluate(extractPublishedJS(), &published),
			chromedp.Evaluate(extractLinksJS(), &links),
		)
		if err != nil {
			log.Printf("render error: %v (url=%s)", err, req.URL)
			writeJSON(w, http.StatusOK, renderResponse{OK: false, Error: err.Error()})
			return
		}

		text = trimWhitespace(text)
		if text == "" && len(links) == 0 {
			writeJSON(w, http.StatusOK, renderResponse{OK: false, Error: "empty content"})
			return
		}

		if rs := []rune(text); len(rs) > req.MaxChars {
			text = string(rs[:req.MaxChars])
		}

		writeJSON(w, http.StatusOK, renderResponse{
			OK:          true,
			Title:       strings.TrimSpace(title),
			Text:        text,
			Links:       links,
			PublishedAt: published,
		})
	})

	addr := ":" + getEnv("PORT", "4000")
	log.Printf("render-service listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("http server error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// extractTextJS pulls the main article text, preferring common content
// containers and falling back to long paragraphs anywhere on the page.
func extractTextJS() string {
	return `(function () {
  function getTextFromSelector(selector) {
    var el = document.querySelector(selector);
    if (!el) return "";
    return el.innerText || "";
  }

  var selectors = [
    "article",
    "main",
    "div.article-content",
    "div#article-content",
    "div.entry-content",
    "div.post-content",
    "div#content",
    "div.main-content",
    "div.content"
  ];

  var text = "";
  for (var i = 0; i < selectors.length; i++) {
    text = getTextFromSelector(selectors[i]).trim();
    if (text && text.length > 200) {
      break;
    }
  }

  if (!text || text.length < 200) {
    var nodes = Array.prototype.slice.call(document.querySelectorAll("p, div"));
    var pieces = [];
    for (var j = 0; j < nodes.length; j++) {
      var t = (nodes[j].innerText || "").trim();
      if (t.length >= 40) {
        pieces.push(t);
      }
      if (pieces.join("\\n\\n").length > 8000) break;
    }
    text = pieces.join("\\n\\n");
  }

  return (text || "").replace(/\\s+\\n/g, "\\n").trim();
})();`
}

// extractPublishedJS reads publish metadata the way article pages expose
// it: meta tags first, then a visible <time> element.
func extractPublishedJS() string {
	return `(function () {
  var metas = [
    'meta[property="article:published_time"]',
    'meta[name="article:published_time"]',
    'meta[itemprop="datePublished"]',
    'meta[name="date"]'
  ];
  for (var i = 0; i < metas.length; i++) {
    var el = document.querySelector(metas[i]);
    if (el && el.content) return el.content;
  }
  var t = document.querySelector("time[datetime]");
  if (t) return t.getAttribute("datetime") || "";
  return "";
})();`
}

// extractLinksJS collects absolute http(s) hrefs, deduped, bounded so a
// link-farm page cannot blow up the response.
func extractLinksJS() string {
	return `(function () {
  var seen = {};
  var out = [];
  var anchors = document.querySelectorAll("a[href]");
  for (var i = 0; i < anchors.length; i++) {
    var href = anchors[i].href;
    if (!href || seen[href]) continue;
    if (href.indexOf("http://") !== 0 && href.indexOf("https://") !== 0) continue;
    seen[href] = true;
    out.push(href);
    if (out.length >= 500) break;
  }
  return out;
})();`
}

func trimWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}
