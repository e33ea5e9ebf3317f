package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/marketpulse/newsradar/internal/collector"
	"github.com/marketpulse/newsradar/internal/config"
	"github.com/marketpulse/newsradar/internal/service"
	"github.com/marketpulse/newsradar/internal/storage"
)

// One-shot crawl entry point, for manual runs and cron outside the API
// process.
func main() {
	var startDate, endDate string
	flag.StringVar(&startDate, "start", "", "crawl window start (YYYY-MM-DD), defaults to window days back")
	flag.StringVar(&endDate, "end", "", "crawl window end (YYYY-MM-DD), defaults to today")
	flag.Parse()

	cfg := config.Load()

	if endDate == "" {
		endDate = time.Now().UTC().Format("2006-01-02")
	}
	if startDate == "" {
		start := time.Now().UTC().AddDate(0, 0, -cfg.CrawlWindowDays)
		if start.Before(service.MinCrawlDate) {
			start = service.MinCrawlDate
		}
		startDate = start.Format("2006-01-02")
	}

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	renderer := collector.ResolveRenderer(cfg.RenderMode, cfg.RenderServiceURL)
	crawler := service.NewCrawler(collector.New(renderer), store)

	result, err := crawler.Run(context.Background(), startDate, endDate)
	if err != nil {
		log.Fatalf("crawl failed: %v", err)
	}

	log.Printf("%s", result.Message)
	log.Printf("stats: total=%d withinDateRange=%d matching=%d nonMatching=%d",
		result.Stats.Total, result.Stats.WithinDateRange, result.Stats.Matching, result.Stats.NonMatching)
	for _, e := range result.Inserted.Errors {
		log.Printf("insert error: %s", e)
	}
}
