package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/marketpulse/newsradar/internal/service"
)

// Scheduler runs the crawl on a cron spec over a trailing window, then
// feeds a summarize batch with whatever the crawl left pending.
type Scheduler struct {
	cron       *cron.Cron
	crawler    *service.Crawler
	summarizer *service.Summarizer
	windowDays int
}

func New(spec string, crawler *service.Crawler, summarizer *service.Summarizer, windowDays int) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:       c,
		crawler:    crawler,
		summarizer: summarizer,
		windowDays: windowDays,
	}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// Delay the first run so startup traffic isn't competing with a crawl.
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.runOnce()
	})
}

func (s *Scheduler) runOnce() {
	ctx := context.Background()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -s.windowDays)
	if min := service.MinCrawlDate; start.Before(min) {
		start = min
	}

	result, err := s.crawler.Run(ctx, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		log.Printf("scheduled crawl failed: %v", err)
		return
	}
	log.Printf("scheduled crawl: %s", result.Message)

	if s.summarizer == nil {
		return
	}
	sum, err := s.summarizer.Run(ctx, nil, 0)
	if err != nil {
		if err != service.ErrAINotConfigured {
			log.Printf("scheduled summarize failed: %v", err)
		}
		return
	}
	log.Printf("scheduled summarize: %s", sum.Message)
}
