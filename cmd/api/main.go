package main

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marketpulse/newsradar/internal/api"
	"github.com/marketpulse/newsradar/internal/collector"
	"github.com/marketpulse/newsradar/internal/config"
	"github.com/marketpulse/newsradar/internal/scheduler"
	"github.com/marketpulse/newsradar/internal/service"
	"github.com/marketpulse/newsradar/internal/storage"
)

func main() {
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	renderer := collector.ResolveRenderer(cfg.RenderMode, cfg.RenderServiceURL)
	col := collector.New(renderer)

	crawler := service.NewCrawler(col, store)
	deepScraper := service.NewDeepScraper(renderer, store)
	summarizer := service.NewSummarizer(
		service.NewAIGateway(cfg.AIGatewayURL, cfg.AIAPIKey, cfg.AIModel),
		store,
	)

	s, err := scheduler.New(cfg.CronSpec, crawler, summarizer, cfg.CrawlWindowDays)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()

	r := gin.Default()
	// Site-wide password when configured; /health stays open for probes.
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	apiServer := api.NewServer(store, crawler, deepScraper, summarizer)
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}

func basicAuthMiddleware(user, pass string) gin.HandlerFunc {
	const realm = "Restricted"
	uBytes := []byte(user)
	pBytes := []byte(pass)

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), uBytes) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pBytes) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
