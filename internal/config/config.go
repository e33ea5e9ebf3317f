package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	// Render capability for the primary scrape path.
	// RenderMode: "service" (remote chromedp sidecar), "direct" (in-process
	// static fetch) or "off" (feed-only crawling).
	RenderMode       string
	RenderServiceURL string

	// AI gateway used by the summarize operation (OpenAI-style chat API).
	AIGatewayURL string
	AIAPIKey     string
	AIModel      string

	CronSpec        string
	CrawlWindowDays int

	BasicAuthUser string
	BasicAuthPass string
}

func Load() *Config {
	cfg := &Config{
		AppPort:          getEnv("APP_PORT", "9000"),
		PostgresDSN:      getEnv("POSTGRES_DSN", "host=localhost user=newsradar password=newsradar dbname=newsradar port=5432 sslmode=disable TimeZone=UTC"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RenderMode:       getEnv("RENDER_MODE", "direct"),
		RenderServiceURL: getEnv("RENDER_SERVICE_URL", ""),
		AIGatewayURL:     getEnv("AI_GATEWAY_URL", ""),
		AIAPIKey:         getEnv("AI_API_KEY", ""),
		AIModel:          getEnv("AI_MODEL", "gpt-4o-mini"),
		CronSpec:         getEnv("CRON_SPEC", "0 */6 * * *"),
		CrawlWindowDays:  getEnvInt("CRAWL_WINDOW_DAYS", 7),
		BasicAuthUser:    getEnv("APP_BASIC_USER", ""),
		BasicAuthPass:    getEnv("APP_BASIC_PASS", ""),
	}

	// A configured sidecar URL implies service mode.
	if cfg.RenderServiceURL != "" && cfg.RenderMode == "direct" {
		cfg.RenderMode = "service"
	}

	log.Printf("config loaded: port=%s cron=%s render=%s window=%dd",
		cfg.AppPort, cfg.CronSpec, cfg.RenderMode, cfg.CrawlWindowDays)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("warn: invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}
