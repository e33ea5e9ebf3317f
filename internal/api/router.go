package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/marketpulse/newsradar/internal/service"
	"github.com/marketpulse/newsradar/internal/storage"
)

type Server struct {
	store      *storage.Store
	crawler    *service.Crawler
	deepScrape *service.DeepScraper
	summarizer *service.Summarizer
}

func NewServer(store *storage.Store, crawler *service.Crawler, ds *service.DeepScraper, sum *service.Summarizer) *Server {
	return &Server{store: store, crawler: crawler, deepScrape: ds, summarizer: sum}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/crawl", s.crawl)
		v1.POST("/deep-scrape", s.deepScrapeArticles)
		v1.POST("/summarize", s.summarize)

		v1.GET("/news", s.listNews)
		v1.GET("/backlog", s.listBacklog)
		v1.GET("/stats", s.stats)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type crawlRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (s *Server) crawl(c *gin.Context) {
	var req crawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	result, err := s.crawler.Run(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		if service.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to crawl news sources"})
		return
	}
	c.JSON(http.StatusOK, result)
}

type deepScrapeRequest struct {
	ArticleIDs []string `json:"articleIds"`
}

func (s *Server) deepScrapeArticles(c *gin.Context) {
	var req deepScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	result, err := s.deepScrape.Run(c.Request.Context(), req.ArticleIDs)
	if err != nil {
		switch {
		case service.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		case err == service.ErrRenderUnavailable:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to deep scrape articles"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

type summarizeRequest struct {
	ArticleIDs []string `json:"articleIds"`
	BatchSize  int      `json:"batchSize"`
}

func (s *Server) summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	result, err := s.summarizer.Run(c.Request.Context(), req.ArticleIDs, req.BatchSize)
	if err != nil {
		if err == service.ErrAINotConfigured {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to summarize articles"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listNews(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	var sources []string
	if raw := c.Query("sources"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				sources = append(sources, part)
			}
		}
	}

	items, err := s.store.ListArticles(storage.ListOptions{
		Sources:   sources,
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Limit:     limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_error", "message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": "ok", "message": "success", "data": items})
}

func (s *Server) listBacklog(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	items, err := s.store.ListBacklog(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_error", "message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": "ok", "message": "success", "data": items})
}

func (s *Server) stats(c *gin.Context) {
	st, err := s.store.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_error", "message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": "ok", "message": "success", "data": st})
}
