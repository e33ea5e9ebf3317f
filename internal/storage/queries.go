package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Read-side queries for the dashboard. List and stats results go through
// a short-TTL redis cache; writes do not invalidate, the cache just
// expires (same trade-off the ingest side makes everywhere else: slightly
// stale beats extra moving parts).
const readCacheTTL = 5 * time.Minute

// ListOptions filter the article list the way the dashboard does.
type ListOptions struct {
	Sources   []string
	Status    string
	Search    string
	StartDate string // 2006-01-02, inclusive
	EndDate   string
	Limit     int
}

// ListArticles returns matching articles, newest first with unknown dates
// last.
func (s *Store) ListArticles(opts ListOptions) ([]Article, error) {
	if opts.Limit <= 0 || opts.Limit > 1000 {
		opts.Limit = 100
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("news:list:%v:%s:%s:%s:%s:%d",
		opts.Sources, opts.Status, opts.Search, opts.StartDate, opts.EndDate, opts.Limit)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []Article
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	q := s.DB.Model(&Article{})
	if len(opts.Sources) > 0 {
		q = q.Where("source_name IN ?", opts.Sources)
	}
	if opts.Status != "" {
		q = q.Where("extraction_status = ?", opts.Status)
	}
	if opts.Search != "" {
		like := "%" + opts.Search + "%"
		q = q.Where("headline ILIKE ? OR body_text ILIKE ?", like, like)
	}
	if opts.StartDate != "" {
		q = q.Where("published_at >= ?", opts.StartDate)
	}
	if opts.EndDate != "" {
		q = q.Where("published_at <= ?", opts.EndDate+" 23:59:59.999")
	}

	var list []Article
	if err := q.Order("published_at DESC NULLS LAST").Limit(opts.Limit).Find(&list).Error; err != nil {
		return nil, err
	}

	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, readCacheTTL).Err()
		}
	}
	return list, nil
}

// ListBacklog returns non-matching references, newest first.
func (s *Store) ListBacklog(limit int) ([]BacklogItem, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var list []BacklogItem
	err := s.DB.Order("published_at DESC NULLS LAST").Limit(limit).Find(&list).Error
	return list, err
}

// Stats summarizes the matching store for the dashboard cards.
type Stats struct {
	TotalArticles     int            `json:"totalArticles"`
	ExtractedArticles int            `json:"extractedArticles"`
	PendingArticles   int            `json:"pendingArticles"`
	SourceBreakdown   map[string]int `json:"sourceBreakdown"`
	KeywordBreakdown  map[string]int `json:"keywordBreakdown"`
}

func (s *Store) Stats() (*Stats, error) {
	ctx := context.Background()
	const cacheKey = "news:stats"

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached Stats
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var rows []Article
	if err := s.DB.Select("source_name", "extraction_status", "ai_keywords").Find(&rows).Error; err != nil {
		return nil, err
	}

	st := &Stats{
		SourceBreakdown:  map[string]int{},
		KeywordBreakdown: map[string]int{},
	}
	for _, r := range rows {
		st.TotalArticles++
		if r.ExtractionStatus == StatusExtracted {
			st.ExtractedArticles++
		} else {
			st.PendingArticles++
		}
		st.SourceBreakdown[r.SourceName]++
		for _, k := range r.AIKeywords {
			st.KeywordBreakdown[k]++
		}
	}

	if s.Redis != nil {
		if bs, err := json.Marshal(st); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, readCacheTTL).Err()
		}
	}
	return st, nil
}
