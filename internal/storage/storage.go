package storage

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/marketpulse/newsradar/internal/collector"
)

// Extraction status lifecycle of a matching article: created Pending by
// the crawl, promoted to Extracted by the summarizer.
const (
	StatusPending   = "Pending"
	StatusExtracted = "Extracted"
)

// Article is a persisted matching article. URL is the idempotency key: a
// re-crawl of the same URL merges into the existing row.
type Article struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	URL         string     `gorm:"size:1024;uniqueIndex" json:"url"`
	SourceName  string     `gorm:"size:128;index" json:"source_name"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
	Headline    string     `gorm:"size:500" json:"headline"`
	BodyText    string     `gorm:"type:text" json:"body_text"`

	ExtractionStatus string                      `gorm:"size:16;index;default:Pending" json:"extraction_status"`
	AISummary        string                      `gorm:"type:text" json:"ai_summary"`
	AIKeywords       datatypes.JSONSlice[string] `json:"ai_keywords"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BacklogItem is a persisted reference to an out-of-scope article, kept
// for manual processing. SourceURL is the idempotency key. Never mutated
// after insert.
type BacklogItem struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	SourceName  string     `gorm:"size:128;index" json:"source_name"`
	SourceURL   string     `gorm:"size:1024;uniqueIndex" json:"source_url"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`

	CreatedAt time.Time `json:"created_at"`
}

// ArticleRef is the id/url pair the deep-scrape path resolves.
type ArticleRef struct {
	ID  string
	URL string
}

// PendingArticle is what the summarizer consumes.
type PendingArticle struct {
	ID       string `json:"id"`
	Headline string `json:"headline"`
	BodyText string `json:"body_text"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Article{}, &BacklogItem{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}

	return &Store{DB: db, Redis: rdb}, nil
}

// toValidUTF8 normalizes scraped text so Postgres never sees an invalid
// byte sequence.
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunesDB cuts at a rune count so varchar limits hold even when
// an upstream extractor misbehaves.
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// UpsertArticles writes the matching partition. URL is the merge key:
// existing rows get their crawl fields refreshed but keep their AI fields
// and extraction status, which belong to the summarizer.
func (s *Store) UpsertArticles(cands []collector.Candidate) (int, error) {
	saved := 0
	for _, c := range cands {
		headline := truncateRunesDB(toValidUTF8(c.Headline), 500)
		body := toValidUTF8(c.BodyText)

		a := &Article{
			ID:               uuid.NewString(),
			URL:              c.URL,
			SourceName:       c.SourceName,
			PublishedAt:      c.PublishedAt,
			Headline:         headline,
			BodyText:         body,
			ExtractionStatus: StatusPending,
		}
		if err := s.DB.Where("url = ?", c.URL).FirstOrCreate(a).Error; err != nil {
			return saved, fmt.Errorf("upsert article %s: %w", c.URL, err)
		}
		if err := s.DB.Model(a).Updates(map[string]any{
			"source_name":  c.SourceName,
			"headline":     headline,
			"body_text":    body,
			"published_at": c.PublishedAt,
		}).Error; err != nil {
			return saved, fmt.Errorf("update article %s: %w", c.URL, err)
		}
		saved++
	}
	return saved, nil
}

// UpsertBacklog writes the non-matching partition, keyed by source_url.
// Existing rows are left alone: the backlog is append-only.
func (s *Store) UpsertBacklog(cands []collector.Candidate) (int, error) {
	saved := 0
	for _, c := range cands {
		b := &BacklogItem{
			ID:          uuid.NewString(),
			SourceName:  c.SourceName,
			SourceURL:   c.URL,
			PublishedAt: c.PublishedAt,
		}
		if err := s.DB.Where("source_url = ?", c.URL).FirstOrCreate(b).Error; err != nil {
			return saved, fmt.Errorf("upsert backlog %s: %w", c.URL, err)
		}
		saved++
	}
	return saved, nil
}

// ArticleRefs resolves stored URLs for a set of article ids. Unknown ids
// are simply absent from the result.
func (s *Store) ArticleRefs(ids []string) ([]ArticleRef, error) {
	var rows []Article
	if err := s.DB.Select("id", "url").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	refs := make([]ArticleRef, 0, len(rows))
	for _, r := range rows {
		refs = append(refs, ArticleRef{ID: r.ID, URL: r.URL})
	}
	return refs, nil
}

// UpdateBodyText replaces an article's body with a deep-scraped one. A
// shorter body never overwrites a longer one.
func (s *Store) UpdateBodyText(id, body string) error {
	var current Article
	if err := s.DB.Select("id", "body_text").Where("id = ?", id).First(&current).Error; err != nil {
		return err
	}
	if len([]rune(body)) <= len([]rune(current.BodyText)) {
		return nil
	}
	return s.DB.Model(&Article{}).Where("id = ?", id).
		Update("body_text", toValidUTF8(body)).Error
}

// PendingArticles returns matching records awaiting summarization. When
// ids are given the status filter is skipped: an explicit request may
// re-summarize.
func (s *Store) PendingArticles(ids []string, limit int) ([]PendingArticle, error) {
	if limit <= 0 {
		limit = 5
	} else if limit > 50 {
		limit = 50
	}
	q := s.DB.Model(&Article{}).Select("id", "headline", "body_text")
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	} else {
		q = q.Where("extraction_status = ?", StatusPending).Limit(limit)
	}

	var rows []Article
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]PendingArticle, 0, len(rows))
	for _, r := range rows {
		out = append(out, PendingArticle{ID: r.ID, Headline: r.Headline, BodyText: r.BodyText})
	}
	return out, nil
}

// SaveSummary records the summarizer's output and promotes the article.
func (s *Store) SaveSummary(id, summary string, keywords []string) error {
	return s.DB.Model(&Article{}).Where("id = ?", id).Updates(map[string]any{
		"ai_summary":        toValidUTF8(summary),
		"ai_keywords":       datatypes.NewJSONSlice(keywords),
		"extraction_status": StatusExtracted,
	}).Error
}
