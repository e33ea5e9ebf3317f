package service

import (
	"context"
	"errors"
	"testing"

	"github.com/marketpulse/newsradar/internal/storage"
)

type fakeGateway struct {
	summaries map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeGateway) Summarize(_ context.Context, headline, _ string) (string, []string, error) {
	f.calls = append(f.calls, headline)
	if err := f.errs[headline]; err != nil {
		return "", nil, err
	}
	return f.summaries[headline], []string{"private equity"}, nil
}

type fakeSummarizeStore struct {
	pending    []storage.PendingArticle
	pendingErr error

	saved    map[string]string
	saveFail map[string]bool
	gotIDs   []string
	gotLimit int
}

func (f *fakeSummarizeStore) PendingArticles(ids []string, limit int) ([]storage.PendingArticle, error) {
	f.gotIDs = ids
	f.gotLimit = limit
	if f.pendingErr != nil {
		return nil, f.pendingErr
	}
	return f.pending, nil
}

func (f *fakeSummarizeStore) SaveSummary(id, summary string, keywords []string) error {
	if f.saveFail[id] {
		return errors.New("db down")
	}
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[id] = summary
	return nil
}

func TestSummarizeRequiresGateway(t *testing.T) {
	s := NewSummarizer(nil, &fakeSummarizeStore{})
	_, err := s.Run(context.Background(), nil, 0)
	if !errors.Is(err, ErrAINotConfigured) {
		t.Fatalf("expected ErrAINotConfigured, got %v", err)
	}
}

func TestSummarizeNoPendingArticles(t *testing.T) {
	s := NewSummarizer(&fakeGateway{}, &fakeSummarizeStore{})
	res, err := s.Run(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Success || res.Message != "No pending articles to process" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Results) != 0 {
		t.Fatalf("expected no outcomes, got %d", len(res.Results))
	}
}

func TestSummarizeDefaultBatchSize(t *testing.T) {
	store := &fakeSummarizeStore{}
	s := NewSummarizer(&fakeGateway{}, store)
	if _, err := s.Run(context.Background(), nil, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.gotLimit != defaultSummarizeBatch {
		t.Fatalf("limit = %d, want %d", store.gotLimit, defaultSummarizeBatch)
	}
}

func TestSummarizeProcessesAndSaves(t *testing.T) {
	gw := &fakeGateway{summaries: map[string]string{
		"Fund one closes": "Summary one",
		"Fund two closes": "Summary two",
	}}
	store := &fakeSummarizeStore{pending: []storage.PendingArticle{
		{ID: "id-1", Headline: "Fund one closes", BodyText: "body"},
		{ID: "id-2", Headline: "Fund two closes", BodyText: "body"},
	}}
	s := NewSummarizer(gw, store)

	res, err := s.Run(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Processed != 2 || res.Failed != 0 {
		t.Fatalf("processed/failed = %d/%d", res.Processed, res.Failed)
	}
	if store.saved["id-1"] != "Summary one" || store.saved["id-2"] != "Summary two" {
		t.Fatalf("saved = %v", store.saved)
	}
	if res.Message != "Processed 2/2 articles" {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestSummarizeIsolatesFailures(t *testing.T) {
	gw := &fakeGateway{
		summaries: map[string]string{"Good": "ok", "SaveBroken": "ok"},
		errs:      map[string]error{"Bad": errors.New("rate limited")},
	}
	store := &fakeSummarizeStore{
		pending: []storage.PendingArticle{
			{ID: "id-1", Headline: "Good"},
			{ID: "id-2", Headline: "Bad"},
			{ID: "id-3", Headline: "SaveBroken"},
		},
		saveFail: map[string]bool{"id-3": true},
	}
	s := NewSummarizer(gw, store)

	res, err := s.Run(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Processed != 1 || res.Failed != 2 {
		t.Fatalf("processed/failed = %d/%d", res.Processed, res.Failed)
	}
	if len(gw.calls) != 3 {
		t.Fatalf("all pending articles should be attempted, got %v", gw.calls)
	}

	byID := map[string]SummarizeOutcome{}
	for _, o := range res.Results {
		byID[o.ID] = o
	}
	if byID["id-2"].Error != "summarization failed" {
		t.Fatalf("id-2 error = %q", byID["id-2"].Error)
	}
	if byID["id-3"].Error != "failed to save summary" {
		t.Fatalf("id-3 error = %q", byID["id-3"].Error)
	}
}

func TestParseSummaryReply(t *testing.T) {
	summary, keywords := parseSummaryReply(`{"summary": "A fund closed.", "keywords": ["buyout", "fund"]}`)
	if summary != "A fund closed." || len(keywords) != 2 {
		t.Fatalf("got %q %v", summary, keywords)
	}

	// Models often wrap the object in fences or prose.
	summary, keywords = parseSummaryReply("Here you go:\n```json\n{\"summary\": \"Wrapped.\", \"keywords\": [\"pe\"]}\n```")
	if summary != "Wrapped." || len(keywords) != 1 {
		t.Fatalf("got %q %v", summary, keywords)
	}

	// No parseable object: the raw text becomes the summary.
	summary, keywords = parseSummaryReply("  The deal closed at $2B.  ")
	if summary != "The deal closed at $2B." || keywords != nil {
		t.Fatalf("got %q %v", summary, keywords)
	}
}
