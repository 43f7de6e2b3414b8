package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/database"
	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/feed"
	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/tasks"
)

type fakeRunner struct {
	articles tasks.Result
	deals    tasks.Result
	err      error
	calls    int
	ctx      context.Context
	ctxErr   error
}

func (r *fakeRunner) ScrapeArticles(ctx context.Context) (tasks.Result, error) {
	r.calls++
	r.ctx = ctx
	r.ctxErr = ctx.Err()
	return r.articles, r.err
}

func (r *fakeRunner) ScrapeDeals(ctx context.Context) (tasks.Result, error) {
	r.calls++
	return r.deals, r.err
}

type fakeArticleRepo struct {
	database.ArticleRepository
	articles []database.Article
	err      error
}

func (r *fakeArticleRepo) GetLatest(ctx context.Context, limit int) ([]database.Article, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(r.articles) > limit {
		return r.articles[:limit], nil
	}
	return r.articles, nil
}

func (r *fakeArticleRepo) Count(ctx context.Context) (int, error) {
	return len(r.articles), r.err
}

type fakeDealRepo struct {
	database.DealRepository
	count  int
	active []database.Deal
	err    error
}

func (r *fakeDealRepo) GetActive(ctx context.Context, limit int) ([]database.Deal, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.active, nil
}

func (r *fakeDealRepo) Count(ctx context.Context) (int, error) {
	return r.count, nil
}

type fakeSources int

func (s fakeSources) GetConfigCount() int {
	return int(s)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(runner ScrapeRunner, articles *fakeArticleRepo, secret string) *gin.Engine {
	return newTestServerWithDeals(runner, articles, &fakeDealRepo{count: 6}, secret)
}

func newTestServerWithDeals(runner ScrapeRunner, articles *fakeArticleRepo, deals *fakeDealRepo, secret string) *gin.Engine {
	handler := NewHandler(runner, articles, deals, fakeSources(8),
		feed.NewGenerator("https://devmatrix.example", "test"), nil, "test")
	return NewServer(handler, secret)
}

func perform(r http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestScrapeRequiresBearerToken(t *testing.T) {
	runner := &fakeRunner{}
	server := newTestServer(runner, &fakeArticleRepo{}, "s3cret")

	testCases := []struct {
		name string
		auth string
	}{
		{"missing", ""},
		{"wrong token", "Bearer nope"},
		{"wrong scheme", "Basic s3cret"},
		{"bare token", "s3cret"},
	}

	for _, tc := range testCases {
		for _, path := range []string{"/api/scrape", "/api/scrape/deals"} {
			t.Run(tc.name+" "+path, func(t *testing.T) {
				w := perform(server, http.MethodPost, path, tc.auth)
				if w.Code != http.StatusUnauthorized {
					t.Errorf("Expected status 401, got %d", w.Code)
				}
				if !strings.Contains(w.Body.String(), "Unauthorized") {
					t.Errorf("Expected Unauthorized error, got %s", w.Body.String())
				}
			})
		}
	}

	if runner.calls != 0 {
		t.Errorf("Expected no scrape work before authentication, got %d calls", runner.calls)
	}
}

func TestScrapeSuccess(t *testing.T) {
	runner := &fakeRunner{
		articles: tasks.Result{Inserted: 1, Skipped: 1, Total: 2},
		deals:    tasks.Result{Inserted: 0, Skipped: 6, Total: 6},
	}
	server := newTestServer(runner, &fakeArticleRepo{}, "s3cret")

	for _, method := range []string{http.MethodPost, http.MethodGet} {
		w := perform(server, method, "/api/scrape", "Bearer s3cret")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200 for %s, got %d", method, w.Code)
		}

		var response ScrapeResponse
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Expected JSON response, got error: %v", err)
		}
		expected := ScrapeResponse{Success: true, Inserted: 1, Skipped: 1, Total: 2}
		if response != expected {
			t.Errorf("Expected %+v, got %+v", expected, response)
		}
	}

	w := perform(server, http.MethodGet, "/api/scrape/deals", "Bearer s3cret")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var response ScrapeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if response.Skipped != 6 || response.Total != 6 {
		t.Errorf("Expected deals result, got %+v", response)
	}
}

func TestScrapeWithoutSecretIsOpen(t *testing.T) {
	runner := &fakeRunner{articles: tasks.Result{Total: 0}}
	server := newTestServer(runner, &fakeArticleRepo{}, "")

	w := perform(server, http.MethodPost, "/api/scrape", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"success":true`) {
		t.Errorf("Expected success payload, got %s", w.Body.String())
	}
}

func TestScrapeFailureIsGeneric(t *testing.T) {
	runner := &fakeRunner{err: errors.New("database is locked: /var/data/secret.db")}
	server := newTestServer(runner, &fakeArticleRepo{}, "s3cret")

	w := perform(server, http.MethodPost, "/api/scrape", "Bearer s3cret")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if response["error"] != "Scrape failed" {
		t.Errorf("Expected error 'Scrape failed', got %v", response["error"])
	}
	if len(response) != 1 {
		t.Errorf("Expected only the error field, got %v", response)
	}

	w = perform(server, http.MethodPost, "/api/scrape/deals", "Bearer s3cret")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret.db") {
		t.Error("Expected failure details not to leak")
	}
}

func TestGetFeed(t *testing.T) {
	articles := &fakeArticleRepo{articles: []database.Article{{
		Title:       "GPT-5 Launches",
		Slug:        "gpt-5-launches",
		SourceURL:   "https://example.com/gpt-5",
		SourceName:  "Example",
		Category:    "ai",
		PublishedAt: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
	}}}
	server := newTestServer(&fakeRunner{}, articles, "s3cret")

	w := perform(server, http.MethodGet, "/feed.xml", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("Expected RSS content type, got '%s'", ct)
	}
	if w.Header().Get("X-Feed-Items") != "1" {
		t.Errorf("Expected X-Feed-Items 1, got '%s'", w.Header().Get("X-Feed-Items"))
	}
	if !strings.Contains(w.Body.String(), "<link>https://devmatrix.example/article/gpt-5-launches</link>") {
		t.Errorf("Expected article link in feed, got %s", w.Body.String())
	}
}

func TestGetFeedDatabaseError(t *testing.T) {
	server := newTestServer(&fakeRunner{}, &fakeArticleRepo{err: errors.New("boom")}, "")

	w := perform(server, http.MethodGet, "/feed.xml", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestGetHealth(t *testing.T) {
	articles := &fakeArticleRepo{articles: make([]database.Article, 3)}
	server := newTestServer(&fakeRunner{}, articles, "s3cret")

	w := perform(server, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	expected := map[string]float64{"articles": 3, "deals": 6, "sources": 8}
	for key, value := range expected {
		if health[key] != value {
			t.Errorf("Expected %s=%v, got %v", key, value, health[key])
		}
	}
	if health["status"] != "ok" {
		t.Errorf("Expected status 'ok', got %v", health["status"])
	}
}

func TestScrapeRunIsDetachedButBounded(t *testing.T) {
	runner := &fakeRunner{}
	server := newTestServer(runner, &fakeArticleRepo{}, "")

	// The caller is already gone when the run starts.
	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/api/scrape", nil).WithContext(reqCtx)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if runner.ctx == nil {
		t.Fatal("Expected runner to receive a context")
	}

	deadline, ok := runner.ctx.Deadline()
	if !ok {
		t.Fatal("Expected run context to carry a deadline")
	}
	if remaining := time.Until(deadline); remaining <= 0 || remaining > tasks.RunTimeout {
		t.Errorf("Expected deadline within %v, got %v", tasks.RunTimeout, remaining)
	}
	if runner.ctxErr != nil {
		t.Errorf("Expected run context not to follow the request cancellation, got: %v", runner.ctxErr)
	}
}

func TestGetDeals(t *testing.T) {
	discount := 37
	deals := &fakeDealRepo{active: []database.Deal{
		{Title: "Apple AirPods Pro 2", Slug: "apple-airpods-pro-2", DealPrice: "$249.99",
			DiscountPercent: &discount, ProductURL: "https://example.com/airpods", Retailer: "Amazon", Category: "audio", IsActive: true},
		{Title: "ChatGPT Plus", Slug: "chatgpt-plus", DealPrice: "$20/mo",
			ProductURL: "https://example.com/chatgpt", Retailer: "OpenAI", Category: "software", IsActive: true},
	}}
	server := newTestServerWithDeals(&fakeRunner{}, &fakeArticleRepo{}, deals, "s3cret")

	w := perform(server, http.MethodGet, "/deals.json", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body struct {
		Deals []DealResponse `json:"deals"`
		Count int            `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if body.Count != 2 || len(body.Deals) != 2 {
		t.Fatalf("Expected 2 deals, got count=%d len=%d", body.Count, len(body.Deals))
	}
	if body.Deals[0].DiscountPercent == nil || *body.Deals[0].DiscountPercent != 37 {
		t.Errorf("Expected discount 37, got %v", body.Deals[0].DiscountPercent)
	}
	if body.Deals[1].DiscountPercent != nil {
		t.Errorf("Expected no discount, got %v", *body.Deals[1].DiscountPercent)
	}
}

func TestGetDealsDatabaseError(t *testing.T) {
	deals := &fakeDealRepo{err: errors.New("boom")}
	server := newTestServerWithDeals(&fakeRunner{}, &fakeArticleRepo{}, deals, "")

	w := perform(server, http.MethodGet, "/deals.json", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}
