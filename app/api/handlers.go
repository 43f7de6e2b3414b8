package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/database"
	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/tasks"
)

const defaultFeedItems = 50

const runTimeout = tasks.RunTimeout

// NewHandler wires the HTTP handlers. cache may be nil.
func NewHandler(runner ScrapeRunner, articleRepo database.ArticleRepository, dealRepo database.DealRepository,
	sources SourceCounter, generator GeneratorInterface, cache CacheHealth, version string) *Handler {
	return &Handler{
		runner:      runner,
		articleRepo: articleRepo,
		dealRepo:    dealRepo,
		sources:     sources,
		generator:   generator,
		cache:       cache,
		version:     version,
		feedItems:   defaultFeedItems,
	}
}

func (h *Handler) ScrapeArticles(c *gin.Context) {
	h.scrape(c, "articles", "Scrape failed", h.runner.ScrapeArticles)
}

func (h *Handler) ScrapeDeals(c *gin.Context) {
	h.scrape(c, "deals", "Deals scrape failed", h.runner.ScrapeDeals)
}

// scrape runs to completion even if the caller disconnects, so a run is
// never cut off halfway by a client timeout. It is still bounded by
// runTimeout.
func (h *Handler) scrape(c *gin.Context, kind, failure string, run func(context.Context) (tasks.Result, error)) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), runTimeout)
	defer cancel()

	start := time.Now()
	result, err := run(ctx)
	if err != nil {
		slog.Error("Scrape failed", "kind", kind, "inserted", result.Inserted, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": failure})
		return
	}

	slog.Info("Scrape triggered", "kind", kind, "inserted", result.Inserted, "skipped", result.Skipped,
		"total", result.Total, "duration", time.Since(start).String())

	c.JSON(http.StatusOK, ScrapeResponse{
		Success:  true,
		Inserted: result.Inserted,
		Skipped:  result.Skipped,
		Total:    result.Total,
	})
}

func (h *Handler) GetFeed(c *gin.Context) {
	articles, err := h.articleRepo.GetLatest(c.Request.Context(), h.feedItems)
	if err != nil {
		slog.Error("Database error", "operation", "get_latest_articles", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.generator.Run(articles)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(articles)))

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetDeals(c *gin.Context) {
	active, err := h.dealRepo.GetActive(c.Request.Context(), h.feedItems)
	if err != nil {
		slog.Error("Database error", "operation", "get_active_deals", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load deals"})
		return
	}

	deals := make([]DealResponse, 0, len(active))
	for _, deal := range active {
		deals = append(deals, newDealResponse(deal))
	}

	c.JSON(http.StatusOK, gin.H{"deals": deals, "count": len(deals)})
}

func (h *Handler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()

	health := map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"sources":   h.sources.GetConfigCount(),
	}

	if count, err := h.articleRepo.Count(ctx); err == nil {
		health["articles"] = count
	} else {
		slog.Warn("Database error", "operation", "count_articles", "error", err)
		health["status"] = "degraded"
	}

	if count, err := h.dealRepo.Count(ctx); err == nil {
		health["deals"] = count
	} else {
		slog.Warn("Database error", "operation", "count_deals", "error", err)
		health["status"] = "degraded"
	}

	if h.cache != nil {
		health["cache"] = h.cache.Health(ctx)
	}

	c.JSON(http.StatusOK, health)
}
