package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/database"
	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/deals"
	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/feed"
)

const (
	kindArticle = "article"
	kindDeal    = "deal"
)

// Pipeline turns collected articles and deals into stored records. Runs are
// serialized: a run started while another is in progress waits for it, or
// gives up when its context ends first.
type Pipeline struct {
	catalog     SourceCatalog
	scraper     ArticleScraper
	collector   deals.Collector
	articleRepo database.ArticleRepository
	dealRepo    database.DealRepository
	cache       SlugCache
	running     chan struct{}
}

// NewPipeline builds a pipeline. cache may be nil.
func NewPipeline(catalog SourceCatalog, scraper ArticleScraper, collector deals.Collector,
	articleRepo database.ArticleRepository, dealRepo database.DealRepository, cache SlugCache) *Pipeline {
	return &Pipeline{
		catalog:     catalog,
		scraper:     scraper,
		collector:   collector,
		articleRepo: articleRepo,
		dealRepo:    dealRepo,
		cache:       cache,
		running:     make(chan struct{}, 1),
	}
}

func (p *Pipeline) acquire(ctx context.Context) error {
	select {
	case p.running <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running scrape: %w", ctx.Err())
	}
}

func (p *Pipeline) release() {
	<-p.running
}

// ScrapeArticles scrapes every enabled source and stores articles whose slug
// is not yet known. A persistence error aborts the run; records inserted
// before it stay stored.
func (p *Pipeline) ScrapeArticles(ctx context.Context) (Result, error) {
	if err := p.acquire(ctx); err != nil {
		return Result{}, err
	}
	defer p.release()

	start := time.Now()
	sources := p.catalog.GetEnabledConfigs()
	slog.Info("Starting article scrape", "sources", len(sources))

	articles := p.scraper.Run(ctx, sources)
	result := Result{Total: len(articles)}

	for _, article := range articles {
		slug := feed.GenerateSlug(article.Title)

		existing, err := p.articleRepo.FindBySlug(ctx, slug)
		if err != nil {
			return result, fmt.Errorf("failed to look up article %q: %w", slug, err)
		}
		if p.stored(ctx, kindArticle, slug, existing != nil) {
			result.Skipped++
			continue
		}

		record := &database.Article{
			Title:       article.Title,
			Slug:        slug,
			Excerpt:     article.Excerpt,
			Summary:     article.Summary,
			Content:     article.Content,
			ImageURL:    article.ImageURL,
			SourceURL:   article.SourceURL,
			SourceName:  article.SourceName,
			Category:    string(article.Category),
			IsManual:    false,
			PublishedAt: article.PublishedAt,
		}
		if err := p.articleRepo.Insert(ctx, record); err != nil {
			return result, fmt.Errorf("failed to store article %q: %w", slug, err)
		}

		result.Inserted++
		p.remember(ctx, kindArticle, slug)
		slog.Debug("Article stored", "slug", slug, "source", article.SourceName, "category", article.Category)
	}

	slog.Info("Article scrape complete",
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"total", result.Total,
		"duration", time.Since(start).String())

	return result, nil
}

// ScrapeDeals collects deals and stores those whose slug is not yet known,
// marked active.
func (p *Pipeline) ScrapeDeals(ctx context.Context) (Result, error) {
	if err := p.acquire(ctx); err != nil {
		return Result{}, err
	}
	defer p.release()

	slog.Info("Starting deals scrape")

	collected, err := p.collector.Run(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to collect deals: %w", err)
	}

	result := Result{Total: len(collected)}

	for _, deal := range collected {
		slug := feed.GenerateSlug(deal.Title)

		existing, err := p.dealRepo.FindBySlug(ctx, slug)
		if err != nil {
			return result, fmt.Errorf("failed to look up deal %q: %w", slug, err)
		}
		if p.stored(ctx, kindDeal, slug, existing != nil) {
			result.Skipped++
			continue
		}

		record := &database.Deal{
			Title:           deal.Title,
			Slug:            slug,
			Description:     deal.Description,
			ImageURL:        deal.ImageURL,
			OriginalPrice:   deal.OriginalPrice,
			DealPrice:       deal.DealPrice,
			DiscountPercent: deal.DiscountPercent,
			ProductURL:      deal.ProductURL,
			Retailer:        deal.Retailer,
			Category:        deal.Category,
			IsActive:        true,
			ExpiresAt:       deal.ExpiresAt,
		}
		if err := p.dealRepo.Insert(ctx, record); err != nil {
			return result, fmt.Errorf("failed to store deal %q: %w", slug, err)
		}

		result.Inserted++
		p.remember(ctx, kindDeal, slug)
	}

	slog.Info("Deals scrape complete", "inserted", result.Inserted, "skipped", result.Skipped, "total", result.Total)

	return result, nil
}

// stored reconciles the cache with the repository lookup, which always
// decides. Missing slugs are dropped from the cache and found ones are
// written back.
func (p *Pipeline) stored(ctx context.Context, kind, slug string, found bool) bool {
	if p.cache == nil {
		return found
	}

	cached := p.cache.Seen(ctx, kind, slug)
	switch {
	case found && !cached:
		p.cache.Remember(ctx, kind, slug)
	case !found && cached:
		slog.Warn("Stale slug cache entry", "kind", kind, "slug", slug)
		p.cache.Forget(ctx, kind, slug)
	}

	return found
}

func (p *Pipeline) remember(ctx context.Context, kind, slug string) {
	if p.cache != nil {
		p.cache.Remember(ctx, kind, slug)
	}
}
