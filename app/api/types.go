package api

import (
	"context"
	"time"

	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/database"
	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/feed"
	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/tasks"
)

type GeneratorInterface interface {
	Run(articles []database.Article) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

// ScrapeRunner executes one ingestion run per call.
type ScrapeRunner interface {
	ScrapeArticles(ctx context.Context) (tasks.Result, error)
	ScrapeDeals(ctx context.Context) (tasks.Result, error)
}

var _ ScrapeRunner = (*tasks.Pipeline)(nil)

type SourceCounter interface {
	GetConfigCount() int
}

type CacheHealth interface {
	Health(ctx context.Context) map[string]interface{}
}

type Handler struct {
	runner      ScrapeRunner
	articleRepo database.ArticleRepository
	dealRepo    database.DealRepository
	sources     SourceCounter
	generator   GeneratorInterface
	cache       CacheHealth
	version     string
	feedItems   int
}

type ScrapeResponse struct {
	Success  bool `json:"success"`
	Inserted int  `json:"inserted"`
	Skipped  int  `json:"skipped"`
	Total    int  `json:"total"`
}

type DealResponse struct {
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Description     string     `json:"description,omitempty"`
	ImageURL        string     `json:"image_url,omitempty"`
	OriginalPrice   string     `json:"original_price,omitempty"`
	DealPrice       string     `json:"deal_price"`
	DiscountPercent *int       `json:"discount_percent,omitempty"`
	ProductURL      string     `json:"product_url"`
	Retailer        string     `json:"retailer"`
	Category        string     `json:"category"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

func newDealResponse(deal database.Deal) DealResponse {
	return DealResponse{
		Title:           deal.Title,
		Slug:            deal.Slug,
		Description:     deal.Description,
		ImageURL:        deal.ImageURL,
		OriginalPrice:   deal.OriginalPrice,
		DealPrice:       deal.DealPrice,
		DiscountPercent: deal.DiscountPercent,
		ProductURL:      deal.ProductURL,
		Retailer:        deal.Retailer,
		Category:        deal.Category,
		ExpiresAt:       deal.ExpiresAt,
	}
}
