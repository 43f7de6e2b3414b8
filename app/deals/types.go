package deals

import (
	"context"
	"time"
)

type Deal struct {
	Title           string     `yaml:"title" validate:"required"`
	Description     string     `yaml:"description" validate:"required"`
	ImageURL        string     `yaml:"image_url" validate:"omitempty,url"`
	OriginalPrice   string     `yaml:"original_price"`
	DealPrice       string     `yaml:"deal_price" validate:"required"`
	DiscountPercent *int       `yaml:"discount_percent" validate:"omitempty,gte=0,lte=100"`
	ProductURL      string     `yaml:"product_url" validate:"required,url"`
	Retailer        string     `yaml:"retailer" validate:"required"`
	Category        string     `yaml:"category" validate:"required"`
	ExpiresAt       *time.Time `yaml:"expires_at"`
}

type Collector interface {
	Run(ctx context.Context) ([]Deal, error)
}
