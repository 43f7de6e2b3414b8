package database

import (
	"time"
)

type Article struct {
	ID          int64
	Title       string
	Slug        string
	Excerpt     string
	Summary     string
	Content     string
	ImageURL    string
	SourceURL   string
	SourceName  string
	Category    string
	Tags        []string
	IsFeatured  bool
	IsManual    bool // false for scraped articles
	Views       int
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Deal struct {
	ID              int64
	Title           string
	Slug            string
	Description     string
	ImageURL        string
	OriginalPrice   string
	DealPrice       string
	DiscountPercent *int
	ProductURL      string
	Retailer        string
	Category        string
	IsActive        bool
	ExpiresAt       *time.Time
	Clicks          int
	CreatedAt       time.Time
}
