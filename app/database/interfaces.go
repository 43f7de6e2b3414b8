package database

import (
	"context"
)

type ArticleRepository interface {
	FindBySlug(ctx context.Context, slug string) (*Article, error)
	Insert(ctx context.Context, article *Article) error
	GetLatest(ctx context.Context, limit int) ([]Article, error)
	Count(ctx context.Context) (int, error)
}

type DealRepository interface {
	FindBySlug(ctx context.Context, slug string) (*Deal, error)
	Insert(ctx context.Context, deal *Deal) error
	GetActive(ctx context.Context, limit int) ([]Deal, error)
	Count(ctx context.Context) (int, error)
}
