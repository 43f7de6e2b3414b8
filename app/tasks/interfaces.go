package tasks

import (
	"context"

	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/feed"
)

// TaskSchedulerInterface defines the interface for background task scheduling.
//
//	scheduler := NewScheduler(pipeline, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

type SourceCatalog interface {
	GetEnabledConfigs() []*feed.Config
}

type ArticleScraper interface {
	Run(ctx context.Context, sources []*feed.Config) []feed.Article
}

// SlugCache mirrors the slugs held by the repositories. The repositories'
// FindBySlug decides; implementations must treat their own failures as misses.
type SlugCache interface {
	Seen(ctx context.Context, kind, slug string) bool
	Remember(ctx context.Context, kind, slug string)
	Forget(ctx context.Context, kind, slug string)
}
