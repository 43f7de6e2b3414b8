package tasks

import (
	"context"
	"log/slog"
)

type ScrapeArticlesTask struct {
	Task
	pipeline *Pipeline
	Result   Result
}

func NewScrapeArticlesTask(pipeline *Pipeline) *ScrapeArticlesTask {
	return &ScrapeArticlesTask{
		Task:     NewTask(TaskTypeScrapeArticles),
		pipeline: pipeline,
	}
}

func (t *ScrapeArticlesTask) Execute(ctx context.Context) error {
	slog.Debug("Starting article scrape task", "id", t.ID)

	result, err := t.pipeline.ScrapeArticles(ctx)
	t.Result = result
	if err != nil {
		return err
	}

	slog.Debug("Article scrape task completed", "id", t.ID, "duration", t.GetDuration().String())
	return nil
}
