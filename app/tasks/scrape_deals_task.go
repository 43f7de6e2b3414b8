package tasks

import (
	"context"
)

type ScrapeDealsTask struct {
	Task
	pipeline *Pipeline
	Result   Result
}

func NewScrapeDealsTask(pipeline *Pipeline) *ScrapeDealsTask {
	return &ScrapeDealsTask{
		Task:     NewTask(TaskTypeScrapeDeals),
		pipeline: pipeline,
	}
}

func (t *ScrapeDealsTask) Execute(ctx context.Context) error {
	result, err := t.pipeline.ScrapeDeals(ctx)
	t.Result = result
	return err
}
