package batch

import (
	"context"
	"runtime"
	"sync"

	"github.com/good-yellow-bee/grantdoc/internal/models"
)

// Job is one submission to render. Index is its position in the input and
// places the outcome in the report.
type Job struct {
	Index      int
	Submission *models.Submission
}

// Outcome is what rendering a job produced. Exactly one of Result and Err is
// set.
type Outcome struct {
	Job    Job
	Result *ItemResult
	Err    error
}

// RenderFunc renders one job.
type RenderFunc func(context.Context, Job) (*ItemResult, error)

// pool feeds submissions to a fixed number of renderers and collects their
// outcomes on one channel.
type pool struct {
	workers  int
	queue    chan Job
	outcomes chan Outcome
	wg       sync.WaitGroup
}

// newPool sizes a pool. workers <= 0 means one per CPU; queueSize <= 0 means
// twice the worker count.
func newPool(workers, queueSize int) *pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = workers * 2
	}
	return &pool{
		workers:  workers,
		queue:    make(chan Job, queueSize),
		outcomes: make(chan Outcome, queueSize),
	}
}

// run renders subs and returns the outcome channel. The channel is closed
// once every queued job has been rendered. Jobs not yet started when ctx is
// canceled produce no outcome.
func (p *pool) run(ctx context.Context, subs []*models.Submission, render RenderFunc) <-chan Outcome {
	for w := 0; w < p.workers; w++ {
		p.wg.Add(1)
		go p.work(ctx, render)
	}

	go func() {
		defer close(p.queue)
		for i, s := range subs {
			select {
			case p.queue <- Job{Index: i, Submission: s}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		p.wg.Wait()
		close(p.outcomes)
	}()
	return p.outcomes
}

func (p *pool) work(ctx context.Context, render RenderFunc) {
	defer p.wg.Done()
	for job := range p.queue {
		if ctx.Err() != nil {
			continue
		}
		res, err := render(ctx, job)
		p.outcomes <- Outcome{Job: job, Result: res, Err: err}
	}
}
