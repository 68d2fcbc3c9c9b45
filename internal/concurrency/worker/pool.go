package worker

import (
	"context"
	"log/slog"
	"sync"
)

// Pool runs a fixed number of workers over a job channel. The number of
// workers is the ceiling on jobs in flight at any moment.
type Pool[J, R any] struct {
	workers int
	handle  func(ctx context.Context, job J) R
	logger  *slog.Logger
}

// NewPool creates a pool; non-positive worker counts become 1.
func NewPool[J, R any](workers int, handle func(ctx context.Context, job J) R, logger *slog.Logger) *Pool[J, R] {
	if workers <= 0 {
		workers = 1
	}
	return &Pool[J, R]{
		workers: workers,
		handle:  handle,
		logger:  logger,
	}
}

func (p *Pool[J, R]) Workers() int { return p.workers }

// Start reads jobs from in and returns a channel of results in completion
// order. The result channel closes once every worker has returned, either
// because in was drained or ctx was cancelled.
func (p *Pool[J, R]) Start(ctx context.Context, in <-chan J) <-chan R {
	out := make(chan R)
	var wg sync.WaitGroup

	// Internal lane so workers stop reading as soon as ctx ends, even if
	// the producer keeps in open.
	workCh := make(chan J)

	go func() {
		defer close(workCh)
		for v := range in {
			select {
			case <-ctx.Done():
				return
			case workCh <- v:
			}
		}
	}()

	wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func(id int) {
			defer wg.Done()
			p.workerLoop(ctx, id, workCh, out)
		}(i)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (p *Pool[J, R]) workerLoop(ctx context.Context, id int, in <-chan J, out chan<- R) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-in:
			if !ok {
				return
			}
			res := p.handle(ctx, job)
			p.logger.Debug("worker: job done", "worker", id)

			select {
			case <-ctx.Done():
				return
			case out <- res:
			}
		}
	}
}

// Run feeds jobs into a started pool and collects every result.
// It returns early with ctx.Err() when ctx ends first.
func (p *Pool[J, R]) Run(ctx context.Context, jobs []J) ([]R, error) {
	in := make(chan J)
	go func() {
		defer close(in)
		for _, j := range jobs {
			select {
			case <-ctx.Done():
				return
			case in <- j:
			}
		}
	}()

	results := make([]R, 0, len(jobs))
	for r := range p.Start(ctx, in) {
		results = append(results, r)
	}
	if err := ctx.Err(); err != nil && len(results) < len(jobs) {
		return results, err
	}
	return results, nil
}
