package loop

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// DefaultWorkers is used when NewPool is given a non-positive size.
const DefaultWorkers = 4

// Pool runs submitted jobs with bounded parallelism.
type Pool struct {
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    zerolog.Logger
}

// NewPool returns a pool running at most n jobs at once.
func NewPool(n int, log zerolog.Logger) *Pool {
	if n <= 0 {
		n = DefaultWorkers
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:    semaphore.NewWeighted(int64(n)),
		ctx:    ctx,
		cancel: cancel,
		log:    log.With().Str("component", "pool").Logger(),
	}
}

// Submit schedules job and returns immediately. The job's context is
// canceled when the pool is closed; jobs still waiting for a slot at that
// point are dropped.
func (p *Pool) Submit(job func(ctx context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		if p.ctx.Err() != nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				p.log.Error().Str("panic", fmt.Sprint(r)).Msg("recovered panic in worker")
			}
		}()
		job(p.ctx)
	}()
}

// Wait blocks until every submitted job has returned or been dropped.
func (p *Pool) Wait() { p.wg.Wait() }

// Close cancels running jobs and waits for them.
func (p *Pool) Close() {
	p.cancel()
	p.wg.Wait()
}
