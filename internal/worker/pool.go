package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type indexedJob struct {
	index int
	job   Job
}

type indexedResult struct {
	index  int
	result Result
}

// Pool runs jobs on a fixed number of workers and returns results in
// submission order, whatever order they complete in.
type Pool struct {
	workers    int
	jobQueue   chan indexedJob
	results    chan indexedResult
	wg         sync.WaitGroup
	collected  chan []Result
	submitted  int
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// NewPool creates a pool whose jobs see a context derived from parent
func NewPool(parent context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan indexedJob, workers*2),
		results:    make(chan indexedResult, workers*2),
		collected:  make(chan []Result, 1),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the workers and the result collector
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case ij, ok := <-p.jobQueue:
			if !ok {
				return
			}
			if p.ctx.Err() != nil {
				return
			}
			p.results <- indexedResult{index: ij.index, result: ij.job.Execute(p.ctx)}
		}
	}
}

// collect drains results as they arrive so workers never block on a full
// results channel while jobs are still being submitted
func (p *Pool) collect() {
	var received []indexedResult
	for r := range p.results {
		received = append(received, r)
	}

	maxIndex := -1
	for _, r := range received {
		if r.index > maxIndex {
			maxIndex = r.index
		}
	}
	ordered := make([]Result, maxIndex+1)
	for _, r := range received {
		ordered[r.index] = r.result
	}
	p.collected <- ordered
}

// Submit queues a job. It returns false if the pool was cancelled first.
// Submit must not be called concurrently or after Wait.
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- indexedJob{index: p.submitted, job: job}:
		p.submitted++
		return true
	}
}

// Wait waits for submitted jobs and returns one slot per submitted job, in
// submission order. Slots for jobs skipped after cancellation are nil.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.results)

	ordered := <-p.collected
	p.cancelFunc()

	if len(ordered) < p.submitted {
		padded := make([]Result, p.submitted)
		copy(padded, ordered)
		ordered = padded
	}
	return ordered
}
