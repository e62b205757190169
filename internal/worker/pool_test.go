package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	id  int
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	id        int
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{id: j.id, err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{id: j.id, err: errors.New("job error")}
	}
	return &mockResult{id: j.id}
}

func TestNewPool(t *testing.T) {
	ctx := context.Background()

	if p := NewPool(ctx, 5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool(ctx, 0); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool(ctx, -1); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	count := 10

	for i := 0; i < count; i++ {
		pool.Submit(&mockJob{id: i, executed: &executed})
	}

	results := pool.Wait()

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

func TestPool_ResultsInSubmissionOrder(t *testing.T) {
	pool := NewPool(context.Background(), 4)
	pool.Start()

	// Earlier jobs take longer, so completion order is reversed
	count := 8
	for i := 0; i < count; i++ {
		pool.Submit(&mockJob{id: i, duration: time.Duration(count-i) * 5 * time.Millisecond})
	}

	results := pool.Wait()
	for i, r := range results {
		if got := r.(*mockResult).id; got != i {
			t.Errorf("slot %d holds result of job %d", i, got)
		}
	}
}

func TestPool_ManyJobsDoNotDeadlock(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	pool.Start()

	// Far more jobs than the queue and result buffers hold
	count := 100
	for i := 0; i < count; i++ {
		pool.Submit(&mockJob{id: i})
	}

	done := make(chan []Result)
	go func() { done <- pool.Wait() }()

	select {
	case results := <-done:
		if len(results) != count {
			t.Errorf("expected %d results, got %d", count, len(results))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pool deadlocked")
	}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 3
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var running, peak int32
	job := jobFunc(func(ctx context.Context) Result {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return &mockResult{}
	})

	for i := 0; i < 12; i++ {
		pool.Submit(job)
	}
	pool.Wait()

	if got := atomic.LoadInt32(&peak); got > int32(workers) {
		t.Errorf("expected at most %d concurrent jobs, saw %d", workers, got)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(&mockJob{id: 0})
	pool.Submit(&mockJob{id: 1, shouldErr: true})
	pool.Submit(&mockJob{id: 2})

	results := pool.Wait()

	if results[1].GetError() == nil {
		t.Error("expected job 1 to fail")
	}
	if results[0].GetError() != nil || results[2].GetError() != nil {
		t.Error("expected jobs 0 and 2 to succeed")
	}
}

func TestPool_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()

	for i := 0; i < 3; i++ {
		pool.Submit(&mockJob{id: i, duration: time.Second})
	}

	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	results := pool.Wait()
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("expected cancellation to stop the pool promptly")
	}
	if len(results) != 3 {
		t.Errorf("expected one slot per submitted job, got %d", len(results))
	}
}

func TestPool_SubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()
	cancel()

	if pool.Submit(&mockJob{}) {
		t.Error("expected Submit to report a cancelled pool")
	}
	if results := pool.Wait(); len(results) != 0 {
		t.Errorf("expected no result slots, got %d", len(results))
	}
}

type jobFunc func(ctx context.Context) Result

func (f jobFunc) Execute(ctx context.Context) Result { return f(ctx) }
