package worker

import (
	"context"
	"fmt"

	"github.com/ppiankov/truthquest/internal/model"
)

// Verifier resolves one fact to a verdict and never fails
type Verifier interface {
	Verify(ctx context.Context, fact model.CandidateFact) model.Verdict
}

// VerifierFunc adapts a function to Verifier
type VerifierFunc func(ctx context.Context, fact model.CandidateFact) model.Verdict

// Verify implements Verifier
func (f VerifierFunc) Verify(ctx context.Context, fact model.CandidateFact) model.Verdict {
	return f(ctx, fact)
}

// Orchestrator verifies many facts concurrently with bounded parallelism
type Orchestrator struct {
	verifier    Verifier
	concurrency int
}

// NewOrchestrator creates an orchestrator; concurrency <= 0 means 1
func NewOrchestrator(verifier Verifier, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Orchestrator{verifier: verifier, concurrency: concurrency}
}

type verifyJob struct {
	fact     model.CandidateFact
	verifier Verifier
}

// Execute verifies one fact. A panicking verifier yields an error verdict
// for that fact alone.
func (j *verifyJob) Execute(ctx context.Context) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = &verifyResult{fact: model.VerifiedFact{
				CandidateFact: j.fact,
				Verification:  model.ErrorVerdict(model.FailureClass(fmt.Errorf("panic: %v", r))),
			}}
		}
	}()

	return &verifyResult{fact: model.VerifiedFact{
		CandidateFact: j.fact,
		Verification:  j.verifier.Verify(ctx, j.fact),
	}}
}

type verifyResult struct {
	fact model.VerifiedFact
}

func (r *verifyResult) GetError() error { return nil }

// RunAll verifies every fact and returns them in input order. A failed,
// panicking or missing verification is an error verdict, not an error. If ctx ends before every
// fact resolves, all results are discarded and ctx.Err() is returned.
func (o *Orchestrator) RunAll(ctx context.Context, facts []model.CandidateFact) ([]model.VerifiedFact, error) {
	if len(facts) == 0 {
		return []model.VerifiedFact{}, ctx.Err()
	}

	workers := o.concurrency
	if workers > len(facts) {
		workers = len(facts)
	}

	pool := NewPool(ctx, workers)
	pool.Start()

	for _, fact := range facts {
		if !pool.Submit(&verifyJob{fact: fact, verifier: o.verifier}) {
			break
		}
	}

	results := pool.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	verified := make([]model.VerifiedFact, len(facts))
	for i, fact := range facts {
		if i < len(results) {
			if r, ok := results[i].(*verifyResult); ok {
				verified[i] = r.fact
				continue
			}
		}
		verified[i] = model.VerifiedFact{
			CandidateFact: fact,
			Verification:  model.ErrorVerdict(model.FailureClass(fmt.Errorf("fact %d was not verified", i))),
		}
	}

	return verified, nil
}
