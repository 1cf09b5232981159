package transform

import (
	"context"
	"sync"

	"github.com/tabshift/tabshift/pkg/types"
)

// DefaultBatchConcurrency bounds parallel request execution when the
// caller does not configure a limit.
const DefaultBatchConcurrency = 8

// ItemResult is the outcome of one batch item. Exactly one of Result and
// Err is set.
type ItemResult struct {
	Index  int
	Result *types.TransformationResult
	Err    error
}

// Runner applies the dispatcher to a list of independent requests.
// Items have no data dependencies, so they run in parallel up to the
// configured concurrency; the result slice preserves input order and one
// item's failure never prevents the others from being attempted.
type Runner struct {
	concurrency int
}

// NewRunner creates a batch runner. A non-positive concurrency falls
// back to DefaultBatchConcurrency.
func NewRunner(concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	return &Runner{concurrency: concurrency}
}

// ExecuteBatch runs every request through Execute. Cancelling ctx marks
// not-yet-started items with ctx.Err(); an in-flight transformation is
// pure computation and simply finishes.
func (r *Runner) ExecuteBatch(ctx context.Context, reqs []types.TransformationRequest) []ItemResult {
	results := make([]ItemResult, len(reqs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.concurrency)

	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = ItemResult{Index: i, Err: ctx.Err()}
				return
			}

			res, err := Execute(reqs[i])
			results[i] = ItemResult{Index: i, Result: res, Err: err}
		}(i)
	}

	wg.Wait()
	return results
}
