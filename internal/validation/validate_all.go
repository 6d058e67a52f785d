package validation

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ValidateAll validates every path with at most jobs concurrent validator
// processes. Outcomes are returned in input order. The first failure cancels
// the remaining runs and is returned.
func ValidateAll(ctx context.Context, v Validator, paths []string, jobs int) ([]*Outcome, error) {
	if jobs < 1 {
		jobs = 1
	}

	outcomes := make([]*Outcome, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			outcome, err := v.Run(gctx, path)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
