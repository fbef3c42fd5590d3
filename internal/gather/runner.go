package gather

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// RunAll runs the limit-up gatherer first (the sentiment job counts its
// rows), then the remaining gatherers concurrently. The first error cancels
// the rest.
func RunAll(ctx context.Context, log *slog.Logger, limitup Gatherer, rest ...Gatherer) error {
	if limitup != nil {
		log.Info("running gatherer", "name", limitup.Name())
		if err := limitup.Run(ctx); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range rest {
		job := job
		g.Go(func() error {
			log.Info("running gatherer", "name", job.Name())
			return job.Run(gctx)
		})
	}
	return g.Wait()
}
