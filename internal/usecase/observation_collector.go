package usecase

import (
	"context"

	"GridPull/internal/domain/models"
	drepo "GridPull/internal/domain/repository"
	mid "GridPull/internal/middleware"
)

// ObservationCollector drains the PJM feed and pushes rows through the
// ingest pipeline.
type ObservationCollector struct {
	feed    drepo.ObservationFeed
	proc    *ObservationProcessor
	metrics drepo.Metrics
	pipe    *mid.IngestPipeline
}

// NewObservationCollector creates a new ObservationCollector instance.
func NewObservationCollector(feed drepo.ObservationFeed, proc *ObservationProcessor, metrics drepo.Metrics, pipe *mid.IngestPipeline) *ObservationCollector {
	return &ObservationCollector{feed: feed, proc: proc, metrics: metrics, pipe: pipe}
}

func (c *ObservationCollector) Start(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	obsCh, errCh := c.feed.Read(ctx)
	go c.consume(ctx, obsCh, errCh)
	return nil
}

func (c *ObservationCollector) consume(ctx context.Context, obsCh <-chan *models.PriceObservation, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				// The poller keeps its own schedule; a failed poll is
				// retried on the next tick.
				c.metrics.RecordError("feed")
			}
		case o := <-obsCh:
			if o == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, o)
			} else {
				_ = c.proc.Process(ctx, o)
			}
		}
	}
}

// Feed returns the underlying observation feed (backfill reuses it for
// explicit range fetches).
func (c *ObservationCollector) Feed() drepo.ObservationFeed { return c.feed }

// Processor returns the underlying ObservationProcessor for lifecycle management.
func (c *ObservationCollector) Processor() *ObservationProcessor { return c.proc }

// Shutdown stops the pipeline and closes the feed.
func (c *ObservationCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.feed.Close()
}
