package usecase

import (
	"context"
	"fmt"
	"time"

	"GridPull/internal/domain/models"
	domrepo "GridPull/internal/domain/repository"
	applogger "GridPull/pkg/logger"
	"GridPull/pkg/queue"
	"GridPull/pkg/util"
)

const backfillMsgType = "lmp_backfill"

// BackfillPayload describes one historical fetch request.
type BackfillPayload struct {
	Hub    string `json:"hub"`
	Market string `json:"market"`
	Start  string `json:"start"` // YYYY-MM-DD inclusive
	End    string `json:"end"`   // YYYY-MM-DD inclusive
}

// BackfillUseCase enqueues historical fetch requests onto the Redis queue.
type BackfillUseCase struct {
	q queue.QueueService
}

func NewBackfillUseCase(q queue.QueueService) *BackfillUseCase {
	return &BackfillUseCase{q: q}
}

// Enqueue validates and queues a backfill request.
func (uc *BackfillUseCase) Enqueue(ctx context.Context, p BackfillPayload) error {
	if p.Hub == "" {
		return fmt.Errorf("hub required")
	}
	m := models.Market(p.Market)
	if !models.IsValidMarket(m) || m == models.MarketDART {
		return fmt.Errorf("market %q not backfillable", p.Market)
	}
	start, ok := util.ParseDate(p.Start)
	if !ok {
		return fmt.Errorf("start %q is not YYYY-MM-DD", p.Start)
	}
	end, ok := util.ParseDate(p.End)
	if !ok {
		return fmt.Errorf("end %q is not YYYY-MM-DD", p.End)
	}
	if start.After(end) {
		return fmt.Errorf("start must be <= end")
	}
	return uc.q.PublishMessage(ctx, backfillMsgType, p)
}

// BackfillJob is the queue worker: it pulls one date range from PJM and
// lands it in storage.
type BackfillJob struct {
	feed    domrepo.ObservationFeed
	storage domrepo.Storage
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewBackfillJob(feed domrepo.ObservationFeed, storage domrepo.Storage, metrics domrepo.Metrics, l *applogger.Logger) *BackfillJob {
	return &BackfillJob{feed: feed, storage: storage, metrics: metrics, l: l}
}

func (j *BackfillJob) Name() string { return "lmp_backfill_job" }
func (j *BackfillJob) Type() string { return backfillMsgType }

func (j *BackfillJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[BackfillPayload](payload)
	if err != nil {
		return fmt.Errorf("backfill payload: %w", err)
	}

	start := time.Now()
	rows, err := j.feed.FetchRange(ctx, p.Hub, models.Market(p.Market), p.Start, p.End)
	if err != nil {
		j.metrics.RecordError("backfill_fetch")
		return fmt.Errorf("backfill fetch %s %s..%s: %w", p.Market, p.Start, p.End, err)
	}
	if err := j.storage.StoreBatch(ctx, rows); err != nil {
		j.metrics.RecordError("backfill_store")
		return fmt.Errorf("backfill store: %w", err)
	}

	j.metrics.RecordIngest("clickhouse", p.Market)
	j.metrics.RecordLatency("backfill", time.Since(start).Seconds())
	if j.l != nil {
		j.l.Info("backfill complete",
			applogger.String("hub", p.Hub),
			applogger.String("market", p.Market),
			applogger.String("start", p.Start),
			applogger.String("end", p.End),
			applogger.Int("rows", len(rows)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

var _ queue.Job = (*BackfillJob)(nil)
