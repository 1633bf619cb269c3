package usecase

import (
	"context"
	"fmt"
	"time"

	"GridPull/internal/domain/models"
	domrepo "GridPull/internal/domain/repository"
	"GridPull/internal/services/likeday"
	applogger "GridPull/pkg/logger"
)

// LikeDayUseCase answers like-day queries: fetch hourly history per market,
// run the ranking engine, then fetch full hourly profiles for charting.
type LikeDayUseCase struct {
	store   domrepo.PriceStore
	engine  *likeday.Engine
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewLikeDayUseCase(store domrepo.PriceStore, engine *likeday.Engine, metrics domrepo.Metrics) *LikeDayUseCase {
	return &LikeDayUseCase{store: store, engine: engine, metrics: metrics}
}

// SetLogger injects a structured logger.
func (uc *LikeDayUseCase) SetLogger(l *applogger.Logger) { uc.l = l }

// FindLikeDaysParams carries a validated like-day query.
type FindLikeDaysParams struct {
	TargetDate time.Time
	Hub        string
	Spec       models.FeatureSpec
	HistStart  time.Time // zero = open
	HistEnd    time.Time // zero = open
	NNeighbors int
	Metric     models.Metric
}

// FindLikeDays runs the full like-day pipeline and assembles the report.
// likeday.ErrNoDataForTarget and likeday.ErrInvalidSpec pass through for the
// handler to map; any other failure is a store problem.
func (uc *LikeDayUseCase) FindLikeDays(ctx context.Context, p FindLikeDaysParams) (*models.LikeDayReport, error) {
	start := time.Now()
	if p.Hub == "" {
		return nil, fmt.Errorf("%w: hub required", likeday.ErrInvalidSpec)
	}
	if err := p.Spec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", likeday.ErrInvalidSpec, err)
	}
	if p.Metric == "" {
		p.Metric = models.DefaultMetric()
	}
	if p.NNeighbors <= 0 {
		p.NNeighbors = likeday.DefaultNeighbors
	}

	target := likeday.DateOf(p.TargetDate)

	// One fetch per market the spec touches. The upper bound is the target
	// date itself; the history window trims candidates inside the engine.
	var obs []models.PriceObservation
	for _, market := range p.Spec.Markets() {
		rows, err := uc.store.HourlyLMPs(ctx, p.Hub, market, p.HistStart, target)
		if err != nil {
			return nil, fmt.Errorf("fetch %s history: %w", market, err)
		}
		obs = append(obs, rows...)
	}

	results, poolSize, err := uc.engine.FindLikeDays(obs, likeday.Query{
		TargetDate: target,
		Spec:       p.Spec,
		HistStart:  p.HistStart,
		HistEnd:    p.HistEnd,
		NNeighbors: p.NNeighbors,
		Metric:     p.Metric,
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.RecordCandidatePool(poolSize)
	uc.metrics.RecordLikeDayQuery(string(p.Metric))

	// Profiles cover the target plus every like day, all markets and
	// components, so charts are not limited to the ranking features.
	dates := make([]time.Time, 0, len(results)+1)
	dates = append(dates, target)
	for _, r := range results {
		dates = append(dates, r.Date)
	}
	profiles, err := uc.store.Profiles(ctx, p.Hub, dates)
	if err != nil {
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}

	uc.metrics.RecordLatency("like_day_query", time.Since(start).Seconds())
	if uc.l != nil {
		uc.l.Info("like-day query complete",
			applogger.String("hub", p.Hub),
			applogger.String("target", target.Format("2006-01-02")),
			applogger.String("metric", string(p.Metric)),
			applogger.Int("pool", poolSize),
			applogger.Int("like_days", len(results)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}

	return &models.LikeDayReport{
		TargetDate:     target,
		Hub:            p.Hub,
		Metric:         p.Metric,
		NNeighbors:     p.NNeighbors,
		LikeDays:       results,
		HourlyProfiles: profiles,
	}, nil
}
