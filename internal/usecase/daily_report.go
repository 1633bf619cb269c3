package usecase

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"GridPull/internal/domain/models"
	"GridPull/internal/service/slack"
	"GridPull/internal/services/likeday"
	applogger "GridPull/pkg/logger"
	"GridPull/pkg/util"
)

// DailyReport runs the like-day query for tomorrow on a cron schedule and
// posts the result to Slack.
type DailyReport struct {
	uc       *LikeDayUseCase
	notifier *slack.Client
	hub      string
	metric   models.Metric
	schedule string
	cron     *cron.Cron
	l        *applogger.Logger
}

func NewDailyReport(uc *LikeDayUseCase, notifier *slack.Client, hub string, metric models.Metric, schedule string, l *applogger.Logger) *DailyReport {
	if metric == "" {
		metric = models.DefaultMetric()
	}
	return &DailyReport{
		uc:       uc,
		notifier: notifier,
		hub:      hub,
		metric:   metric,
		schedule: schedule,
		l:        l,
	}
}

// Start schedules the report. Invalid cron specs fail here, not at fire time.
func (r *DailyReport) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(r.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		r.Run(ctx)
	}); err != nil {
		return err
	}
	c.Start()
	r.cron = c
	if r.l != nil {
		r.l.Info("daily report scheduled", applogger.String("schedule", r.schedule))
	}
	return nil
}

// Run executes one report cycle for tomorrow.
func (r *DailyReport) Run(ctx context.Context) {
	target := util.Tomorrow()

	report, err := r.uc.FindLikeDays(ctx, FindLikeDaysParams{
		TargetDate: target,
		Hub:        r.hub,
		Spec: models.FeatureSpec{
			Features: []models.FeatureWeight{
				{Market: models.MarketDayAhead, Component: models.ComponentTotal, Weight: 1.0},
			},
		},
		NNeighbors: likeday.DefaultNeighbors,
		Metric:     r.metric,
	})
	if err != nil {
		if r.l != nil {
			r.l.Error("daily report failed", applogger.Error(err))
		}
		// DA prices for tomorrow post in the afternoon; before that the
		// target has no rows yet and the failure message says so.
		_ = r.notifier.SendFailure(ctx, "daily_like_day_report", err)
		return
	}

	if err := r.notifier.SendLikeDayReport(ctx, report); err != nil {
		if r.l != nil {
			r.l.Error("daily report notify failed", applogger.Error(err))
		}
		return
	}
	if r.l != nil {
		r.l.Info("daily report sent",
			applogger.String("target", report.TargetDate.Format("2006-01-02")),
			applogger.Int("like_days", len(report.LikeDays)),
		)
	}
}

// Stop halts the schedule and waits for a running job to finish.
func (r *DailyReport) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}
