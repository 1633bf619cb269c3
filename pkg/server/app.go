package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"GridPull/internal/domain/models"
	domrepo "GridPull/internal/domain/repository"
	"GridPull/internal/handler/api"
	internalrepo "GridPull/internal/repository"
	"GridPull/internal/service/slack"
	"GridPull/internal/services/likeday"
	"GridPull/internal/usecase"
	"GridPull/pkg/cache"
	pkgch "GridPull/pkg/clickhouse"
	"GridPull/pkg/config"
	xhttp "GridPull/pkg/http"
	pkgkafka "GridPull/pkg/kafka"
	applogger "GridPull/pkg/logger"
	"GridPull/pkg/queue"

	"github.com/labstack/echo/v4"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	collector   *usecase.ObservationCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	metrics     domrepo.Metrics
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	backfillQ   *queue.RedisQueue
	report      *usecase.DailyReport
	ObsProc     *usecase.ObservationProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.ObservationCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	metrics domrepo.Metrics,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		metrics:   metrics,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// init app logger (console info by default)
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})

	notifier := slack.New(a.cfg.Report.SlackWebhookURL)
	if notifier.Enabled() {
		// Aggregate error logs and ship summaries to Slack.
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   5 * time.Minute,
			CountThreshold: 100,
			Subject:        "GridPull error summary",
			Notifier:       notifier,
		})
	}

	// Price store with an optional Redis-backed read-through cache.
	var store domrepo.PriceStore
	chStore := internalrepo.NewCHPriceStore(a.chClient)
	chStore.SetLogger(l)
	store = chStore

	var redisCache *cache.RedisCache
	if a.cfg.LikeDay.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(a.cfg.LikeDay.Redis.Host),
			cache.WithRedisPort(a.cfg.LikeDay.Redis.Port),
			cache.WithRedisPassword(a.cfg.LikeDay.Redis.Password),
			cache.WithRedisDB(a.cfg.LikeDay.Redis.DB),
		)
		if err != nil {
			l.Warn("redis cache unavailable, serving uncached", applogger.Error(err))
		} else {
			redisCache = rc
			layered := cache.NewLayeredCache(rc)
			cached := internalrepo.NewCachedPriceStore(chStore, layered, a.cfg.LikeDay.CacheTTL)
			cached.SetLogger(l)
			store = cached
		}
	}

	engine := likeday.NewEngine()
	engine.SetLogger(l)
	likeDayUC := usecase.NewLikeDayUseCase(store, engine, a.metrics)
	likeDayUC.SetLogger(l)

	// Backfill queue: HTTP enqueues, the worker fetches from PJM and lands
	// rows in ClickHouse directly.
	var backfillUC *usecase.BackfillUseCase
	if redisCache != nil {
		storage := internalrepo.NewClickHouseStorage(a.chClient.DB(), internalrepo.LMPTable)
		job := usecase.NewBackfillJob(a.collector.Feed(), storage, a.metrics, l)
		a.backfillQ = queue.NewRedisQueue(l, &queue.QueueConfig{
			Workers:    2,
			RetryLimit: 3,
			RetryDelay: 30 * time.Second,
		}, redisCache.Client(), queue.ModeProducerConsumer)
		a.backfillQ.RegisterJob(job)
		if err := a.backfillQ.Start(); err != nil {
			l.Error("backfill queue start error", applogger.Error(err))
		}
		backfillUC = usecase.NewBackfillUseCase(a.backfillQ)
	}

	// HTTP surface
	if a.httpHandler == nil {
		h := api.NewLikeDayEchoHandler(l, likeDayUC, backfillUC)
		h.SetHealthCheck(func(c echo.Context) error {
			if err := store.Health(c.Request().Context()); err != nil {
				return c.JSON(503, map[string]string{"status": "degraded", "error": err.Error()})
			}
			return c.JSON(200, map[string]string{"status": "ok"})
		})
		a.httpHandler = h
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start PJM collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("pjm collector started",
		applogger.String("hub", a.cfg.PJM.Hub),
		applogger.Strings("markets", a.cfg.PJM.Markets),
	)

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Schedule the daily report
	if a.cfg.Report.Enabled {
		a.report = usecase.NewDailyReport(
			likeDayUC,
			notifier,
			a.cfg.PJM.Hub,
			models.NormalizeMetric(a.cfg.LikeDay.DefaultMetric),
			a.cfg.Report.Schedule,
			l,
		)
		if err := a.report.Start(); err != nil {
			l.Error("daily report schedule error", applogger.Error(err))
		}
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	l.Info("shutting down...")

	if a.report != nil {
		a.report.Stop()
	}

	// Stop collector (pipeline + feed)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.backfillQ != nil {
		if err := a.backfillQ.Stop(shutdownCtx); err != nil {
			l.Warn("backfill queue stop error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close processor resources (publisher/storage)
	if a.ObsProc != nil {
		a.ObsProc.Close()
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
