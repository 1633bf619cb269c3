package di

import (
	"context"
	"fmt"
	"time"

	"GridPull/internal/domain/models"
	"GridPull/internal/domain/repository"
	mid "GridPull/internal/middleware"
	internalrepo "GridPull/internal/repository"
	"GridPull/internal/service/pjm"
	"GridPull/internal/usecase"
	pkgch "GridPull/pkg/clickhouse"
	"GridPull/pkg/config"
	pkgkafka "GridPull/pkg/kafka"
	"GridPull/pkg/metrics"
	"GridPull/pkg/server"
)

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS gridpull",
		"CREATE TABLE IF NOT EXISTS " + internalrepo.LMPTable + " (" +
			"hub String, market LowCardinality(String), component LowCardinality(String), " +
			"date Date, hour_ending UInt8, value Float64" +
			") ENGINE=ReplacingMergeTree ORDER BY (hub, market, component, date, hour_ending)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideLMPStorage creates the ClickHouse storage repository.
func ProvideLMPStorage(chClient *pkgch.Client) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), internalrepo.LMPTable)
}

// ProvideLMPPublisher creates the Kafka publisher repository.
func ProvideLMPPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaLMPHandler registers the handler for the observation topic.
func ProvideKafkaLMPHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaLMPHandler {
	return usecase.NewKafkaLMPHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvidePJMFeed creates the PJM Data Miner polling feed.
func ProvidePJMFeed(cfg *config.Config) repository.ObservationFeed {
	markets := make([]models.Market, 0, len(cfg.PJM.Markets))
	for _, m := range cfg.PJM.Markets {
		markets = append(markets, models.Market(m))
	}
	return pjm.New(
		cfg.PJM.APIKey,
		cfg.PJM.BaseURL,
		cfg.PJM.Hub,
		markets,
		cfg.PJM.PollInterval,
	)
}

// ProvideObservationProcessor creates the observation processor use case.
func ProvideObservationProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.ObservationProcessor {
	return usecase.NewObservationProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideObservationCollector creates the observation collector use case.
func ProvideObservationCollector(
	feed repository.ObservationFeed,
	processor *usecase.ObservationProcessor,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.ObservationCollector {
	// Pipeline between the PJM poller and the backend
	pipe := mid.NewIngestPipeline(processor, metrics,
		mid.WithRate(cfg.PJM.RequestRate, 200),
		mid.WithBufferSize(2000),
	)
	return usecase.NewObservationCollector(feed, processor, metrics, pipe)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.ObservationCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaLMPHandler,
	chClient *pkgch.Client,
	metrics repository.Metrics,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, consumer, kh, chClient, metrics)
	// attach the processor so shutdown can close publisher and storage
	if collector != nil {
		app.ObsProc = collector.Processor()
	}
	return app
}
