package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"GridPull/internal/domain/models"
	"GridPull/internal/domain/repository"
	pkgkafka "GridPull/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) Store(ctx context.Context, o *models.PriceObservation) error {
	q := fmt.Sprintf("INSERT INTO %s (hub, market, component, date, hour_ending, value) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		o.Hub,
		string(o.Market),
		string(o.Component),
		o.Date,
		o.HourEnding,
		o.Value,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, obs []*models.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}
	// Multi-row VALUES insert, chunked to keep statements bounded.
	const chunkSize = 2000
	for start := 0; start < len(obs); start += chunkSize {
		end := start + chunkSize
		if end > len(obs) {
			end = len(obs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, o := range obs[start:end] {
			if o == nil || o.Hub == "" || o.HourEnding < 1 || o.HourEnding > 24 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args,
				o.Hub,
				string(o.Market),
				string(o.Component),
				o.Date,
				o.HourEnding,
				o.Value,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (hub, market, component, date, hour_ending, value) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func observationPayload(o *models.PriceObservation) map[string]interface{} {
	return map[string]interface{}{
		"hub":         o.Hub,
		"market":      string(o.Market),
		"component":   string(o.Component),
		"date":        o.Date.Format("2006-01-02"),
		"hour_ending": o.HourEnding,
		"value":       o.Value,
	}
}

// observationKey keeps per-(hub,market) ordering under the hash balancer.
func observationKey(o *models.PriceObservation) []byte {
	return []byte(o.Hub + "|" + string(o.Market))
}

func (p *KafkaPublisher) Publish(ctx context.Context, o *models.PriceObservation) error {
	return p.producer.Publish(ctx, p.topic, observationKey(o), observationPayload(o))
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, obs []*models.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(obs))
	for i, o := range obs {
		msgs[i] = pkgkafka.Message{
			Key:   observationKey(o),
			Value: observationPayload(o),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
