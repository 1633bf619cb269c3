package repository

import (
	"context"

	"GridPull/internal/domain/models"
)

// ObservationFeed streams hourly LMP observations from the upstream market
// data source (PJM Data Miner polling).
type ObservationFeed interface {
	Read(ctx context.Context) (<-chan *models.PriceObservation, <-chan error)
	FetchRange(ctx context.Context, hub string, market models.Market, start, end string) ([]*models.PriceObservation, error)
	Close() error
}

// Publisher forwards observations to the message bus.
type Publisher interface {
	Publish(ctx context.Context, o *models.PriceObservation) error
	PublishBatch(ctx context.Context, obs []*models.PriceObservation) error
	Close() error
}

// Storage persists observations into the price store.
type Storage interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, o *models.PriceObservation) error
	StoreBatch(ctx context.Context, obs []*models.PriceObservation) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordIngest(backend string, market string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordCandidatePool(size int)
	RecordLikeDayQuery(metric string)
}
