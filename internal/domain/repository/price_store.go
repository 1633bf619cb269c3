package repository

import (
	"context"
	"time"

	"GridPull/internal/domain/models"
)

// PriceStore provides read-only access to hourly LMP observations for the
// like-day engine. Two distinct fetches: HourlyLMPs feeds feature extraction
// (one market at a time over a date window), Profiles feeds charting (every
// market and component for an explicit date set).
type PriceStore interface {
	// HourlyLMPs returns all component rows for a hub and market with
	// from <= date <= to. A zero from/to leaves that bound open.
	HourlyLMPs(ctx context.Context, hub string, market models.Market, from, to time.Time) ([]models.PriceObservation, error)

	// Profiles returns every observation for exactly the given dates,
	// across all markets and components at the hub.
	Profiles(ctx context.Context, hub string, dates []time.Time) ([]models.PriceObservation, error)

	Health(ctx context.Context) error
}
