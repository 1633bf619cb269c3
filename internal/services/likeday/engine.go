package likeday

import (
	"fmt"
	"time"

	"GridPull/internal/domain/models"
	applogger "GridPull/pkg/logger"
)

// Engine runs the like-day pipeline over a pre-fetched observation set:
// extract per-day feature vectors, z-score them against the candidate
// population, weight, measure distance, rank. Pure computation; the store
// fetches live in the use case layer.
type Engine struct {
	l *applogger.Logger
}

func NewEngine() *Engine { return &Engine{} }

// SetLogger injects a structured logger.
func (e *Engine) SetLogger(l *applogger.Logger) { e.l = l }

// Query carries the per-request ranking parameters.
type Query struct {
	TargetDate time.Time
	Spec       models.FeatureSpec
	HistStart  time.Time // zero = open
	HistEnd    time.Time // zero = open
	NNeighbors int
	Metric     models.Metric
}

// FindLikeDays returns the ranked like days for the query, plus the size of
// the candidate population that survived filtering. An empty population is a
// valid outcome and yields an empty list, not an error.
func (e *Engine) FindLikeDays(obs []models.PriceObservation, q Query) ([]models.LikeDayResult, int, error) {
	if err := q.Spec.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	ex, err := ExtractFeatures(obs, q.TargetDate, q.Spec, q.HistStart, q.HistEnd)
	if err != nil {
		return nil, 0, err
	}

	if len(ex.Dates) == 0 {
		if e.l != nil {
			e.l.Warn("like-day candidate population empty",
				applogger.String("target", DateOf(q.TargetDate).Format("2006-01-02")),
			)
		}
		return []models.LikeDayResult{}, 0, nil
	}

	m := BuildMatrix(ex, q.Spec)
	m.Normalize()
	m.ApplyWeights(q.Spec.Weights())

	dists := Distances(m, q.Metric)
	results := Rank(m.Dates, dists, q.NNeighbors, q.Metric)

	if e.l != nil {
		e.l.Debug("like-day ranking complete",
			applogger.String("metric", string(q.Metric)),
			applogger.Int("candidates", len(ex.Dates)),
			applogger.Int("results", len(results)),
		)
	}
	return results, len(ex.Dates), nil
}
