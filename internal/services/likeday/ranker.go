package likeday

import (
	"sort"
	"time"

	"GridPull/internal/domain/models"
)

// MaxNeighbors bounds the requested neighbor count.
const MaxNeighbors = 20

// DefaultNeighbors is used when the caller does not pick a count.
const DefaultNeighbors = 5

// Rank sorts candidates ascending by distance, ties broken by ascending
// date so that output is deterministic even when floating-point distances
// collide, and keeps the first n.
func Rank(dates []time.Time, distances []float64, n int, metric models.Metric) []models.LikeDayResult {
	if n <= 0 {
		n = DefaultNeighbors
	}
	if n > MaxNeighbors {
		n = MaxNeighbors
	}

	results := make([]models.LikeDayResult, len(dates))
	for i, d := range dates {
		results[i] = models.LikeDayResult{Date: d, Distance: distances[i]}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Date.Before(results[j].Date)
	})

	if len(results) > n {
		results = results[:n]
	}
	for i := range results {
		results[i].Rank = i + 1
		results[i].Similarity = Similarity(results[i].Distance, metric)
	}
	return results
}

// Similarity maps a distance to a bounded score, monotonically decreasing in
// distance. Cosine distance is already on a bounded scale, so it maps as
// 1-d (clamped at 0, since anti-correlated z-scored vectors can push the
// distance past 1). Every other metric is unbounded and maps as 1/(1+d),
// which lands in (0,1].
func Similarity(d float64, metric models.Metric) float64 {
	if metric == models.MetricCosine {
		s := 1.0 - d
		if s < 0 {
			s = 0
		}
		return s
	}
	return 1.0 / (1.0 + d)
}
