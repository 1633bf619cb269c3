package likeday

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"GridPull/internal/domain/models"
)

// Distances computes one non-negative distance per candidate row against the
// target row. Rows and target are expected to be normalized and weighted.
func Distances(m *Matrix, metric models.Metric) []float64 {
	out := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = distance(m.Target, row, metric)
	}
	return out
}

func distance(target, row []float64, metric models.Metric) float64 {
	switch metric {
	case models.MetricEuclidean:
		return math.Sqrt(sumSquaredDiff(target, row))
	case models.MetricRMSE:
		if len(target) == 0 {
			return 0
		}
		return math.Sqrt(sumSquaredDiff(target, row) / float64(len(target)))
	case models.MetricCosine:
		return cosineDistance(target, row)
	default: // manhattan_mae: mean of absolute differences
		if len(target) == 0 {
			return 0
		}
		sum := 0.0
		for i := range target {
			sum += math.Abs(target[i] - row[i])
		}
		return sum / float64(len(target))
	}
}

func sumSquaredDiff(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// cosineDistance is 1 - cosine similarity, so 0 = identical direction and
// larger = more dissimilar, consistent with the other metrics. A zero vector
// on either side leaves the angle undefined; that degenerates to the maximal
// distance 1.0 rather than an error.
func cosineDistance(a, b []float64) float64 {
	denom := math.Sqrt(floats.Dot(a, a)) * math.Sqrt(floats.Dot(b, b))
	if denom == 0 {
		return 1.0
	}
	return 1.0 - floats.Dot(a, b)/denom
}
