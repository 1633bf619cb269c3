package likeday

import (
	"math"
	"testing"

	"GridPull/internal/domain/models"
)

func TestDistanceMetrics(t *testing.T) {
	tests := []struct {
		name   string
		metric models.Metric
		target []float64
		row    []float64
		want   float64
	}{
		{"euclidean 3-4-5", models.MetricEuclidean, []float64{0, 0}, []float64{3, 4}, 5},
		{"rmse averages", models.MetricRMSE, []float64{0, 0}, []float64{3, 4}, math.Sqrt(12.5)},
		{"mae is mean of abs diffs", models.MetricManhattanMAE, []float64{0, 0}, []float64{3, 4}, 3.5},
		{"euclidean identical", models.MetricEuclidean, []float64{1, 2}, []float64{1, 2}, 0},
		{"cosine orthogonal", models.MetricCosine, []float64{1, 0}, []float64{0, 1}, 1},
		{"cosine parallel", models.MetricCosine, []float64{1, 1}, []float64{2, 2}, 0},
		{"cosine opposite", models.MetricCosine, []float64{1, 0}, []float64{-1, 0}, 2},
		{"cosine zero target is maximal", models.MetricCosine, []float64{0, 0}, []float64{3, 4}, 1},
		{"cosine zero row is maximal", models.MetricCosine, []float64{3, 4}, []float64{0, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := distance(tt.target, tt.row, tt.metric)
			if !approx(got, tt.want) {
				t.Errorf("distance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistancesNonNegative(t *testing.T) {
	m := matrixFixture(t, []float64{1, 5, 9, 2}, 4)
	m.Normalize()
	for _, metric := range []models.Metric{
		models.MetricEuclidean, models.MetricManhattanMAE, models.MetricRMSE, models.MetricCosine,
	} {
		for i, d := range Distances(m, metric) {
			if d < 0 {
				t.Errorf("%s: distance[%d] = %v, want >= 0", metric, i, d)
			}
		}
	}
}

func TestEuclideanVsRMSEScaling(t *testing.T) {
	// Same diffs, different denominators: euclidean = rmse * sqrt(n).
	target := []float64{0, 0, 0, 0}
	row := []float64{1, 2, 3, 4}
	e := distance(target, row, models.MetricEuclidean)
	r := distance(target, row, models.MetricRMSE)
	if !approx(e, r*2) {
		t.Errorf("euclidean %v != rmse %v * sqrt(4)", e, r)
	}
}
