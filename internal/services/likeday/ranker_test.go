package likeday

import (
	"testing"
	"time"

	"GridPull/internal/domain/models"
)

func TestRankOrderingAndTies(t *testing.T) {
	d1 := day(t, "2026-01-05")
	d2 := day(t, "2026-01-10")
	d3 := day(t, "2026-01-01")

	// d2 and d3 tie on distance; the earlier date (d3) must rank first.
	dates := []time.Time{d1, d2, d3}
	dists := []float64{0.9, 0.2, 0.2}

	got := Rank(dates, dists, 5, models.MetricEuclidean)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if !got[0].Date.Equal(d3) || !got[1].Date.Equal(d2) || !got[2].Date.Equal(d1) {
		t.Errorf("order = %v, %v, %v; want %v, %v, %v",
			got[0].Date, got[1].Date, got[2].Date, d3, d2, d1)
	}
	for i := range got {
		if got[i].Rank != i+1 {
			t.Errorf("rank[%d] = %d, want %d", i, got[i].Rank, i+1)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Distance < got[i-1].Distance {
			t.Errorf("distances not non-decreasing: %v", got)
		}
	}
}

func TestRankTieOrderIndependentOfInput(t *testing.T) {
	d2 := day(t, "2026-01-10")
	d3 := day(t, "2026-01-01")

	a := Rank([]time.Time{d2, d3}, []float64{0.2, 0.2}, 2, models.MetricEuclidean)
	b := Rank([]time.Time{d3, d2}, []float64{0.2, 0.2}, 2, models.MetricEuclidean)
	if !a[0].Date.Equal(b[0].Date) || !a[0].Date.Equal(d3) {
		t.Errorf("tie-break must pick earlier date regardless of input order: %v vs %v", a[0].Date, b[0].Date)
	}
}

func TestRankTruncation(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		n       int
		wantLen int
	}{
		{"fewer candidates than n", 2, 5, 2},
		{"truncates to n", 10, 3, 3},
		{"n clamped to max", 30, 25, MaxNeighbors},
		{"zero n falls back to default", 10, 0, DefaultNeighbors},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := make([]time.Time, tt.count)
			dists := make([]float64, tt.count)
			for i := range dates {
				dates[i] = day(t, "2026-01-01").AddDate(0, 0, i)
				dists[i] = float64(i)
			}
			got := Rank(dates, dists, tt.n, models.MetricEuclidean)
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestSimilarityMapping(t *testing.T) {
	// Non-cosine: 1/(1+d), bounded (0,1], monotonically decreasing.
	if got := Similarity(0, models.MetricEuclidean); got != 1 {
		t.Errorf("similarity(0) = %v, want 1", got)
	}
	if got := Similarity(1, models.MetricEuclidean); got != 0.5 {
		t.Errorf("similarity(1) = %v, want 0.5", got)
	}
	prev := 2.0
	for d := 0.0; d < 50; d += 0.7 {
		s := Similarity(d, models.MetricRMSE)
		if s <= 0 || s > 1 {
			t.Fatalf("similarity(%v) = %v outside (0,1]", d, s)
		}
		if s >= prev {
			t.Fatalf("similarity not strictly decreasing at d=%v", d)
		}
		prev = s
	}

	// Cosine: 1-d, clamped at 0 once distance passes 1.
	if got := Similarity(0.25, models.MetricCosine); !approx(got, 0.75) {
		t.Errorf("cosine similarity(0.25) = %v, want 0.75", got)
	}
	if got := Similarity(1.8, models.MetricCosine); got != 0 {
		t.Errorf("cosine similarity(1.8) = %v, want 0 (clamped)", got)
	}
}
