package likeday

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"GridPull/internal/domain/models"
)

// rampObs builds a day whose hourly da.lmp_total curve is base + hour.
func rampObs(d time.Time, base float64) []models.PriceObservation {
	out := make([]models.PriceObservation, 0, 24)
	for h := 1; h <= 24; h++ {
		out = append(out, models.PriceObservation{
			Date: d, HourEnding: h,
			Market: models.MarketDayAhead, Component: models.ComponentTotal,
			Value: base + float64(h),
		})
	}
	return out
}

func TestEngineRanksNearestFirst(t *testing.T) {
	target := day(t, "2026-02-23")
	near := day(t, "2026-02-18")
	mid := day(t, "2026-02-12")
	far := day(t, "2026-02-05")

	var obs []models.PriceObservation
	obs = append(obs, rampObs(target, 50)...)
	obs = append(obs, rampObs(near, 52)...)
	obs = append(obs, rampObs(mid, 60)...)
	obs = append(obs, rampObs(far, 90)...)

	eng := NewEngine()
	results, pool, err := eng.FindLikeDays(obs, Query{
		TargetDate: target,
		Spec:       daTotalSpec(),
		NNeighbors: 3,
		Metric:     models.MetricEuclidean,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool != 3 {
		t.Errorf("candidate pool = %d, want 3", pool)
	}
	if len(results) != 3 {
		t.Fatalf("len = %d, want 3", len(results))
	}
	wantOrder := []time.Time{near, mid, far}
	for i, r := range results {
		if !r.Date.Equal(wantOrder[i]) {
			t.Errorf("rank %d = %v, want %v", i+1, r.Date, wantOrder[i])
		}
		if r.Distance < 0 {
			t.Errorf("rank %d distance = %v, want >= 0", i+1, r.Distance)
		}
		if r.Similarity <= 0 || r.Similarity > 1 {
			t.Errorf("rank %d similarity = %v outside (0,1]", i+1, r.Similarity)
		}
	}
}

func TestEngineEmptyPopulationIsNotAnError(t *testing.T) {
	target := day(t, "2026-02-23")
	obs := rampObs(target, 50) // nothing but the target itself

	eng := NewEngine()
	results, pool, err := eng.FindLikeDays(obs, Query{
		TargetDate: target,
		Spec:       daTotalSpec(),
		NNeighbors: 5,
		Metric:     models.MetricCosine,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool != 0 || len(results) != 0 {
		t.Errorf("pool=%d results=%d, want empty", pool, len(results))
	}
}

func TestEngineInvalidSpec(t *testing.T) {
	eng := NewEngine()
	tests := []struct {
		name string
		spec models.FeatureSpec
	}{
		{"no features", models.FeatureSpec{}},
		{"zero weight", models.FeatureSpec{Features: []models.FeatureWeight{
			{Market: models.MarketDayAhead, Component: models.ComponentTotal, Weight: 0},
		}}},
		{"negative weight", models.FeatureSpec{Features: []models.FeatureWeight{
			{Market: models.MarketDayAhead, Component: models.ComponentTotal, Weight: -1},
		}}},
		{"bad hour", models.FeatureSpec{
			Features: []models.FeatureWeight{{Market: models.MarketDayAhead, Component: models.ComponentTotal, Weight: 1}},
			Hours:    []int{0},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := eng.FindLikeDays(nil, Query{
				TargetDate: day(t, "2026-02-23"),
				Spec:       tt.spec,
				Metric:     models.MetricEuclidean,
			})
			if !errors.Is(err, ErrInvalidSpec) {
				t.Fatalf("expected ErrInvalidSpec, got %v", err)
			}
		})
	}
}

func TestEngineDeterministic(t *testing.T) {
	target := day(t, "2026-02-23")
	var obs []models.PriceObservation
	obs = append(obs, rampObs(target, 31)...)
	for i := 1; i <= 8; i++ {
		obs = append(obs, rampObs(target.AddDate(0, 0, -i), float64(20+3*i))...)
	}

	q := Query{
		TargetDate: target,
		Spec:       daTotalSpec(),
		NNeighbors: 5,
		Metric:     models.MetricRMSE,
	}
	eng := NewEngine()
	a, _, err := eng.FindLikeDays(obs, q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _, err := eng.FindLikeDays(obs, q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must produce identical output")
	}
}
