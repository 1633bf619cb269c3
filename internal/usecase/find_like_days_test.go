package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"GridPull/internal/domain/models"
	"GridPull/internal/services/likeday"
)

type fakePriceStore struct {
	rows    []models.PriceObservation
	fetches int
	err     error
}

func (f *fakePriceStore) HourlyLMPs(ctx context.Context, hub string, market models.Market, from, to time.Time) ([]models.PriceObservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.fetches++
	var out []models.PriceObservation
	for _, o := range f.rows {
		if o.Hub != hub || o.Market != market {
			continue
		}
		if !from.IsZero() && o.Date.Before(from) {
			continue
		}
		if !to.IsZero() && o.Date.After(to) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakePriceStore) Profiles(ctx context.Context, hub string, dates []time.Time) ([]models.PriceObservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		want[d] = true
	}
	var out []models.PriceObservation
	for _, o := range f.rows {
		if o.Hub == hub && want[o.Date] {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakePriceStore) Health(ctx context.Context) error { return nil }

type nopMetrics struct {
	pool    int
	queries int
}

func (m *nopMetrics) RecordIngest(backend, market string)        {}
func (m *nopMetrics) RecordError(kind string)                    {}
func (m *nopMetrics) RecordLatency(op string, seconds float64)   {}
func (m *nopMetrics) RecordCandidatePool(size int)               { m.pool = size }
func (m *nopMetrics) RecordLikeDayQuery(metric string)           { m.queries++ }

func ucDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

// flatDay emits 24 hourly rows at a constant value.
func flatDay(date time.Time, market models.Market, value float64) []models.PriceObservation {
	out := make([]models.PriceObservation, 0, 24)
	for h := 1; h <= 24; h++ {
		out = append(out, models.PriceObservation{
			Date:       date,
			HourEnding: h,
			Hub:        "WESTERN HUB",
			Market:     market,
			Component:  models.ComponentTotal,
			Value:      value,
		})
	}
	return out
}

func daTotalParams(target time.Time) FindLikeDaysParams {
	return FindLikeDaysParams{
		TargetDate: target,
		Hub:        "WESTERN HUB",
		Spec: models.FeatureSpec{
			Features: []models.FeatureWeight{
				{Market: models.MarketDayAhead, Component: models.ComponentTotal, Weight: 1.0},
			},
		},
		NNeighbors: 3,
		Metric:     models.MetricEuclidean,
	}
}

func TestFindLikeDaysRanksNearestFirst(t *testing.T) {
	target := ucDay(t, "2026-03-02")
	store := &fakePriceStore{}
	store.rows = append(store.rows, flatDay(ucDay(t, "2026-02-23"), models.MarketDayAhead, 10)...)
	store.rows = append(store.rows, flatDay(ucDay(t, "2026-02-24"), models.MarketDayAhead, 20)...)
	store.rows = append(store.rows, flatDay(ucDay(t, "2026-02-25"), models.MarketDayAhead, 30)...)
	store.rows = append(store.rows, flatDay(target, models.MarketDayAhead, 12)...)

	metrics := &nopMetrics{}
	uc := NewLikeDayUseCase(store, likeday.NewEngine(), metrics)

	report, err := uc.FindLikeDays(context.Background(), daTotalParams(target))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.LikeDays) != 3 {
		t.Fatalf("like days = %d, want 3", len(report.LikeDays))
	}
	wantOrder := []string{"2026-02-23", "2026-02-24", "2026-02-25"}
	for i, want := range wantOrder {
		if got := report.LikeDays[i].Date.Format("2006-01-02"); got != want {
			t.Errorf("rank %d = %s, want %s", i+1, got, want)
		}
		if report.LikeDays[i].Rank != i+1 {
			t.Errorf("rank field = %d, want %d", report.LikeDays[i].Rank, i+1)
		}
	}
	if metrics.pool != 3 {
		t.Errorf("recorded pool = %d, want 3", metrics.pool)
	}
	if metrics.queries != 1 {
		t.Errorf("recorded queries = %d, want 1", metrics.queries)
	}
}

func TestFindLikeDaysProfilesCoverTargetAndLikeDays(t *testing.T) {
	target := ucDay(t, "2026-03-02")
	store := &fakePriceStore{}
	store.rows = append(store.rows, flatDay(ucDay(t, "2026-02-23"), models.MarketDayAhead, 10)...)
	store.rows = append(store.rows, flatDay(ucDay(t, "2026-02-24"), models.MarketDayAhead, 20)...)
	// RT rows exist only for charting; they must still appear in profiles.
	store.rows = append(store.rows, flatDay(ucDay(t, "2026-02-23"), models.MarketRealTime, 11)...)
	store.rows = append(store.rows, flatDay(target, models.MarketDayAhead, 12)...)
	store.rows = append(store.rows, flatDay(target, models.MarketRealTime, 13)...)

	uc := NewLikeDayUseCase(store, likeday.NewEngine(), &nopMetrics{})

	report, err := uc.FindLikeDays(context.Background(), daTotalParams(target))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]map[models.Market]bool)
	for _, o := range report.HourlyProfiles {
		d := o.Date.Format("2006-01-02")
		if seen[d] == nil {
			seen[d] = make(map[models.Market]bool)
		}
		seen[d][o.Market] = true
	}
	if !seen["2026-03-02"][models.MarketDayAhead] || !seen["2026-03-02"][models.MarketRealTime] {
		t.Errorf("profiles missing target markets: %v", seen["2026-03-02"])
	}
	if !seen["2026-02-23"][models.MarketRealTime] {
		t.Error("profiles missing rt rows for like day 2026-02-23")
	}
}

func TestFindLikeDaysEmptyPopulation(t *testing.T) {
	target := ucDay(t, "2026-03-02")
	store := &fakePriceStore{rows: flatDay(target, models.MarketDayAhead, 12)}

	uc := NewLikeDayUseCase(store, likeday.NewEngine(), &nopMetrics{})

	report, err := uc.FindLikeDays(context.Background(), daTotalParams(target))
	if err != nil {
		t.Fatalf("empty population must not error, got %v", err)
	}
	if len(report.LikeDays) != 0 {
		t.Errorf("like days = %d, want 0", len(report.LikeDays))
	}
}

func TestFindLikeDaysNoDataForTarget(t *testing.T) {
	target := ucDay(t, "2026-03-02")
	store := &fakePriceStore{rows: flatDay(ucDay(t, "2026-02-23"), models.MarketDayAhead, 10)}

	uc := NewLikeDayUseCase(store, likeday.NewEngine(), &nopMetrics{})

	_, err := uc.FindLikeDays(context.Background(), daTotalParams(target))
	if !errors.Is(err, likeday.ErrNoDataForTarget) {
		t.Fatalf("err = %v, want ErrNoDataForTarget", err)
	}
}

func TestFindLikeDaysInvalidSpec(t *testing.T) {
	target := ucDay(t, "2026-03-02")
	uc := NewLikeDayUseCase(&fakePriceStore{}, likeday.NewEngine(), &nopMetrics{})

	p := daTotalParams(target)
	p.Spec.Features = nil
	if _, err := uc.FindLikeDays(context.Background(), p); !errors.Is(err, likeday.ErrInvalidSpec) {
		t.Fatalf("err = %v, want ErrInvalidSpec", err)
	}

	p = daTotalParams(target)
	p.Hub = ""
	if _, err := uc.FindLikeDays(context.Background(), p); !errors.Is(err, likeday.ErrInvalidSpec) {
		t.Fatalf("err = %v, want ErrInvalidSpec", err)
	}
}

func TestFindLikeDaysFetchesEachMarketOnce(t *testing.T) {
	target := ucDay(t, "2026-03-02")
	store := &fakePriceStore{}
	for _, m := range []models.Market{models.MarketDayAhead, models.MarketRealTime} {
		store.rows = append(store.rows, flatDay(ucDay(t, "2026-02-23"), m, 10)...)
		store.rows = append(store.rows, flatDay(target, m, 12)...)
	}

	uc := NewLikeDayUseCase(store, likeday.NewEngine(), &nopMetrics{})

	p := daTotalParams(target)
	p.Spec.Features = []models.FeatureWeight{
		{Market: models.MarketDayAhead, Component: models.ComponentTotal, Weight: 1.0},
		{Market: models.MarketRealTime, Component: models.ComponentTotal, Weight: 0.5},
	}
	if _, err := uc.FindLikeDays(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.fetches != 2 {
		t.Errorf("fetches = %d, want 2 (one per market)", store.fetches)
	}
}

func TestFindLikeDaysStoreError(t *testing.T) {
	target := ucDay(t, "2026-03-02")
	store := &fakePriceStore{err: errors.New("clickhouse down")}

	uc := NewLikeDayUseCase(store, likeday.NewEngine(), &nopMetrics{})

	_, err := uc.FindLikeDays(context.Background(), daTotalParams(target))
	if err == nil {
		t.Fatal("expected store error to propagate")
	}
	if errors.Is(err, likeday.ErrInvalidSpec) || errors.Is(err, likeday.ErrNoDataForTarget) {
		t.Fatalf("store error must not map to a domain error, got %v", err)
	}
}
