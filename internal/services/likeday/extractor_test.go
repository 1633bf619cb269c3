package likeday

import (
	"errors"
	"testing"
	"time"

	"GridPull/internal/domain/models"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func hourly(date time.Time, market models.Market, comp models.Component, hours []int, value float64) []models.PriceObservation {
	out := make([]models.PriceObservation, 0, len(hours))
	for _, h := range hours {
		out = append(out, models.PriceObservation{
			Date:       date,
			HourEnding: h,
			Hub:        "WESTERN HUB",
			Market:     market,
			Component:  comp,
			Value:      value,
		})
	}
	return out
}

func allHours() []int {
	hs := make([]int, 24)
	for i := range hs {
		hs[i] = i + 1
	}
	return hs
}

func daTotalSpec() models.FeatureSpec {
	return models.FeatureSpec{
		Features: []models.FeatureWeight{
			{Market: models.MarketDayAhead, Component: models.ComponentTotal, Weight: 1.0},
		},
	}
}

func TestExtractFeaturesMean(t *testing.T) {
	target := day(t, "2026-02-23")
	cand := day(t, "2026-02-20")

	var obs []models.PriceObservation
	for h := 1; h <= 24; h++ {
		obs = append(obs, models.PriceObservation{
			Date: cand, HourEnding: h,
			Market: models.MarketDayAhead, Component: models.ComponentTotal,
			Value: float64(h),
		})
	}
	obs = append(obs, hourly(target, models.MarketDayAhead, models.ComponentTotal, allHours(), 30)...)

	ex, err := ExtractFeatures(obs, target, daTotalSpec(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key := models.FeatureKey{Market: models.MarketDayAhead, Component: models.ComponentTotal}
	if got := ex.Candidates[cand][key]; got != 12.5 {
		t.Errorf("candidate mean = %v, want 12.5", got)
	}
	if got := ex.Target[key]; got != 30 {
		t.Errorf("target mean = %v, want 30", got)
	}
}

func TestExtractFeaturesHourFilter(t *testing.T) {
	target := day(t, "2026-02-23")
	cand := day(t, "2026-02-20")

	var obs []models.PriceObservation
	for h := 1; h <= 24; h++ {
		obs = append(obs, models.PriceObservation{
			Date: cand, HourEnding: h,
			Market: models.MarketDayAhead, Component: models.ComponentTotal,
			Value: float64(h * 10),
		})
	}
	obs = append(obs, hourly(target, models.MarketDayAhead, models.ComponentTotal, allHours(), 1)...)

	spec := daTotalSpec()
	spec.Hours = []int{1, 2} // values 10 and 20

	ex, err := ExtractFeatures(obs, target, spec, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key := models.FeatureKey{Market: models.MarketDayAhead, Component: models.ComponentTotal}
	if got := ex.Candidates[cand][key]; got != 15 {
		t.Errorf("candidate mean with hour filter = %v, want 15", got)
	}
}

func TestExtractFeaturesDropsIncompleteCandidate(t *testing.T) {
	target := day(t, "2026-02-23")
	full := day(t, "2026-02-19")
	partial := day(t, "2026-02-20") // has da data but no rt data

	spec := models.FeatureSpec{
		Features: []models.FeatureWeight{
			{Market: models.MarketDayAhead, Component: models.ComponentTotal, Weight: 1.0},
			{Market: models.MarketRealTime, Component: models.ComponentTotal, Weight: 1.0},
		},
	}

	var obs []models.PriceObservation
	obs = append(obs, hourly(full, models.MarketDayAhead, models.ComponentTotal, allHours(), 20)...)
	obs = append(obs, hourly(full, models.MarketRealTime, models.ComponentTotal, allHours(), 22)...)
	obs = append(obs, hourly(partial, models.MarketDayAhead, models.ComponentTotal, allHours(), 21)...)
	obs = append(obs, hourly(target, models.MarketDayAhead, models.ComponentTotal, allHours(), 25)...)
	obs = append(obs, hourly(target, models.MarketRealTime, models.ComponentTotal, allHours(), 26)...)

	ex, err := ExtractFeatures(obs, target, spec, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ex.Candidates[partial]; ok {
		t.Error("partial candidate should have been dropped")
	}
	if _, ok := ex.Candidates[full]; !ok {
		t.Error("complete candidate missing")
	}
}

func TestExtractFeaturesCalendarFilters(t *testing.T) {
	// 2026-02-21 is a Saturday, 2026-02-20 a Friday, 2026-01-16 a Friday.
	target := day(t, "2026-02-23") // Monday; targets bypass calendar filters
	sat := day(t, "2026-02-21")
	fri := day(t, "2026-02-20")
	janFri := day(t, "2026-01-16")

	var obs []models.PriceObservation
	for _, d := range []time.Time{sat, fri, janFri, target} {
		obs = append(obs, hourly(d, models.MarketDayAhead, models.ComponentTotal, allHours(), 40)...)
	}

	spec := daTotalSpec()
	spec.DaysOfWeek = []int{1, 2, 3, 4, 5} // weekdays, 0=Sun
	spec.Months = []int{2}

	ex, err := ExtractFeatures(obs, target, spec, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ex.Candidates[sat]; ok {
		t.Error("saturday candidate should be excluded by days_of_week")
	}
	if _, ok := ex.Candidates[janFri]; ok {
		t.Error("january candidate should be excluded by months")
	}
	if _, ok := ex.Candidates[fri]; !ok {
		t.Error("february friday should survive")
	}
	if ex.Target == nil {
		t.Error("target must bypass calendar filters")
	}
}

func TestExtractFeaturesHistWindow(t *testing.T) {
	target := day(t, "2026-02-23")
	early := day(t, "2025-01-10")
	inside := day(t, "2025-06-10")
	late := day(t, "2026-02-20")

	var obs []models.PriceObservation
	for _, d := range []time.Time{early, inside, late, target} {
		obs = append(obs, hourly(d, models.MarketDayAhead, models.ComponentTotal, allHours(), 12)...)
	}

	ex, err := ExtractFeatures(obs, target, daTotalSpec(), day(t, "2025-03-01"), day(t, "2025-12-31"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ex.Dates) != 1 || !ex.Dates[0].Equal(inside) {
		t.Errorf("hist window: got dates %v, want only %v", ex.Dates, inside)
	}
}

func TestExtractFeaturesNoDataForTarget(t *testing.T) {
	target := day(t, "2026-02-23")
	cand := day(t, "2026-02-20")

	obs := hourly(cand, models.MarketDayAhead, models.ComponentTotal, allHours(), 33)

	_, err := ExtractFeatures(obs, target, daTotalSpec(), time.Time{}, time.Time{})
	if !errors.Is(err, ErrNoDataForTarget) {
		t.Fatalf("expected ErrNoDataForTarget, got %v", err)
	}
}

func TestExtractFeaturesTargetHoursFiltered(t *testing.T) {
	// Target has rows only outside the allowed hours: still NoDataForTarget.
	target := day(t, "2026-02-23")
	cand := day(t, "2026-02-20")

	var obs []models.PriceObservation
	obs = append(obs, hourly(cand, models.MarketDayAhead, models.ComponentTotal, allHours(), 33)...)
	obs = append(obs, hourly(target, models.MarketDayAhead, models.ComponentTotal, []int{20, 21}, 35)...)

	spec := daTotalSpec()
	spec.Hours = []int{7, 8}

	_, err := ExtractFeatures(obs, target, spec, time.Time{}, time.Time{})
	if !errors.Is(err, ErrNoDataForTarget) {
		t.Fatalf("expected ErrNoDataForTarget, got %v", err)
	}
}

func TestExtractFeaturesDatesSorted(t *testing.T) {
	target := day(t, "2026-02-23")
	days := []string{"2026-02-20", "2026-02-10", "2026-02-15"}

	var obs []models.PriceObservation
	for _, s := range days {
		obs = append(obs, hourly(day(t, s), models.MarketDayAhead, models.ComponentTotal, allHours(), 10)...)
	}
	obs = append(obs, hourly(target, models.MarketDayAhead, models.ComponentTotal, allHours(), 10)...)

	ex, err := ExtractFeatures(obs, target, daTotalSpec(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(ex.Dates); i++ {
		if !ex.Dates[i-1].Before(ex.Dates[i]) {
			t.Fatalf("dates not ascending: %v", ex.Dates)
		}
	}
}
