package likeday

import (
	"fmt"
	"sort"
	"time"

	"GridPull/internal/domain/models"
)

// FeatureVector maps each requested (market, component) pair to the mean of
// the date's hourly values over the allowed hours.
type FeatureVector map[models.FeatureKey]float64

// Extraction holds per-day feature vectors for the target date and for every
// candidate date that survived the calendar filters with complete data.
type Extraction struct {
	Target     FeatureVector
	Candidates map[time.Time]FeatureVector
	Dates      []time.Time // candidate dates, ascending
}

type hourValues struct {
	sum   float64
	count int
}

// ExtractFeatures reduces raw hourly observations to per-day feature vectors.
//
// Candidates are restricted to dates strictly before the target, inside
// [histStart, histEnd] when those bounds are set, whose weekday and month pass
// the spec's filters. The target date is the query anchor, not a candidate:
// it is exempt from the weekday/month/window filters but shares the hour
// filter, since hours define which observations feed the vector. A candidate
// with zero surviving hours for any requested pair is dropped entirely; no
// partial vectors. A target in that state fails with ErrNoDataForTarget.
func ExtractFeatures(obs []models.PriceObservation, target time.Time, spec models.FeatureSpec, histStart, histEnd time.Time) (*Extraction, error) {
	keys := spec.Keys()
	keySet := make(map[models.FeatureKey]bool, len(keys))
	for _, k := range keys {
		keySet[k] = true
	}

	hourSet := make(map[int]bool, len(spec.Hours))
	for _, h := range spec.Hours {
		hourSet[h] = true
	}
	dowSet := make(map[int]bool, len(spec.DaysOfWeek))
	for _, d := range spec.DaysOfWeek {
		dowSet[d] = true
	}
	monthSet := make(map[int]bool, len(spec.Months))
	for _, m := range spec.Months {
		monthSet[m] = true
	}

	target = DateOf(target)

	// Accumulate sums per (date, key) over the surviving hours.
	acc := make(map[time.Time]map[models.FeatureKey]*hourValues)
	for _, o := range obs {
		k := models.FeatureKey{Market: o.Market, Component: o.Component}
		if !keySet[k] {
			continue
		}
		if len(hourSet) > 0 && !hourSet[o.HourEnding] {
			continue
		}
		d := DateOf(o.Date)
		if !d.Equal(target) {
			if !d.Before(target) {
				continue
			}
			if !histStart.IsZero() && d.Before(DateOf(histStart)) {
				continue
			}
			if !histEnd.IsZero() && d.After(DateOf(histEnd)) {
				continue
			}
			if len(dowSet) > 0 && !dowSet[int(d.Weekday())] {
				continue
			}
			if len(monthSet) > 0 && !monthSet[int(d.Month())] {
				continue
			}
		}
		byKey, ok := acc[d]
		if !ok {
			byKey = make(map[models.FeatureKey]*hourValues, len(keys))
			acc[d] = byKey
		}
		hv, ok := byKey[k]
		if !ok {
			hv = &hourValues{}
			byKey[k] = hv
		}
		hv.sum += o.Value
		hv.count++
	}

	ex := &Extraction{
		Candidates: make(map[time.Time]FeatureVector, len(acc)),
	}

	for d, byKey := range acc {
		vec := make(FeatureVector, len(keys))
		complete := true
		for _, k := range keys {
			hv, ok := byKey[k]
			if !ok || hv.count == 0 {
				complete = false
				break
			}
			vec[k] = hv.sum / float64(hv.count)
		}
		if d.Equal(target) {
			if !complete {
				return nil, fmt.Errorf("%w: date %s", ErrNoDataForTarget, d.Format("2006-01-02"))
			}
			ex.Target = vec
			continue
		}
		if !complete {
			continue
		}
		ex.Candidates[d] = vec
		ex.Dates = append(ex.Dates, d)
	}

	if ex.Target == nil {
		return nil, fmt.Errorf("%w: date %s", ErrNoDataForTarget, target.Format("2006-01-02"))
	}

	sort.Slice(ex.Dates, func(i, j int) bool { return ex.Dates[i].Before(ex.Dates[j]) })
	return ex, nil
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
