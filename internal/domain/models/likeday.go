package models

import (
	"fmt"
	"sort"
	"time"
)

// Metric selects the distance function used for like-day ranking.
type Metric string

const (
	MetricEuclidean    Metric = "euclidean"
	MetricManhattanMAE Metric = "manhattan_mae"
	MetricRMSE         Metric = "rmse"
	MetricCosine       Metric = "cosine"
)

// IsValidMetric returns true if m is a supported distance metric.
func IsValidMetric(m Metric) bool {
	switch m {
	case MetricEuclidean, MetricManhattanMAE, MetricRMSE, MetricCosine:
		return true
	default:
		return false
	}
}

// DefaultMetric returns the metric used when the caller does not pick one.
func DefaultMetric() Metric { return MetricCosine }

// NormalizeMetric converts a raw string to a valid metric (or default).
func NormalizeMetric(s string) Metric {
	if s == "" {
		return DefaultMetric()
	}
	m := Metric(s)
	if IsValidMetric(m) {
		return m
	}
	return DefaultMetric()
}

// FeatureKey identifies one similarity signal: a (market, component) pair.
type FeatureKey struct {
	Market    Market
	Component Component
}

func (k FeatureKey) String() string {
	return fmt.Sprintf("%s.%s", k.Market, k.Component)
}

// FeatureWeight is one user-chosen signal with its blending weight.
type FeatureWeight struct {
	Market    Market  `json:"market"`
	Component Component `json:"component"`
	Weight    float64 `json:"weight"`
}

// FeatureSpec defines which signals participate in ranking plus the calendar
// filters applied to the candidate population.
type FeatureSpec struct {
	Features   []FeatureWeight
	Hours      []int // subset of 1..24, empty = all
	DaysOfWeek []int // subset of 0..6 (0=Sun), empty = all
	Months     []int // subset of 1..12, empty = all
}

// Validate rejects specs that make ranking undefined: no features, a
// non-positive weight, or a calendar filter value outside its range.
func (s FeatureSpec) Validate() error {
	if len(s.Features) == 0 {
		return fmt.Errorf("feature spec: at least one (market, component) pair is required")
	}
	for _, f := range s.Features {
		if !IsValidMarket(f.Market) {
			return fmt.Errorf("feature spec: unknown market %q", f.Market)
		}
		if !IsValidComponent(f.Component) {
			return fmt.Errorf("feature spec: unknown component %q", f.Component)
		}
		if f.Weight <= 0 {
			return fmt.Errorf("feature spec: weight for %s.%s must be positive", f.Market, f.Component)
		}
	}
	for _, h := range s.Hours {
		if h < 1 || h > 24 {
			return fmt.Errorf("feature spec: hour %d outside 1..24", h)
		}
	}
	for _, d := range s.DaysOfWeek {
		if d < 0 || d > 6 {
			return fmt.Errorf("feature spec: day of week %d outside 0..6", d)
		}
	}
	for _, m := range s.Months {
		if m < 1 || m > 12 {
			return fmt.Errorf("feature spec: month %d outside 1..12", m)
		}
	}
	return nil
}

// Keys returns the (market, component) pairs in deterministic order.
func (s FeatureSpec) Keys() []FeatureKey {
	keys := make([]FeatureKey, 0, len(s.Features))
	for _, f := range s.Features {
		keys = append(keys, FeatureKey{Market: f.Market, Component: f.Component})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Market != keys[j].Market {
			return keys[i].Market < keys[j].Market
		}
		return keys[i].Component < keys[j].Component
	})
	return keys
}

// Weights returns the weight per key, aligned with Keys().
func (s FeatureSpec) Weights() []float64 {
	byKey := make(map[FeatureKey]float64, len(s.Features))
	for _, f := range s.Features {
		byKey[FeatureKey{Market: f.Market, Component: f.Component}] = f.Weight
	}
	keys := s.Keys()
	w := make([]float64, len(keys))
	for i, k := range keys {
		w[i] = byKey[k]
	}
	return w
}

// Markets returns the distinct markets the spec touches, sorted.
func (s FeatureSpec) Markets() []Market {
	seen := make(map[Market]bool, len(s.Features))
	for _, f := range s.Features {
		seen[f.Market] = true
	}
	out := make([]Market, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LikeDayResult is one ranked historical day.
type LikeDayResult struct {
	Date       time.Time `json:"date"`
	Rank       int       `json:"rank"`     // 1-based, ascending distance
	Distance   float64   `json:"distance"` // non-negative
	Similarity float64   `json:"similarity"`
}

// LikeDayReport is the full answer to a like-day query: the ranked list plus
// the hourly profiles (all markets, all components) for charting.
type LikeDayReport struct {
	TargetDate     time.Time          `json:"target_date"`
	Hub            string             `json:"hub"`
	Metric         Metric             `json:"metric"`
	NNeighbors     int                `json:"n_neighbors"`
	LikeDays       []LikeDayResult    `json:"like_days"`
	HourlyProfiles []PriceObservation `json:"hourly_profiles"`
}
