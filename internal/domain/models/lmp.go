package models

import "time"

// Market identifies the PJM settlement mechanism a price belongs to.
type Market string

const (
	MarketDayAhead Market = "da"
	MarketRealTime Market = "rt"
	MarketDART     Market = "dart" // day-ahead minus real-time spread
)

// Component identifies the LMP price component.
type Component string

const (
	ComponentTotal      Component = "lmp_total"
	ComponentEnergy     Component = "lmp_system_energy_price"
	ComponentCongestion Component = "lmp_congestion_price"
	ComponentLoss       Component = "lmp_marginal_loss_price"
)

// PriceObservation is one hourly LMP row: (date, hour-ending, market,
// component) at a pricing hub. Immutable once ingested.
type PriceObservation struct {
	Date       time.Time `json:"date"`
	HourEnding int       `json:"hour_ending"` // 1..24
	Hub        string    `json:"hub"`
	Market     Market    `json:"market"`
	Component  Component `json:"component"`
	Value      float64   `json:"value"` // $/MWh
}

// IsValidMarket returns true if m is a supported market.
func IsValidMarket(m Market) bool {
	switch m {
	case MarketDayAhead, MarketRealTime, MarketDART:
		return true
	default:
		return false
	}
}

// IsValidComponent returns true if c is a supported LMP component.
func IsValidComponent(c Component) bool {
	switch c {
	case ComponentTotal, ComponentEnergy, ComponentCongestion, ComponentLoss:
		return true
	default:
		return false
	}
}

// AllMarkets lists markets in a fixed order.
func AllMarkets() []Market {
	return []Market{MarketDayAhead, MarketRealTime, MarketDART}
}

// AllComponents lists LMP components in a fixed order.
func AllComponents() []Component {
	return []Component{ComponentTotal, ComponentEnergy, ComponentCongestion, ComponentLoss}
}
