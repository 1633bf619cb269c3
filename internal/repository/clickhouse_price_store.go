package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"GridPull/internal/domain/models"
	domrepo "GridPull/internal/domain/repository"
	pkgch "GridPull/pkg/clickhouse"
	applogger "GridPull/pkg/logger"
)

// LMPTable is the hourly observation table, one row per
// (hub, market, component, date, hour_ending).
const LMPTable = "gridpull.lmp_hourly"

// CHPriceStore implements PriceStore backed by ClickHouse.
type CHPriceStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHPriceStore(ch *pkgch.Client) *CHPriceStore {
	return &CHPriceStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHPriceStore) HourlyLMPs(ctx context.Context, hub string, market models.Market, from, to time.Time) ([]models.PriceObservation, error) {
	start := time.Now()
	if !models.IsValidMarket(market) {
		return nil, fmt.Errorf("unsupported market: %s", market)
	}

	var sb strings.Builder
	var args []interface{}
	if market == models.MarketDART {
		// The spread market is derived, not stored: da minus rt per
		// (date, hour, component), present only where both sides exist.
		sb.WriteString("SELECT da.date, da.hour_ending, da.hub, 'dart' AS market, da.component, da.value - rt.value AS value FROM ")
		sb.WriteString(LMPTable)
		sb.WriteString(" AS da INNER JOIN ")
		sb.WriteString(LMPTable)
		sb.WriteString(" AS rt ON da.hub = rt.hub AND da.date = rt.date AND da.hour_ending = rt.hour_ending AND da.component = rt.component")
		sb.WriteString(" WHERE da.market = 'da' AND rt.market = 'rt' AND da.hub = ?")
		args = []interface{}{hub}
		if !from.IsZero() {
			sb.WriteString(" AND da.date >= ?")
			args = append(args, from)
		}
		if !to.IsZero() {
			sb.WriteString(" AND da.date <= ?")
			args = append(args, to)
		}
		sb.WriteString(" ORDER BY da.date ASC, da.hour_ending ASC")
	} else {
		sb.WriteString("SELECT date, hour_ending, hub, market, component, value FROM ")
		sb.WriteString(LMPTable)
		sb.WriteString(" WHERE hub = ? AND market = ?")
		args = []interface{}{hub, string(market)}
		if !from.IsZero() {
			sb.WriteString(" AND date >= ?")
			args = append(args, from)
		}
		if !to.IsZero() {
			sb.WriteString(" AND date <= ?")
			args = append(args, to)
		}
		sb.WriteString(" ORDER BY date ASC, hour_ending ASC")
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse hourly_lmps query error",
				applogger.String("hub", hub),
				applogger.String("market", string(market)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get hourly lmps: %w", err)
	}
	defer rows.Close()

	out, err := s.scanObservations(rows)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse hourly_lmps scan error",
				applogger.String("hub", hub),
				applogger.String("market", string(market)),
				applogger.Error(err),
			)
		}
		return nil, err
	}
	if s.l != nil {
		s.l.Info("clickhouse hourly_lmps ok",
			applogger.String("hub", hub),
			applogger.String("market", string(market)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHPriceStore) Profiles(ctx context.Context, hub string, dates []time.Time) ([]models.PriceObservation, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	start := time.Now()

	placeholders := make([]string, len(dates))
	args := make([]interface{}, 0, len(dates)+1)
	args = append(args, hub)
	for i, d := range dates {
		placeholders[i] = "?"
		args = append(args, d)
	}
	in := strings.Join(placeholders, ",")
	// Stored markets plus the derived spread, so charts get all three.
	q := fmt.Sprintf(
		"SELECT date, hour_ending, hub, market, component, value FROM %[1]s WHERE hub = ? AND date IN (%[2]s)"+
			" UNION ALL"+
			" SELECT da.date, da.hour_ending, da.hub, 'dart' AS market, da.component, da.value - rt.value AS value"+
			" FROM %[1]s AS da INNER JOIN %[1]s AS rt"+
			" ON da.hub = rt.hub AND da.date = rt.date AND da.hour_ending = rt.hour_ending AND da.component = rt.component"+
			" WHERE da.market = 'da' AND rt.market = 'rt' AND da.hub = ? AND da.date IN (%[2]s)"+
			" ORDER BY date ASC, market ASC, component ASC, hour_ending ASC",
		LMPTable, in,
	)
	args = append(args, hub)
	for _, d := range dates {
		args = append(args, d)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse profiles query error",
				applogger.String("hub", hub),
				applogger.Int("dates", len(dates)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	defer rows.Close()

	out, err := s.scanObservations(rows)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse profiles scan error",
				applogger.String("hub", hub),
				applogger.Error(err),
			)
		}
		return nil, err
	}
	if s.l != nil {
		s.l.Info("clickhouse profiles ok",
			applogger.String("hub", hub),
			applogger.Int("dates", len(dates)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHPriceStore) scanObservations(rows *sql.Rows) ([]models.PriceObservation, error) {
	out := make([]models.PriceObservation, 0, 1024)
	for rows.Next() {
		var o models.PriceObservation
		var market, component string
		if err := rows.Scan(&o.Date, &o.HourEnding, &o.Hub, &market, &component, &o.Value); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.Market = models.Market(market)
		o.Component = models.Component(component)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHPriceStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var _ domrepo.PriceStore = (*CHPriceStore)(nil)
