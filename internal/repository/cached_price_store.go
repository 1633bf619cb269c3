package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"GridPull/internal/domain/models"
	domrepo "GridPull/internal/domain/repository"
	"GridPull/pkg/cache"
	applogger "GridPull/pkg/logger"
)

// CachedPriceStore wraps a PriceStore with a read-through cache.
// History queries are immutable once the day has settled, so cached
// entries only ever go stale at the open end of a range.
type CachedPriceStore struct {
	next  domrepo.PriceStore
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger
}

func NewCachedPriceStore(next domrepo.PriceStore, c cache.Service, ttl time.Duration) *CachedPriceStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedPriceStore{next: next, cache: c, ttl: ttl}
}

func (s *CachedPriceStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func rangeKey(hub string, market models.Market, from, to time.Time) string {
	f, t := "open", "open"
	if !from.IsZero() {
		f = from.Format("2006-01-02")
	}
	if !to.IsZero() {
		t = to.Format("2006-01-02")
	}
	return fmt.Sprintf("lmp:range:%s:%s:%s:%s", strings.ReplaceAll(hub, " ", "_"), market, f, t)
}

func profileKey(hub string, dates []time.Time) string {
	ds := make([]string, len(dates))
	for i, d := range dates {
		ds[i] = d.Format("2006-01-02")
	}
	sort.Strings(ds)
	return fmt.Sprintf("lmp:profile:%s:%s", strings.ReplaceAll(hub, " ", "_"), strings.Join(ds, ","))
}

func (s *CachedPriceStore) HourlyLMPs(ctx context.Context, hub string, market models.Market, from, to time.Time) ([]models.PriceObservation, error) {
	key := rangeKey(hub, market, from, to)

	var cached []models.PriceObservation
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		if s.l != nil {
			s.l.Debug("price store cache hit", applogger.String("key", key))
		}
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) && s.l != nil {
		s.l.Warn("price store cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	obs, err := s.next.HourlyLMPs(ctx, hub, market, from, to)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, obs, s.ttl); err != nil && s.l != nil {
		s.l.Warn("price store cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return obs, nil
}

func (s *CachedPriceStore) Profiles(ctx context.Context, hub string, dates []time.Time) ([]models.PriceObservation, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	key := profileKey(hub, dates)

	var cached []models.PriceObservation
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		if s.l != nil {
			s.l.Debug("profile cache hit", applogger.String("key", key))
		}
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) && s.l != nil {
		s.l.Warn("profile cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	obs, err := s.next.Profiles(ctx, hub, dates)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, obs, s.ttl); err != nil && s.l != nil {
		s.l.Warn("profile cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return obs, nil
}

func (s *CachedPriceStore) Health(ctx context.Context) error {
	return s.next.Health(ctx)
}

// Invalidate drops all cached ranges for a hub/market after new data lands.
func (s *CachedPriceStore) Invalidate(ctx context.Context, hub string, market models.Market) error {
	pattern := fmt.Sprintf("lmp:range:%s:%s:*", strings.ReplaceAll(hub, " ", "_"), market)
	return s.cache.DeleteByPattern(ctx, pattern)
}

var _ domrepo.PriceStore = (*CachedPriceStore)(nil)
