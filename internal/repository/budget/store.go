// Package budget persists oracle token counters in Redis.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/mindvault/internal/db"
	"github.com/kailas-cloud/mindvault/internal/domain"
)

// store is the consumer interface for budget operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Counter TTLs outlive their window so a late reader still sees the total.
const (
	dailyTTL   = 48 * time.Hour
	monthlyTTL = 62 * 24 * time.Hour
)

// Store keeps one counter per period bucket:
// <prefix>budget:<scope>:daily:2006-01-02 and <prefix>budget:<scope>:monthly:2006-01.
type Store struct {
	store  store
	prefix string
	scope  string
}

// New creates a budget store. scope separates independent budgets (e.g. "oracle").
func New(s store, keyPrefix, scope string) *Store {
	return &Store{store: s, prefix: keyPrefix, scope: scope}
}

// Add increments the bucket holding at and sets its TTL once.
func (s *Store) Add(ctx context.Context, period domain.BudgetPeriod, at time.Time, tokens int64) error {
	key := s.key(period, at)
	if err := s.store.IncrBy(ctx, key, tokens); err != nil {
		return fmt.Errorf("budget INCRBY %s: %w", key, err)
	}

	// NX keeps the first expiry; repeat increments must not extend it.
	if err := s.store.Expire(ctx, key, ttlFor(period), true); err != nil {
		return fmt.Errorf("budget EXPIRE %s: %w", key, err)
	}
	return nil
}

// Load returns the bucket total for at, 0 when nothing was recorded.
func (s *Store) Load(ctx context.Context, period domain.BudgetPeriod, at time.Time) (int64, error) {
	key := s.key(period, at)
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("budget GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("budget GET %s parse: %w", key, err)
	}
	return val, nil
}

func (s *Store) key(period domain.BudgetPeriod, at time.Time) string {
	at = at.UTC()
	bucket := at.Format(time.DateOnly)
	if period == domain.BudgetMonthly {
		bucket = at.Format("2006-01")
	}
	return fmt.Sprintf("%sbudget:%s:%s:%s", s.prefix, s.scope, period, bucket)
}

func ttlFor(period domain.BudgetPeriod) time.Duration {
	if period == domain.BudgetMonthly {
		return monthlyTTL
	}
	return dailyTTL
}
