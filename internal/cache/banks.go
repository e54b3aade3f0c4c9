// Package cache keeps the backend bank list in Redis between jobs.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"iedi-workers/internal/analysis"
	"iedi-workers/internal/common/logger"
	"iedi-workers/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const BanksKey = "iedi:banks"

// BankSource is the authoritative bank list, normally the backend client.
type BankSource interface {
	ListBanks(ctx context.Context) ([]analysis.Bank, error)
}

// BankCatalog reads through Redis to the source. Redis failures never fail a lookup;
// they are logged and the source is asked directly.
type BankCatalog struct {
	source BankSource
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

// NewBankCatalog with a nil rdb always goes to the source.
func NewBankCatalog(source BankSource, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *BankCatalog {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &BankCatalog{
		source: source,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "bank-catalog"}),
	}
}

func (c *BankCatalog) Banks(ctx context.Context) ([]analysis.Bank, error) {
	if banks, ok := c.cached(ctx); ok {
		return banks, nil
	}

	banks, err := c.source.ListBanks(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, banks)
	return banks, nil
}

// Names is the set of accepted bank spellings.
func (c *BankCatalog) Names(ctx context.Context) (map[string]struct{}, error) {
	banks, err := c.Banks(ctx)
	if err != nil {
		return nil, err
	}
	return analysis.BankNameSet(banks), nil
}

// Unknown lists the names the backend does not track.
func (c *BankCatalog) Unknown(ctx context.Context, names []string) ([]string, error) {
	set, err := c.Names(ctx)
	if err != nil {
		return nil, err
	}
	return analysis.UnknownBanks(set, names), nil
}

func (c *BankCatalog) Invalidate(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	if err := c.redis.Del(ctx, BanksKey).Err(); err != nil {
		return fmt.Errorf("invalidate bank cache: %w", err)
	}
	return nil
}

func (c *BankCatalog) cached(ctx context.Context) ([]analysis.Bank, bool) {
	if c.redis == nil {
		return nil, false
	}

	val, err := c.redis.Get(ctx, BanksKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.BankCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	case err != nil:
		metrics.BankCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("bank cache read failed, using backend", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	var banks []analysis.Bank
	if err := json.Unmarshal([]byte(val), &banks); err != nil {
		metrics.BankCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("bank cache entry unreadable, using backend", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	metrics.BankCacheLookups.WithLabelValues("hit").Inc()
	return banks, true
}

func (c *BankCatalog) store(ctx context.Context, banks []analysis.Bank) {
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(banks)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, BanksKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("bank cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
