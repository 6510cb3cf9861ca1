/**
 * @description
 * Redis-backed read-through cache for the two hot query shapes of the
 * account-service: the current balance of an account and statement pages.
 * The cache is never authoritative: every failure here degrades to a miss or
 * a skipped write and must not fail the business operation, so methods log
 * instead of returning errors.
 */
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// statementTTL bounds statement staleness; statements only grow at the tail,
// so a short expiry replaces explicit invalidation on every write.
const statementTTL = 60 * time.Second

// Cache wraps a Redis client with JSON marshalling and the key scheme used by
// the account-service.
type Cache struct {
	client *redis.Client
}

// New creates a Cache backed by the given Redis client.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// BalanceKey is the cache key for the current balance of an account.
func BalanceKey(accountID string) string {
	return "balance_" + accountID
}

// StatementKey is the cache key for one statement page. Absent dates are
// encoded as "all" so distinct windows never share an entry.
func StatementKey(accountID, startDate, endDate string, page, limit int) string {
	if startDate == "" {
		startDate = "all"
	}
	if endDate == "" {
		endDate = "all"
	}
	return fmt.Sprintf("statement-%s-%s-%s-page%d-limit%d", accountID, startDate, endDate, page, limit)
}

// Get retrieves and unmarshals a value into dest. Returns false on any miss,
// transport error or decode failure.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: read error for key %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		log.Printf("cache: decode error for key %s: %v", key, err)
		return false
	}
	return true
}

// SetBalance stores a balance entry with no expiry; deposits and withdrawals
// delete it explicitly.
func (c *Cache) SetBalance(ctx context.Context, key string, value interface{}) {
	c.set(ctx, key, value, 0)
}

// SetStatement stores a statement page under the bounded TTL.
func (c *Cache) SetStatement(ctx context.Context, key string, value interface{}) {
	c.set(ctx, key, value, statementTTL)
}

func (c *Cache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: marshal error for key %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("cache: write error for key %s: %v", key, err)
	}
}

// Delete removes a key. A failed delete is logged and ignored; the entry will
// be corrected on the next read-through.
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("cache: delete error for key %s: %v", key, err)
	}
}
