package database

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache implementation
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// Cache key constants
const (
	SearchResultsKey = "search:results:%s"
)

// SearchKey builds the cache key for one search call.
func SearchKey(service, query string, limit int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	hash := md5.Sum([]byte(fmt.Sprintf("%s|%d|%s", service, limit, normalized)))
	return hex.EncodeToString(hash[:])
}

// CacheSearchResults caches search results under key
func (c *Cache) CacheSearchResults(ctx context.Context, key string, results interface{}, expiration time.Duration) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal search results: %w", err)
	}

	return c.client.Set(ctx, fmt.Sprintf(SearchResultsKey, key), data, expiration).Err()
}

// GetCachedSearchResults retrieves cached search results
func (c *Cache) GetCachedSearchResults(ctx context.Context, key string, result interface{}) error {
	data, err := c.client.Get(ctx, fmt.Sprintf(SearchResultsKey, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, result)
}

// InvalidateSearchCache removes search result cache for a key
func (c *Cache) InvalidateSearchCache(ctx context.Context, key string) error {
	return c.client.Del(ctx, fmt.Sprintf(SearchResultsKey, key)).Err()
}
