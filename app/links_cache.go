package app

import (
	"acumenus/startpage-api/config"
	"context"
	"fmt"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const linksPath = "/api/links"

// linksCache holds the response cache for link reads. Entries are keyed by
// request path, so query strings never split a resource across keys and a
// write can purge everything it touched.
type linksCache struct {
	store persist.CacheStore
	read  gin.HandlerFunc
	purge gin.HandlerFunc
}

// newLinksCache builds the cache from c. With caching off both handlers
// pass straight through.
func newLinksCache(ctx context.Context, c *config.Config) (*linksCache, error) {
	if c.Cache.LinksTTL <= 0 {
		next := func(c *gin.Context) { c.Next() }
		return &linksCache{read: next, purge: next}, nil
	}

	ttl := time.Duration(c.Cache.LinksTTL) * time.Second

	var store persist.CacheStore
	switch c.Cache.Store {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to reach redis at %s, %w", c.Redis.Addr, err)
		}

		store = persist.NewRedisStore(client)
	default:
		store = persist.NewMemoryStore(time.Minute)
	}

	lc := &linksCache{store: store}
	lc.read = cache.CacheByRequestPath(store, ttl)
	lc.purge = lc.purgeAfterWrite
	return lc, nil
}

// purgeAfterWrite drops the cached list and the cached link named by the
// route once a write has succeeded
func (lc *linksCache) purgeAfterWrite(c *gin.Context) {
	c.Next()

	if c.IsAborted() || c.Writer.Status() >= 300 {
		return
	}

	keys := []string{linksPath}
	if id := c.Param("id"); id != "" {
		keys = append(keys, linksPath+"/"+id)
	}

	for _, k := range keys {
		// The memory store reports missing keys as errors
		if err := lc.store.Delete(k); err != nil {
			zap.L().Debug("Failed to purge cached link response", zap.String("key", k), zap.Error(err))
		}
	}
}
