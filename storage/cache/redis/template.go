// Package rediscache keeps resolved assessment templates in redis.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
)

const (
	templateKeyPrefix = "apa:template:"
	scanCount         = 100
)

// NewClient connects to the redis server of `conf` and pings it.
func NewClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        conf.Redis.Addr,
		Password:    conf.Redis.Password,
		DB:          conf.Redis.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return rdb, nil
}

// TemplateCache implements assessment.TemplateCache. Redis failures degrade to cache misses and are logged.
type TemplateCache struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger core.Logger
}

var _ assessment.TemplateCache = (*TemplateCache)(nil)

func NewTemplateCache(rdb redis.UniversalClient, ttl time.Duration, logger core.Logger) *TemplateCache {
	return &TemplateCache{rdb: rdb, ttl: ttl, logger: logger}
}

func templateKey(id string) string {
	return templateKeyPrefix + id
}

func (c *TemplateCache) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, err)
	}
}

func (c *TemplateCache) Get(ctx context.Context, id string) (assessment.TemplateDetail, bool) {
	raw, err := c.rdb.Get(ctx, templateKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.warn("template cache: get", errors.Wrapf(err, "template %s", id))
		}
		return assessment.TemplateDetail{}, false
	}
	var detail assessment.TemplateDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		c.warn("template cache: decode", errors.Wrapf(err, "template %s", id))
		return assessment.TemplateDetail{}, false
	}
	return detail, true
}

func (c *TemplateCache) Set(ctx context.Context, detail assessment.TemplateDetail) {
	raw, err := json.Marshal(detail)
	if err != nil {
		c.warn("template cache: encode", errors.Wrapf(err, "template %s", detail.ID))
		return
	}
	if err := c.rdb.Set(ctx, templateKey(detail.ID), raw, c.ttl).Err(); err != nil {
		c.warn("template cache: set", errors.Wrapf(err, "template %s", detail.ID))
	}
}

func (c *TemplateCache) Invalidate(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, templateKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.warn("template cache: invalidate", err)
	}
}

// Flush drops every cached template.
func (c *TemplateCache) Flush(ctx context.Context) {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, templateKeyPrefix+"*", scanCount).Result()
		if err != nil {
			c.warn("template cache: flush", err)
			return
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				c.warn("template cache: flush", err)
				return
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}
