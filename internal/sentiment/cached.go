package sentiment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fyerfyer/doc-sentiment/internal/cache"
	"github.com/sirupsen/logrus"
)

// CachedScorer 按文本内容缓存评分结果
// 缓存读写失败只记录日志，不影响评分
type CachedScorer struct {
	inner  Scorer
	cache  cache.Cache
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCachedScorer 创建带缓存的评分器
func NewCachedScorer(inner Scorer, c cache.Cache, ttl time.Duration, logger *logrus.Logger) *CachedScorer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CachedScorer{
		inner:  inner,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// Backend 实现Scorer接口
func (c *CachedScorer) Backend() Backend {
	return c.inner.Backend()
}

// CacheKey 返回文本对应的缓存键
func (c *CachedScorer) CacheKey(text string) string {
	return cache.GenerateCacheKey(string(c.inner.Backend()), cache.ContentHash(text))
}

// Score 实现Scorer接口
func (c *CachedScorer) Score(ctx context.Context, text string) (Result, error) {
	key := c.CacheKey(text)

	cached, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to read sentiment cache")
	} else if found {
		var result Result
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			c.logger.WithField("key", key).Debug("Sentiment cache hit")
			return result, nil
		}
		c.logger.WithField("key", key).Warn("Discarding malformed cache entry")
	}

	result, err := c.inner.Score(ctx, text)
	if err != nil {
		return Result{}, err
	}

	// 回退产生的结果不写入主后端的缓存
	if result.Backend != "" && result.Backend != c.inner.Backend() {
		return result, nil
	}

	data, err := json.Marshal(result)
	if err == nil {
		if err := c.cache.Set(ctx, key, string(data), c.ttl); err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("Failed to write sentiment cache")
		}
	}

	return result, nil
}
