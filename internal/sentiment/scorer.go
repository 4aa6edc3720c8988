package sentiment

import (
	"fmt"
	"time"

	"github.com/fyerfyer/doc-sentiment/internal/cache"
	"github.com/fyerfyer/doc-sentiment/internal/llm"
	"github.com/sirupsen/logrus"
)

// Config 评分器装配配置
type Config struct {
	Backend       Backend       // remote或local
	Structured    bool          // 远程评分使用JSON结构化回复
	FallbackLocal bool          // 远程失败后回退到本地评分
	CacheTTL      time.Duration // 结果缓存时间
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Backend:  BackendRemote,
		CacheTTL: 24 * time.Hour,
	}
}

// New 按配置组装评分器
// c为nil时不启用缓存；local后端不需要llm客户端
func New(cfg Config, client llm.Client, c cache.Cache, logger *logrus.Logger) (Scorer, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendRemote
	}

	var scorer Scorer
	switch cfg.Backend {
	case BackendLocal:
		local, err := NewLexiconScorer(WithLocalLogger(logger))
		if err != nil {
			return nil, err
		}
		scorer = local

	case BackendRemote:
		if client == nil {
			return nil, fmt.Errorf("remote sentiment backend requires an llm client")
		}
		opts := []RemoteOption{WithRemoteLogger(logger)}
		if cfg.Structured {
			opts = append(opts, WithStructuredReply())
		}
		scorer = NewRemoteScorer(client, opts...)

		if cfg.FallbackLocal {
			local, err := NewLexiconScorer(WithLocalLogger(logger))
			if err != nil {
				return nil, err
			}
			scorer = NewFallbackScorer(scorer, local, logger)
		}

	default:
		return nil, fmt.Errorf("unknown sentiment backend: %q", cfg.Backend)
	}

	if c != nil {
		scorer = NewCachedScorer(scorer, c, cfg.CacheTTL, logger)
	}

	logger.WithFields(logrus.Fields{
		"backend":        cfg.Backend,
		"structured":     cfg.Structured,
		"fallback_local": cfg.FallbackLocal,
		"cache":          c != nil,
	}).Info("Sentiment scorer initialized")

	return scorer, nil
}
