package sentiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// FallbackScorer 主评分器失败后改用备用评分器
// 返回结果的Backend字段标明实际产生结果的一方
type FallbackScorer struct {
	primary   Scorer
	secondary Scorer
	logger    *logrus.Logger
}

// NewFallbackScorer 创建回退评分器
func NewFallbackScorer(primary, secondary Scorer, logger *logrus.Logger) *FallbackScorer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FallbackScorer{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Backend 返回主评分器的后端
func (f *FallbackScorer) Backend() Backend {
	return f.primary.Backend()
}

// Score 实现Scorer接口
// 上下文已取消时不再回退
func (f *FallbackScorer) Score(ctx context.Context, text string) (Result, error) {
	result, err := f.primary.Score(ctx, text)
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return Result{}, err
	}

	f.logger.WithFields(logrus.Fields{
		"primary":   f.primary.Backend(),
		"secondary": f.secondary.Backend(),
		"error":     err.Error(),
	}).Warn("Primary scorer failed, falling back")

	result, fbErr := f.secondary.Score(ctx, text)
	if fbErr != nil {
		return Result{}, fmt.Errorf("fallback scorer failed: %w (primary error: %v)", fbErr, err)
	}
	if result.Backend == "" {
		result.Backend = f.secondary.Backend()
	}
	return result, nil
}
