package sentiment

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"github.com/sirupsen/logrus"
)

// SentenceSplitter 把文本切分为句子
type SentenceSplitter interface {
	Split(text string) []string
}

// PolarityModel 计算单句的极性分数，取值[-1,1]
type PolarityModel interface {
	Polarity(sentence string) float64
}

// punktSplitter 基于neurosnap/sentences英文模型的分句器
type punktSplitter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewPunktSplitter 加载英文分句模型
func NewPunktSplitter() (SentenceSplitter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence tokenizer: %w", err)
	}
	return &punktSplitter{tokenizer: tokenizer}, nil
}

// Split 实现SentenceSplitter接口
func (p *punktSplitter) Split(text string) []string {
	tokens := p.tokenizer.Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, s := range tokens {
		if sentence := strings.TrimSpace(s.Text); sentence != "" {
			out = append(out, sentence)
		}
	}
	return out
}

// vaderModel 使用VADER compound分数作为句子极性
type vaderModel struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderModel 创建VADER极性模型
func NewVaderModel() PolarityModel {
	return &vaderModel{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity 实现PolarityModel接口
func (v *vaderModel) Polarity(sentence string) float64 {
	return v.analyzer.PolarityScores(sentence).Compound
}

// LexiconScorer 本地逐句投票评分器
type LexiconScorer struct {
	splitter SentenceSplitter
	model    PolarityModel
	logger   *logrus.Logger
}

// LocalOption 本地评分器配置选项
type LocalOption func(*LexiconScorer)

// WithSplitter 替换分句器
func WithSplitter(splitter SentenceSplitter) LocalOption {
	return func(s *LexiconScorer) {
		if splitter != nil {
			s.splitter = splitter
		}
	}
}

// WithPolarityModel 替换极性模型
func WithPolarityModel(model PolarityModel) LocalOption {
	return func(s *LexiconScorer) {
		if model != nil {
			s.model = model
		}
	}
}

// WithLocalLogger 设置日志记录器
func WithLocalLogger(logger *logrus.Logger) LocalOption {
	return func(s *LexiconScorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewLexiconScorer 创建本地评分器
// 未通过选项注入时使用英文分句模型和VADER
func NewLexiconScorer(opts ...LocalOption) (*LexiconScorer, error) {
	s := &LexiconScorer{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}

	if s.splitter == nil {
		splitter, err := NewPunktSplitter()
		if err != nil {
			return nil, err
		}
		s.splitter = splitter
	}
	if s.model == nil {
		s.model = NewVaderModel()
	}
	return s, nil
}

// Backend 实现Scorer接口
func (s *LexiconScorer) Backend() Backend {
	return BackendLocal
}

// Score 逐句计算极性，>0计入积极，<0计入消极，0不计入
// 两类句子总数为0时返回(0,0)
func (s *LexiconScorer) Score(ctx context.Context, text string) (Result, error) {
	var positive, negative int
	for _, sentence := range s.splitter.Split(text) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		switch score := s.model.Polarity(sentence); {
		case score > 0:
			positive++
		case score < 0:
			negative++
		}
	}

	result := Result{Backend: BackendLocal}
	total := positive + negative
	if total > 0 {
		result.Positive = round2(100 * float64(positive) / float64(total))
		result.Negative = round2(100 * float64(negative) / float64(total))
	}

	s.logger.WithFields(logrus.Fields{
		"positive_sentences": positive,
		"negative_sentences": negative,
	}).Debug("Local sentiment scored")

	return result, nil
}
