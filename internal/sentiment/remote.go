package sentiment

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyerfyer/doc-sentiment/internal/llm"
	"github.com/sirupsen/logrus"
)

// DefaultPromptTemplate 自由文本模式的提示词模板
// 变量：{{.Text}} - 待分析文本，原样嵌入
const DefaultPromptTemplate = `Analyze the sentiment of the following text and provide positive and negative percentages.
Answer in exactly this format: Positive: X%, Negative: Y%

{{.Text}}`

// StructuredPromptTemplate 结构化模式的提示词模板
const StructuredPromptTemplate = `Analyze the sentiment of the following text and provide positive and negative percentages.
Respond with a single JSON object of the form {"positive": <number>, "negative": <number>} where both numbers are percentages between 0 and 100. Do not include any other text.

{{.Text}}`

// RemoteScorer 调用大模型对整段文本评分
type RemoteScorer struct {
	client     llm.Client
	template   string
	structured bool
	logger     *logrus.Logger
}

// RemoteOption 远程评分器配置选项
type RemoteOption func(*RemoteScorer)

// WithPromptTemplate 设置自定义提示词模板
func WithPromptTemplate(template string) RemoteOption {
	return func(s *RemoteScorer) {
		if template != "" {
			s.template = template
		}
	}
}

// WithStructuredReply 要求模型返回JSON并按Schema校验
func WithStructuredReply() RemoteOption {
	return func(s *RemoteScorer) {
		s.structured = true
		if s.template == DefaultPromptTemplate {
			s.template = StructuredPromptTemplate
		}
	}
}

// WithRemoteLogger 设置日志记录器
func WithRemoteLogger(logger *logrus.Logger) RemoteOption {
	return func(s *RemoteScorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewRemoteScorer 创建远程评分器
func NewRemoteScorer(client llm.Client, opts ...RemoteOption) *RemoteScorer {
	s := &RemoteScorer{
		client:   client,
		template: DefaultPromptTemplate,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend 实现Scorer接口
func (s *RemoteScorer) Backend() Backend {
	return BackendRemote
}

// Score 发送一次补全请求并解析回复中的两个百分比
// 文本长度不做限制，超出模型上下文时由服务端返回错误
func (s *RemoteScorer) Score(ctx context.Context, text string) (Result, error) {
	prompt := s.buildPrompt(text)

	var options []llm.GenerateOption
	if s.structured {
		options = append(options, llm.WithJSONMode())
	}

	resp, err := s.client.Generate(ctx, prompt, options...)
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate sentiment: %w", err)
	}

	var result Result
	if s.structured {
		result, err = ParseStructuredReply(resp.Text)
	} else {
		result, err = ParseReply(resp.Text)
	}
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"model":      resp.ModelName,
			"structured": s.structured,
			"error":      err.Error(),
		}).Warn("Model reply could not be parsed")
		return Result{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"model":    resp.ModelName,
		"tokens":   resp.TokenCount,
		"positive": result.Positive,
		"negative": result.Negative,
	}).Debug("Remote sentiment scored")

	result.Backend = BackendRemote
	return result, nil
}

// buildPrompt 用简单的模板替换嵌入文本
func (s *RemoteScorer) buildPrompt(text string) string {
	return strings.ReplaceAll(s.template, "{{.Text}}", text)
}
