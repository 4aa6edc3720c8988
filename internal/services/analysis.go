package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fyerfyer/doc-sentiment/internal/document"
	"github.com/fyerfyer/doc-sentiment/internal/sentiment"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Mode 输入方式
type Mode string

const (
	ModeText Mode = "text" // 直接粘贴文本
	ModeURL  Mode = "url"  // 网页地址
	ModePDF  Mode = "pdf"  // 上传PDF
)

// Request 一次分析请求，按Mode只读取对应字段
type Request struct {
	Mode Mode
	Text string
	URL  string
	PDF  []byte
}

// Analysis 一次分析的结果
type Analysis struct {
	ID         string            `json:"id"`          // 分析ID
	Mode       Mode              `json:"mode"`        // 输入方式
	Backend    sentiment.Backend `json:"backend"`     // 实际产生结果的评分后端
	Result     sentiment.Result  `json:"result"`      // 百分比结果
	TextLength int               `json:"text_length"` // 参与评分的文本长度（字节）
	Duration   time.Duration     `json:"-"`           // 耗时
}

// AnalysisService 情感分析服务
// 负责选择输入方式、提取文本并调用评分器
type AnalysisService struct {
	scorer sentiment.Scorer        // 评分器
	pdf    document.BytesExtractor // PDF提取器
	web    document.URLFetcher     // 网页提取器
	logger *logrus.Logger          // 日志记录器
}

// AnalysisOption 分析服务配置选项
type AnalysisOption func(*AnalysisService)

// WithAnalysisLogger 设置日志记录器
func WithAnalysisLogger(logger *logrus.Logger) AnalysisOption {
	return func(s *AnalysisService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPDFExtractor 设置PDF提取器
func WithPDFExtractor(extractor document.BytesExtractor) AnalysisOption {
	return func(s *AnalysisService) {
		s.pdf = extractor
	}
}

// WithURLFetcher 设置网页提取器
func WithURLFetcher(fetcher document.URLFetcher) AnalysisOption {
	return func(s *AnalysisService) {
		s.web = fetcher
	}
}

// NewAnalysisService 创建分析服务实例
// 未指定提取器时使用默认的PDF和网页提取器
func NewAnalysisService(scorer sentiment.Scorer, opts ...AnalysisOption) *AnalysisService {
	service := &AnalysisService{
		scorer: scorer,
		logger: logrus.New(),
	}

	for _, opt := range opts {
		opt(service)
	}

	if service.pdf == nil {
		service.pdf = document.NewPDFExtractor(service.logger)
	}
	if service.web == nil {
		service.web = document.NewURLExtractor(document.DefaultURLConfig(), service.logger)
	}

	return service
}

// Analyze 按请求的输入方式分派
func (s *AnalysisService) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	switch req.Mode {
	case ModeText:
		return s.AnalyzeText(ctx, req.Text)
	case ModeURL:
		return s.AnalyzeURL(ctx, req.URL)
	case ModePDF:
		return s.AnalyzePDF(ctx, req.PDF)
	default:
		return nil, fmt.Errorf("unsupported input mode: %q", req.Mode)
	}
}

// AnalyzeText 对粘贴的文本评分
func (s *AnalysisService) AnalyzeText(ctx context.Context, text string) (*Analysis, error) {
	if document.IsBlank(text) {
		return nil, &MissingInputError{Mode: ModeText}
	}
	return s.score(ctx, ModeText, document.NormalizeText(text))
}

// AnalyzeURL 抓取网页段落后评分
func (s *AnalysisService) AnalyzeURL(ctx context.Context, rawURL string) (*Analysis, error) {
	if document.IsBlank(rawURL) {
		return nil, &MissingInputError{Mode: ModeURL}
	}

	text, err := s.web.Extract(ctx, rawURL)
	if err != nil {
		s.logger.WithError(err).WithField("url", rawURL).Warn("Failed to extract URL text")
		return nil, err
	}
	return s.score(ctx, ModeURL, document.NormalizeText(text))
}

// AnalyzePDF 提取PDF文本后评分
func (s *AnalysisService) AnalyzePDF(ctx context.Context, data []byte) (*Analysis, error) {
	if len(data) == 0 {
		return nil, &MissingInputError{Mode: ModePDF}
	}

	text, err := s.pdf.Extract(ctx, data)
	if err != nil {
		s.logger.WithError(err).WithField("size", len(data)).Warn("Failed to extract PDF text")
		return nil, err
	}
	return s.score(ctx, ModePDF, document.NormalizeText(text))
}

// score 调用评分器并组装结果
// 提取出的文本为空时仍然评分，与页面没有段落时的行为一致
func (s *AnalysisService) score(ctx context.Context, mode Mode, text string) (*Analysis, error) {
	start := time.Now()

	result, err := s.scorer.Score(ctx, text)
	if err != nil {
		s.logger.WithError(err).WithField("mode", mode).Error("Sentiment scoring failed")
		return nil, err
	}

	backend := result.Backend
	if backend == "" {
		backend = s.scorer.Backend()
	}

	analysis := &Analysis{
		ID:         uuid.New().String(),
		Mode:       mode,
		Backend:    backend,
		Result:     result,
		TextLength: len(text),
		Duration:   time.Since(start),
	}

	s.logger.WithFields(logrus.Fields{
		"analysis_id": analysis.ID,
		"mode":        mode,
		"backend":     backend,
		"text_bytes":  analysis.TextLength,
		"positive":    result.Positive,
		"negative":    result.Negative,
		"duration":    analysis.Duration.String(),
	}).Info("Sentiment analysis completed")

	return analysis, nil
}
