package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/fyerfyer/doc-sentiment/api/middleware"
	"github.com/fyerfyer/doc-sentiment/api/model"
	"github.com/fyerfyer/doc-sentiment/internal/report"
	"github.com/fyerfyer/doc-sentiment/internal/services"
	"github.com/gin-gonic/gin"
)

// Analyzer 处理器依赖的分析能力
type Analyzer interface {
	AnalyzeText(ctx context.Context, text string) (*services.Analysis, error)
	AnalyzeURL(ctx context.Context, rawURL string) (*services.Analysis, error)
	AnalyzePDF(ctx context.Context, data []byte) (*services.Analysis, error)
}

// SentimentHandler 处理情感分析JSON接口
type SentimentHandler struct {
	analyzer       Analyzer // 分析服务
	backend        string   // 配置的评分后端，用于健康检查
	maxUploadBytes int64    // 上传文件上限
}

// NewSentimentHandler 创建情感分析处理器
func NewSentimentHandler(analyzer Analyzer, backend string, maxUploadBytes int64) *SentimentHandler {
	return &SentimentHandler{
		analyzer:       analyzer,
		backend:        backend,
		maxUploadBytes: maxUploadBytes,
	}
}

// AnalyzeText 分析JSON请求中的文本
// POST /api/sentiment/text
func (h *SentimentHandler) AnalyzeText(c *gin.Context) {
	var req model.TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err, services.ModeText))
		return
	}

	analysis, err := h.analyzer.AnalyzeText(c.Request.Context(), req.Text)
	h.respond(c, analysis, err)
}

// AnalyzeURL 抓取JSON请求中的网页并分析
// POST /api/sentiment/url
func (h *SentimentHandler) AnalyzeURL(c *gin.Context) {
	var req model.URLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err, services.ModeURL))
		return
	}

	analysis, err := h.analyzer.AnalyzeURL(c.Request.Context(), req.URL)
	h.respond(c, analysis, err)
}

// AnalyzePDF 分析上传的PDF文件
// POST /api/sentiment/pdf
func (h *SentimentHandler) AnalyzePDF(c *gin.Context) {
	data, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		h.fail(c, err)
		return
	}

	analysis, err := h.analyzer.AnalyzePDF(c.Request.Context(), data)
	h.respond(c, analysis, err)
}

// Health 健康检查
// GET /api/health
func (h *SentimentHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.NewSuccessResponse(model.HealthResponse{
		Status:    "ok",
		Backend:   h.backend,
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

func (h *SentimentHandler) respond(c *gin.Context, analysis *services.Analysis, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := model.NewSuccessResponse(toSentimentResponse(analysis))
	resp.TraceID = middleware.GetTraceID(c)
	c.JSON(http.StatusOK, resp)
}

// fail 登记错误，由ErrorHandler中间件统一输出
func (h *SentimentHandler) fail(c *gin.Context, err error) {
	middleware.HandleError(c, classifyError(err))
}

func toSentimentResponse(a *services.Analysis) model.SentimentResponse {
	return model.SentimentResponse{
		ID:         a.ID,
		Mode:       string(a.Mode),
		Backend:    string(a.Backend),
		Positive:   a.Result.Positive,
		Negative:   a.Result.Negative,
		TextLength: a.TextLength,
		Report:     report.Markdown(a.Result),
	}
}
