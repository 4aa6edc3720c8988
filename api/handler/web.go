package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/fyerfyer/doc-sentiment/api/middleware"
	"github.com/fyerfyer/doc-sentiment/api/model"
	"github.com/fyerfyer/doc-sentiment/internal/report"
	"github.com/fyerfyer/doc-sentiment/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageData 页面渲染数据
type pageData struct {
	Mode      services.Mode
	Text      string
	URL       string
	Error     string
	Report    template.HTML
	MaxUpload string
}

// WebHandler 处理三种输入方式的HTML表单
type WebHandler struct {
	analyzer       Analyzer
	maxUploadBytes int64
	logger         *logrus.Logger
}

// NewWebHandler 创建页面处理器
func NewWebHandler(analyzer Analyzer, maxUploadBytes int64) *WebHandler {
	return &WebHandler{
		analyzer:       analyzer,
		maxUploadBytes: maxUploadBytes,
		logger:         middleware.GetLogger(),
	}
}

// Index 渲染输入页面
// GET /
func (h *WebHandler) Index(c *gin.Context) {
	mode := services.Mode(c.DefaultQuery("mode", string(services.ModeText)))
	switch mode {
	case services.ModeText, services.ModeURL, services.ModePDF:
	default:
		mode = services.ModeText
	}
	h.render(c, http.StatusOK, h.page(mode))
}

// SubmitText 提交文本表单
// POST /analyze/text
func (h *WebHandler) SubmitText(c *gin.Context) {
	data := h.page(services.ModeText)

	var req model.TextRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderError(c, data, bindError(err, services.ModeText))
		return
	}
	data.Text = req.Text

	analysis, err := h.analyzer.AnalyzeText(c.Request.Context(), req.Text)
	h.renderResult(c, data, analysis, err)
}

// SubmitURL 提交网页表单
// POST /analyze/url
func (h *WebHandler) SubmitURL(c *gin.Context) {
	data := h.page(services.ModeURL)
	data.URL = c.PostForm("url")

	var req model.URLRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderError(c, data, bindError(err, services.ModeURL))
		return
	}

	analysis, err := h.analyzer.AnalyzeURL(c.Request.Context(), req.URL)
	h.renderResult(c, data, analysis, err)
}

// SubmitPDF 提交PDF上传表单
// POST /analyze/pdf
func (h *WebHandler) SubmitPDF(c *gin.Context) {
	data := h.page(services.ModePDF)

	pdf, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		h.renderError(c, data, err)
		return
	}

	analysis, err := h.analyzer.AnalyzePDF(c.Request.Context(), pdf)
	h.renderResult(c, data, analysis, err)
}

func (h *WebHandler) page(mode services.Mode) pageData {
	data := pageData{Mode: mode}
	if h.maxUploadBytes > 0 {
		data.MaxUpload = formatSize(h.maxUploadBytes)
	}
	return data
}

func (h *WebHandler) renderResult(c *gin.Context, data pageData, analysis *services.Analysis, err error) {
	if err != nil {
		h.renderError(c, data, err)
		return
	}
	data.Report = template.HTML(report.HTML(analysis.Result)) //nolint:gosec
	h.render(c, http.StatusOK, data)
}

func (h *WebHandler) renderError(c *gin.Context, data pageData, err error) {
	appErr := classifyError(err)
	h.logger.WithFields(logrus.Fields{
		"error_type":            appErr.Type,
		"error_cause":           appErr.Details,
		middleware.FieldTraceID: middleware.GetTraceID(c),
		middleware.FieldPath:    c.Request.URL.Path,
	}).Warn(appErr.Message)

	data.Error = appErr.Message
	h.render(c, appErr.Code, data)
}

func (h *WebHandler) render(c *gin.Context, status int, data pageData) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(c.Writer, data); err != nil {
		h.logger.WithError(err).Error("Failed to render page")
	}
}
