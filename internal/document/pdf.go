package document

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
)

// PDFExtractor PDF文本提取器
// 先用pdfcpu校验文件结构，再逐页提取文本
type PDFExtractor struct {
	conf   *model.Configuration
	logger *logrus.Logger
}

// NewPDFExtractor 创建一个新的PDF提取器
func NewPDFExtractor(logger *logrus.Logger) *PDFExtractor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &PDFExtractor{
		conf:   conf,
		logger: logger,
	}
}

// Extract 按页序拼接每页的文本，页与页之间不插入分隔符
// 没有文本的页面不贡献任何内容
func (p *PDFExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ExtractionError{Source: SourcePDF, Reason: "empty document"}
	}

	if !IsPDF(data) {
		return "", &ExtractionError{Source: SourcePDF, Reason: "not a PDF document", Err: errNotPDF}
	}

	if err := api.Validate(bytes.NewReader(data), p.conf); err != nil {
		return "", &ExtractionError{Source: SourcePDF, Reason: "invalid PDF container", Err: err}
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Source: SourcePDF, Reason: "failed to open PDF", Err: err}
	}

	numPages := reader.NumPage()
	var text strings.Builder
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			// 单页失败按空页处理
			p.logger.WithFields(logrus.Fields{
				"page":  i,
				"error": err.Error(),
			}).Debug("Skipping PDF page without extractable text")
			continue
		}
		if content == "" {
			continue
		}
		text.WriteString(content)
	}

	p.logger.WithFields(logrus.Fields{
		"pages":      numPages,
		"text_bytes": text.Len(),
	}).Debug("PDF text extracted")

	return text.String(), nil
}

// IsPDF 通过文件头判断数据是否像PDF
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// errNotPDF 非PDF文件头
var errNotPDF = errors.New("missing %PDF- header")
