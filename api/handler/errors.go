package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/fyerfyer/doc-sentiment/api/middleware"
	"github.com/fyerfyer/doc-sentiment/internal/document"
	"github.com/fyerfyer/doc-sentiment/internal/llm"
	"github.com/fyerfyer/doc-sentiment/internal/sentiment"
	"github.com/fyerfyer/doc-sentiment/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// classifyError 把服务层错误转换为带HTTP状态码的AppError
func classifyError(err error) middleware.AppError {
	var appErr middleware.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var missing *services.MissingInputError
	if errors.As(err, &missing) {
		return middleware.NewValidationError(missing.Error())
	}

	var extractErr *document.ExtractionError
	if errors.As(err, &extractErr) {
		return middleware.NewUnprocessableError("Could not read the PDF file: "+extractErr.Reason+".", err.Error())
	}

	var fetchErr *document.FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.StatusCode != 0 {
			return middleware.NewUpstreamError(fmt.Sprintf("The page returned HTTP status %d.", fetchErr.StatusCode), err.Error())
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return middleware.NewTimeoutError("Timed out while fetching the page.", err.Error())
		}
		return middleware.NewUpstreamError("Could not fetch the page.", err.Error())
	}

	var parseErr *sentiment.ParseError
	if errors.As(err, &parseErr) {
		return middleware.NewUpstreamError("The sentiment model returned a reply that could not be understood.", err.Error())
	}

	var llmErr llm.LLMError
	if errors.As(err, &llmErr) {
		if llmErr.Code == llm.ErrCodeTimeout {
			return middleware.NewTimeoutError("The sentiment model did not respond in time.", err.Error())
		}
		return middleware.NewUpstreamError("The sentiment model request failed: "+llmErr.Message+".", err.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return middleware.NewTimeoutError("The request timed out.", err.Error())
	}

	return middleware.NewInternalError("Internal server error", err.Error())
}

// bindError 把请求绑定错误转换为面向用户的提示
// required失败或字段只含空白时返回对应方式的缺少输入提示
func bindError(err error, mode services.Mode) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if errors.Is(err, io.EOF) {
			return &services.MissingInputError{Mode: mode}
		}
		return middleware.NewValidationError("Invalid request body.", err.Error())
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" || isBlankValue(fe.Value()) {
			return &services.MissingInputError{Mode: mode}
		}
		if fe.Tag() == "url" {
			return middleware.NewValidationError("Please enter a valid URL.", fe.Error())
		}
	}
	return middleware.NewValidationError("Invalid request.", err.Error())
}

func isBlankValue(v interface{}) bool {
	s, ok := v.(string)
	return ok && document.IsBlank(s)
}

// multipartOverhead 请求体中除文件内容外的表单开销上限
const multipartOverhead = 64 << 10

// readUpload 读取multipart表单中的file字段
// 没有文件或文件为空时返回MissingInputError
// 请求体在解析前按上限截断，超出时不再写入临时文件
func readUpload(c *gin.Context, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 {
		limit := maxBytes + multipartOverhead
		if c.Request.ContentLength > limit {
			return nil, uploadTooLarge(maxBytes)
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, uploadTooLarge(maxBytes)
		}
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, &services.MissingInputError{Mode: services.ModePDF}
		}
		return nil, middleware.NewValidationError("Invalid file upload.", err.Error())
	}
	if header.Size == 0 {
		return nil, &services.MissingInputError{Mode: services.ModePDF}
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, uploadTooLarge(maxBytes)
	}

	return readFileHeader(header)
}

func uploadTooLarge(maxBytes int64) middleware.AppError {
	return middleware.NewTooLargeError(fmt.Sprintf("The PDF file exceeds the %s upload limit.", formatSize(maxBytes)))
}

// formatSize 把字节数格式化为MB、KB或字节
func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, middleware.NewInternalError("Could not open the uploaded file.", err.Error())
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, middleware.NewInternalError("Could not read the uploaded file.", err.Error())
	}
	return data, nil
}
