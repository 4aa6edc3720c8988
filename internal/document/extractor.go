package document

import (
	"context"
	"fmt"
)

// SourceType 表示输入来源的类型
type SourceType string

const (
	// SourcePDF 上传的PDF文件
	SourcePDF SourceType = "pdf"
	// SourceURL 网页地址
	SourceURL SourceType = "url"
)

// BytesExtractor 从内存中的原始字节提取纯文本
type BytesExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// URLFetcher 抓取URL并提取纯文本
type URLFetcher interface {
	Extract(ctx context.Context, rawURL string) (string, error)
}

// ExtractionError 文档无法被解析时返回的错误
type ExtractionError struct {
	Source SourceType // 来源类型
	Reason string     // 失败原因
	Err    error      // 底层错误
}

// Error 实现error接口
func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s extraction failed: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s extraction failed: %s", e.Source, e.Reason)
}

// Unwrap 返回底层错误
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// FetchError URL抓取失败（网络错误或非2xx状态码）
type FetchError struct {
	URL        string // 请求地址
	StatusCode int    // HTTP状态码，网络错误时为0
	Err        error  // 底层错误
}

// Error 实现error接口
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap 返回底层错误
func (e *FetchError) Unwrap() error {
	return e.Err
}
