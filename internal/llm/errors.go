package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// LLMError 大模型调用错误类型
type LLMError struct {
	Code    int    // 错误码
	Message string // 错误消息
}

// Error 实现error接口
func (e LLMError) Error() string {
	return fmt.Sprintf("llm error (code=%d): %s", e.Code, e.Message)
}

// 错误码常量
const (
	ErrCodeInvalidAPIKey  = 1001 // 无效的API密钥
	ErrCodeInvalidRequest = 1002 // 无效的请求
	ErrCodeNetworkError   = 1003 // 网络连接错误
	ErrCodeRateLimited    = 1004 // 请求频率超限
	ErrCodeServerError    = 1005 // 服务器错误
	ErrCodeTimeout        = 1006 // 请求超时
	ErrCodeEmptyPrompt    = 1007 // 提示词为空
	ErrCodeContextTooLong = 1010 // 上下文过长
)

// 错误消息常量
const (
	ErrMsgInvalidAPIKey  = "invalid API key"
	ErrMsgRateLimited    = "too many requests, rate limit exceeded"
	ErrMsgTimeout        = "request timed out"
	ErrMsgEmptyPrompt    = "prompt cannot be empty"
	ErrMsgEmptyResponse  = "empty response from API"
	ErrMsgContextTooLong = "context length exceeds model's maximum"
)

// NewLLMError 创建新的大模型错误
func NewLLMError(code int, message string) LLMError {
	return LLMError{
		Code:    code,
		Message: message,
	}
}

// WrapError 把go-openai返回的错误转换为LLMError
func WrapError(err error) LLMError {
	if err == nil {
		return LLMError{Code: ErrCodeServerError, Message: "unknown error"}
	}

	var llmErr LLMError
	if errors.As(err, &llmErr) {
		return llmErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return LLMError{Code: codeForStatus(apiErr.HTTPStatusCode, apiErr.Code), Message: apiErr.Message}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return LLMError{Code: ErrCodeTimeout, Message: ErrMsgTimeout}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return LLMError{Code: codeForStatus(reqErr.HTTPStatusCode, nil), Message: reqErr.Error()}
	}

	return LLMError{Code: ErrCodeNetworkError, Message: err.Error()}
}

// codeForStatus 根据HTTP状态码映射错误码
func codeForStatus(status int, apiCode any) int {
	if code, ok := apiCode.(string); ok && code == "context_length_exceeded" {
		return ErrCodeContextTooLong
	}

	switch {
	case status == 0:
		return ErrCodeNetworkError
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrCodeInvalidAPIKey
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case status == http.StatusRequestEntityTooLarge:
		return ErrCodeContextTooLong
	case status >= 400 && status < 500:
		return ErrCodeInvalidRequest
	default:
		return ErrCodeServerError
	}
}
