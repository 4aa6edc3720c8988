package sentiment

import "fmt"

// ParseError 模型回复无法解析为两个百分比
type ParseError struct {
	Reply  string // 原始回复
	Field  string // 出错的字段
	Reason string // 失败原因
	Err    error  // 底层错误
}

// Error 实现error接口
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse model reply: %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse model reply: %s: %s", e.Field, e.Reason)
}

// Unwrap 返回底层错误
func (e *ParseError) Unwrap() error {
	return e.Err
}
