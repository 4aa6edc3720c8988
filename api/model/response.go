package model

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// SentimentResponse 情感分析响应
type SentimentResponse struct {
	ID         string  `json:"id"`          // 分析ID
	Mode       string  `json:"mode"`        // 输入方式：text、url、pdf
	Backend    string  `json:"backend"`     // 实际产生结果的评分后端
	Positive   float64 `json:"positive"`    // 积极百分比
	Negative   float64 `json:"negative"`    // 消极百分比
	TextLength int     `json:"text_length"` // 参与评分的文本长度
	Report     string  `json:"report"`      // Markdown格式的报告
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`    // 服务状态
	Backend   string `json:"backend"`   // 当前评分后端
	Timestamp string `json:"timestamp"` // 检查时间
}
