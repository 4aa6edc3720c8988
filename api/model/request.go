package model

// TextRequest 文本分析请求
type TextRequest struct {
	Text string `form:"text" json:"text" binding:"required"` // 待分析文本
}

// URLRequest 网页分析请求
type URLRequest struct {
	URL string `form:"url" json:"url" binding:"required,url"` // 网页地址
}
