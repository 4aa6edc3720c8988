package llm

import "time"

// Response 统一的响应结构
type Response struct {
	Text         string    // 生成的文本
	TokenCount   int       // 使用的token数
	ModelName    string    // 使用的模型名称
	FinishReason string    // 结束原因
	FinishTime   time.Time // 完成时间
}

// 提供商名称
const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderTongyi = "tongyi"
)

// 提供商默认端点
const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GroqBaseURL   = "https://api.groq.com/openai/v1"
	TongyiBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1" // 通义千问OpenAI兼容模式
)

// Model 常用模型名称
const (
	ModelGPT4oMini   = "gpt-4o-mini"             // OpenAI默认模型
	ModelLlama3_70B  = "llama3-70b-8192"         // Groq默认模型
	ModelLlama33_70B = "llama-3.3-70b-versatile" // Groq替代模型
	ModelQwenTurbo   = "qwen-turbo"              // 通义千问默认模型
)

// APIKeyEnv 返回提供商对应的API密钥环境变量名
func APIKeyEnv(provider string) string {
	switch provider {
	case ProviderGroq:
		return "GROQ_API_KEY"
	case ProviderTongyi:
		return "TONGYI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}
