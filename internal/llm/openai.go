package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient 基于OpenAI兼容接口的大模型客户端
// OpenAI、Groq和通义千问兼容模式共用该实现，只有端点和默认模型不同
type OpenAIClient struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// newCompatibleClient 使用提供商默认值创建客户端
func newCompatibleClient(defaultBaseURL, defaultModel string, opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	// 密钥缺失时不在此处报错，首次调用时由服务端返回401
	apiCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	apiCfg.BaseURL = baseURL
	apiCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIClient{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
	}, nil
}

// NewOpenAIClient 创建OpenAI客户端
func NewOpenAIClient(opts ...Option) (Client, error) {
	return newCompatibleClient(OpenAIBaseURL, ModelGPT4oMini, opts...)
}

// NewGroqClient 创建Groq客户端
func NewGroqClient(opts ...Option) (Client, error) {
	return newCompatibleClient(GroqBaseURL, ModelLlama3_70B, opts...)
}

// NewTongyiClient 通过兼容模式创建通义千问客户端
func NewTongyiClient(opts ...Option) (Client, error) {
	return newCompatibleClient(TongyiBaseURL, ModelQwenTurbo, opts...)
}

// Name 返回模型名称
func (c *OpenAIClient) Name() string {
	return c.model
}

// Generate 发送单次补全请求，不做任何重试
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, NewLLMError(ErrCodeEmptyPrompt, ErrMsgEmptyPrompt)
	}

	opts := &GenerateOptions{}
	for _, opt := range options {
		opt(opts)
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if opts.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: opts.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}
	if opts.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, WrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, NewLLMError(ErrCodeServerError, ErrMsgEmptyResponse)
	}

	choice := resp.Choices[0]
	modelName := resp.Model
	if modelName == "" {
		modelName = c.model
	}

	return &Response{
		Text:         strings.TrimSpace(choice.Message.Content),
		TokenCount:   resp.Usage.TotalTokens,
		ModelName:    modelName,
		FinishReason: string(choice.FinishReason),
		FinishTime:   time.Now(),
	}, nil
}

// 在包初始化时注册OpenAI兼容客户端
func init() {
	RegisterClient(ProviderOpenAI, NewOpenAIClient)
	RegisterClient(ProviderGroq, NewGroqClient)
	RegisterClient(ProviderTongyi, NewTongyiClient)
}
