package sentiment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fyerfyer/doc-sentiment/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestRemoteScorer 测试远程评分的提示词和解析
func TestRemoteScorer(t *testing.T) {
	mockClient := llm.NewMockClient(t)
	text := "The service was slow, but the food was excellent."

	mockClient.EXPECT().
		Generate(mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return strings.HasPrefix(prompt, "Analyze the sentiment of the following text") &&
				strings.Contains(prompt, "Positive: X%, Negative: Y%") &&
				strings.HasSuffix(prompt, "\n\n"+text)
		})).
		Return(&llm.Response{Text: "Positive: 72%, Negative: 28%", ModelName: "mock-model"}, nil)

	scorer := NewRemoteScorer(mockClient)
	assert.Equal(t, BackendRemote, scorer.Backend())

	result, err := scorer.Score(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, 72.0, result.Positive)
	assert.Equal(t, 28.0, result.Negative)
	assert.Equal(t, BackendRemote, result.Backend)
}

// TestRemoteScorerParseError 测试无法解析的回复直接失败
func TestRemoteScorerParseError(t *testing.T) {
	mockClient := llm.NewMockClient(t)
	mockClient.EXPECT().
		Generate(mock.Anything, mock.Anything).
		Return(&llm.Response{Text: "The text is mostly positive."}, nil)

	_, err := NewRemoteScorer(mockClient).Score(context.Background(), "I like it.")
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

// TestRemoteScorerClientError 测试模型调用失败
func TestRemoteScorerClientError(t *testing.T) {
	mockClient := llm.NewMockClient(t)
	mockClient.EXPECT().
		Generate(mock.Anything, mock.Anything).
		Return(nil, llm.NewLLMError(llm.ErrCodeInvalidAPIKey, llm.ErrMsgInvalidAPIKey))

	_, err := NewRemoteScorer(mockClient).Score(context.Background(), "I like it.")
	require.Error(t, err)

	var llmErr llm.LLMError
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, llm.ErrCodeInvalidAPIKey, llmErr.Code)
}

// TestRemoteScorerStructured 测试结构化回复模式
func TestRemoteScorerStructured(t *testing.T) {
	t.Run("valid reply", func(t *testing.T) {
		mockClient := llm.NewMockClient(t)
		mockClient.EXPECT().
			Generate(mock.Anything, mock.MatchedBy(func(prompt string) bool {
				return strings.Contains(prompt, `{"positive": <number>, "negative": <number>}`)
			}), mock.Anything).
			RunAndReturn(func(_ context.Context, _ string, options ...llm.GenerateOption) (*llm.Response, error) {
				opts := &llm.GenerateOptions{}
				for _, opt := range options {
					opt(opts)
				}
				assert.True(t, opts.JSONMode)
				return &llm.Response{Text: `{"positive": 64, "negative": 36}`}, nil
			})

		result, err := NewRemoteScorer(mockClient, WithStructuredReply()).Score(context.Background(), "Nice.")
		require.NoError(t, err)
		assert.Equal(t, 64.0, result.Positive)
		assert.Equal(t, 36.0, result.Negative)
	})

	t.Run("schema mismatch fails closed", func(t *testing.T) {
		mockClient := llm.NewMockClient(t)
		mockClient.EXPECT().
			Generate(mock.Anything, mock.Anything, mock.Anything).
			Return(&llm.Response{Text: "Positive: 64%, Negative: 36%"}, nil)

		_, err := NewRemoteScorer(mockClient, WithStructuredReply()).Score(context.Background(), "Nice.")
		require.Error(t, err)

		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
	})
}

// TestRemoteScorerCustomTemplate 测试自定义提示词模板
func TestRemoteScorerCustomTemplate(t *testing.T) {
	mockClient := llm.NewMockClient(t)
	mockClient.EXPECT().
		Generate(mock.Anything, "Rate: hello").
		Return(&llm.Response{Text: "Positive: 1%, Negative: 2%"}, nil)

	result, err := NewRemoteScorer(mockClient, WithPromptTemplate("Rate: {{.Text}}")).
		Score(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Positive)
	assert.Equal(t, 2.0, result.Negative)
}
