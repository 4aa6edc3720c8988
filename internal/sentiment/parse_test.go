package sentiment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseReply 测试自由文本回复的解析
func TestParseReply(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		positive float64
		negative float64
	}{
		{"exact format", "Positive: 72%, Negative: 28%", 72, 28},
		{"decimals", "Positive: 64.5%, Negative: 35.5%", 64.5, 35.5},
		{"surrounding prose", "Sure! Here is the result.\nPositive: 10%\nNegative: 85%\nHope this helps.", 10, 85},
		{"reversed order", "Negative: 40%, Positive: 60%", 60, 40},
		{"spaces before percent", "Positive: 55 %, Negative: 45 %", 55, 45},
		{"not normalized", "Positive: 30%, Negative: 30%", 30, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseReply(tt.reply)
			require.NoError(t, err)
			assert.Equal(t, tt.positive, result.Positive)
			assert.Equal(t, tt.negative, result.Negative)
		})
	}
}

// TestParseReplyErrors 测试无法解析的回复
func TestParseReplyErrors(t *testing.T) {
	tests := []struct {
		name   string
		reply  string
		field  string
		reason string
	}{
		{"missing negative marker", "Positive: 72%", "Negative", "marker not found"},
		{"missing positive marker", "Negative: 28%", "Positive", "marker not found"},
		{"lowercase markers", "positive: 72%, negative: 28%", "Positive", "marker not found"},
		{"missing percent", "Positive: 72, Negative: 28", "Positive", "missing % terminator"},
		{"non numeric", "Positive: high%, Negative: 28%", "Positive", "value is not numeric"},
		{"out of range", "Positive: 120%, Negative: 28%", "Positive", "value out of range [0,100]"},
		{"empty reply", "", "Positive", "marker not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReply(tt.reply)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.field, parseErr.Field)
			assert.Equal(t, tt.reason, parseErr.Reason)
			assert.Equal(t, tt.reply, parseErr.Reply)
		})
	}
}

// TestParseStructuredReply 测试JSON回复的解析与校验
func TestParseStructuredReply(t *testing.T) {
	result, err := ParseStructuredReply(`{"positive": 72, "negative": 28}`)
	require.NoError(t, err)
	assert.Equal(t, 72.0, result.Positive)
	assert.Equal(t, 28.0, result.Negative)

	// 代码块包裹
	result, err = ParseStructuredReply("```json\n{\"positive\": 12.5, \"negative\": 80}\n```")
	require.NoError(t, err)
	assert.Equal(t, 12.5, result.Positive)
	assert.Equal(t, 80.0, result.Negative)

	// 多余字段允许存在
	result, err = ParseStructuredReply(`{"positive": 50, "negative": 20, "neutral": 30}`)
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.Positive)
}

// TestParseStructuredReplySchemaMismatch 测试不符合Schema的回复
func TestParseStructuredReplySchemaMismatch(t *testing.T) {
	replies := []string{
		`Positive: 72%, Negative: 28%`,
		`{"positive": 72}`,
		`{"positive": "72", "negative": 28}`,
		`{"positive": 72, "negative": -1}`,
		`{"positive": 172, "negative": 28}`,
		`[72, 28]`,
	}

	for _, reply := range replies {
		_, err := ParseStructuredReply(reply)
		require.Error(t, err, reply)

		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr), reply)
	}
}
