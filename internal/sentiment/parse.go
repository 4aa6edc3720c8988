package sentiment

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	positiveMarker = "Positive: "
	negativeMarker = "Negative: "
)

// ParseReply 从模型的自由文本回复中读取两个百分比
// 分别定位"Positive: "和"Negative: "，读取其后以%结尾的数值
func ParseReply(reply string) (Result, error) {
	positive, err := readPercent(reply, positiveMarker)
	if err != nil {
		return Result{}, err
	}
	negative, err := readPercent(reply, negativeMarker)
	if err != nil {
		return Result{}, err
	}
	return Result{Positive: positive, Negative: negative}, nil
}

func readPercent(reply, marker string) (float64, error) {
	field := strings.TrimSuffix(marker, ": ")

	idx := strings.Index(reply, marker)
	if idx < 0 {
		return 0, &ParseError{Reply: reply, Field: field, Reason: "marker not found"}
	}

	rest := reply[idx+len(marker):]
	end := strings.Index(rest, "%")
	if end < 0 {
		return 0, &ParseError{Reply: reply, Field: field, Reason: "missing % terminator"}
	}

	token := strings.TrimSpace(rest[:end])
	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, &ParseError{Reply: reply, Field: field, Reason: "value is not numeric", Err: err}
	}
	if !inPercentRange(value) {
		return 0, &ParseError{Reply: reply, Field: field, Reason: "value out of range [0,100]"}
	}
	return value, nil
}

// replySchemaJSON 结构化回复的JSON Schema
const replySchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["positive", "negative"],
  "properties": {
    "positive": {"type": "number", "minimum": 0, "maximum": 100},
    "negative": {"type": "number", "minimum": 0, "maximum": 100}
  }
}`

var replySchema = jsonschema.MustCompileString("sentiment-reply.json", replySchemaJSON)

// ParseStructuredReply 解析并校验JSON格式的模型回复
// 任何不符合Schema的回复都返回ParseError
func ParseStructuredReply(reply string) (Result, error) {
	body := stripCodeFence(reply)

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return Result{}, &ParseError{Reply: reply, Field: "json", Reason: "reply is not valid JSON", Err: err}
	}
	if err := replySchema.Validate(doc); err != nil {
		field := "json"
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := ve
			for len(leaf.Causes) > 0 {
				leaf = leaf.Causes[0]
			}
			if leaf.InstanceLocation != "" {
				field = strings.TrimPrefix(leaf.InstanceLocation, "/")
			}
		}
		return Result{}, &ParseError{Reply: reply, Field: field, Reason: "reply does not match schema", Err: err}
	}

	var out struct {
		Positive float64 `json:"positive"`
		Negative float64 `json:"negative"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return Result{}, &ParseError{Reply: reply, Field: "json", Reason: "decode reply", Err: err}
	}
	return Result{Positive: out.Positive, Negative: out.Negative}, nil
}

// stripCodeFence 去掉模型偶尔包裹的```json代码块
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
