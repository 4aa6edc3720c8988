package sentiment

import (
	"context"
	"math"
)

// Backend 评分后端名称
type Backend string

const (
	// BackendRemote 调用大模型评分
	BackendRemote Backend = "remote"
	// BackendLocal 本地词典逐句评分
	BackendLocal Backend = "local"
)

// Result 一次评分的结果
// Positive和Negative均为[0,100]区间内的百分比
type Result struct {
	Positive float64 `json:"positive"`          // 积极百分比
	Negative float64 `json:"negative"`          // 消极百分比
	Backend  Backend `json:"backend,omitempty"` // 实际产生结果的后端
}

// Scorer 把纯文本转换为积极/消极百分比
type Scorer interface {
	Score(ctx context.Context, text string) (Result, error)
	Backend() Backend
}

// round2 四舍五入保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// inPercentRange 判断数值是否为合法百分比
func inPercentRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 100
}
