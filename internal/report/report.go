package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fyerfyer/doc-sentiment/internal/sentiment"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Title 报告标题
const Title = "Sentiment Analysis"

// Percent 格式化百分比，去掉多余的小数位
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// Lines 返回两行百分比文本
func Lines(result sentiment.Result) []string {
	return []string{
		"Positive Percentage: " + Percent(result.Positive),
		"Negative Percentage: " + Percent(result.Negative),
	}
}

// Markdown 生成Markdown格式的报告
func Markdown(result sentiment.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", Title)
	for _, line := range Lines(result) {
		b.WriteString(line)
		b.WriteString("\n\n")
	}
	if result.Backend != "" {
		fmt.Fprintf(&b, "_Scored by the %s backend._\n", result.Backend)
	}
	return b.String()
}

// HTML 把报告渲染为HTML片段
func HTML(result sentiment.Result) string {
	// 解析器不可复用，每次渲染新建
	mdParser := parser.NewWithExtensions(parser.CommonExtensions)
	doc := mdParser.Parse([]byte(Markdown(result)))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.Render(doc, renderer))
}
