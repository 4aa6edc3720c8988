package document

import (
	"strings"
	"unicode/utf8"
)

// NormalizeText 统一换行符并替换非法UTF-8序列
// 不改变段落结构，也不裁剪内容
func NormalizeText(text string) string {
	if strings.Contains(text, "\r") {
		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")
	}
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}
	return text
}

// IsBlank 判断文本是否只包含空白字符
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
