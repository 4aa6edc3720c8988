package services

// MissingInputError 提交时没有提供对应方式的输入
type MissingInputError struct {
	Mode Mode
}

// Error 返回面向用户的提示
func (e *MissingInputError) Error() string {
	switch e.Mode {
	case ModeURL:
		return "Please enter a URL."
	case ModePDF:
		return "Please upload a PDF file."
	default:
		return "Please enter some text."
	}
}
