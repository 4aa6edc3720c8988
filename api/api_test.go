package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fyerfyer/doc-sentiment/api/handler"
	"github.com/fyerfyer/doc-sentiment/api/model"
	"github.com/fyerfyer/doc-sentiment/internal/llm"
	"github.com/fyerfyer/doc-sentiment/internal/sentiment"
	"github.com/fyerfyer/doc-sentiment/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// countingScorer 记录调用次数的评分器
type countingScorer struct {
	result sentiment.Result
	err    error
	texts  []string
}

func (s *countingScorer) Backend() sentiment.Backend { return sentiment.BackendLocal }

func (s *countingScorer) Score(_ context.Context, text string) (sentiment.Result, error) {
	s.texts = append(s.texts, text)
	return s.result, s.err
}

// 测试环境配置
type testEnv struct {
	Router *gin.Engine
	Scorer *countingScorer
}

// setupTestEnv 创建测试环境
func setupTestEnv(t *testing.T, scorer sentiment.Scorer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := services.NewAnalysisService(scorer)
	const maxUpload = 1 << 20
	return SetupRouter(
		handler.NewSentimentHandler(service, string(scorer.Backend()), maxUpload),
		handler.NewWebHandler(service, maxUpload),
		RouterOptions{MaxUploadBytes: maxUpload},
	)
}

func newEnv(t *testing.T) testEnv {
	scorer := &countingScorer{result: sentiment.Result{Positive: 66.67, Negative: 33.33, Backend: sentiment.BackendLocal}}
	return testEnv{Router: setupTestEnv(t, scorer), Scorer: scorer}
}

func postJSON(router *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// postFile 以multipart方式上传文件，data为nil时不附带file字段
func postFile(t *testing.T, router *gin.Engine, path string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if data != nil {
		part, err := writer.CreateFormFile("file", "doc.pdf")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, writer.WriteField("note", "no file"))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) (model.Response, model.SentimentResponse) {
	t.Helper()

	var raw struct {
		model.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))

	var data model.SentimentResponse
	if len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, &data))
	}
	return raw.Response, data
}

func buildPDF(t *testing.T, text string) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()
	pdf.MultiCell(0, 10, text, "", "", false)

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

// TestHealth 测试健康检查
func TestHealth(t *testing.T) {
	env := newEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"backend":"local"`)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

// TestAnalyzeTextAPI 测试文本分析接口
func TestAnalyzeTextAPI(t *testing.T) {
	env := newEnv(t)

	w := postJSON(env.Router, "/api/sentiment/text", `{"text":"I love it. I hate waiting."}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp, data := decodeResponse(t, w)
	assert.Equal(t, 0, resp.Code)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, "text", data.Mode)
	assert.Equal(t, "local", data.Backend)
	assert.Equal(t, 66.67, data.Positive)
	assert.Equal(t, 33.33, data.Negative)
	assert.Contains(t, data.Report, "Positive Percentage: 66.67%")
	assert.Equal(t, []string{"I love it. I hate waiting."}, env.Scorer.texts)
}

// TestMissingInputAPI 测试缺少输入时返回提示且不调用评分器
func TestMissingInputAPI(t *testing.T) {
	env := newEnv(t)

	tests := []struct {
		name    string
		do      func() *httptest.ResponseRecorder
		message string
	}{
		{"empty text", func() *httptest.ResponseRecorder {
			return postJSON(env.Router, "/api/sentiment/text", `{"text":""}`)
		}, "Please enter some text."},
		{"blank text", func() *httptest.ResponseRecorder {
			return postJSON(env.Router, "/api/sentiment/text", `{"text":"   "}`)
		}, "Please enter some text."},
		{"empty body", func() *httptest.ResponseRecorder {
			return postJSON(env.Router, "/api/sentiment/text", ``)
		}, "Please enter some text."},
		{"empty url", func() *httptest.ResponseRecorder {
			return postJSON(env.Router, "/api/sentiment/url", `{"url":""}`)
		}, "Please enter a URL."},
		{"blank url", func() *httptest.ResponseRecorder {
			return postJSON(env.Router, "/api/sentiment/url", `{"url":"  "}`)
		}, "Please enter a URL."},
		{"no file", func() *httptest.ResponseRecorder {
			return postFile(t, env.Router, "/api/sentiment/pdf", nil)
		}, "Please upload a PDF file."},
		{"empty file", func() *httptest.ResponseRecorder {
			return postFile(t, env.Router, "/api/sentiment/pdf", []byte{})
		}, "Please upload a PDF file."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.do()
			assert.Equal(t, http.StatusBadRequest, w.Code)

			resp, _ := decodeResponse(t, w)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, tt.message, resp.Message)
		})
	}

	assert.Empty(t, env.Scorer.texts)
}

// TestInvalidURLAPI 测试格式错误的URL
func TestInvalidURLAPI(t *testing.T) {
	env := newEnv(t)

	w := postJSON(env.Router, "/api/sentiment/url", `{"url":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp, _ := decodeResponse(t, w)
	assert.Equal(t, "Please enter a valid URL.", resp.Message)
	assert.Empty(t, env.Scorer.texts)
}

// TestAnalyzeURLAPI 测试网页分析接口
func TestAnalyzeURLAPI(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><p>A</p><p>B</p></body></html>")
	}))
	defer page.Close()

	env := newEnv(t)

	w := postJSON(env.Router, "/api/sentiment/url", fmt.Sprintf(`{"url":%q}`, page.URL+"/article"))
	require.Equal(t, http.StatusOK, w.Code)
	_, data := decodeResponse(t, w)
	assert.Equal(t, "url", data.Mode)
	assert.Equal(t, []string{"A\nB"}, env.Scorer.texts)

	// 非2xx状态码
	w = postJSON(env.Router, "/api/sentiment/url", fmt.Sprintf(`{"url":%q}`, page.URL+"/missing"))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp, _ := decodeResponse(t, w)
	assert.Equal(t, "The page returned HTTP status 404.", resp.Message)
	assert.Len(t, env.Scorer.texts, 1)
}

// TestAnalyzePDFAPI 测试PDF分析接口
func TestAnalyzePDFAPI(t *testing.T) {
	env := newEnv(t)

	w := postFile(t, env.Router, "/api/sentiment/pdf", buildPDF(t, "What a wonderful report."))
	require.Equal(t, http.StatusOK, w.Code)
	_, data := decodeResponse(t, w)
	assert.Equal(t, "pdf", data.Mode)
	require.Len(t, env.Scorer.texts, 1)
	assert.Contains(t, env.Scorer.texts[0], "wonderful report")

	// 不是PDF
	w = postFile(t, env.Router, "/api/sentiment/pdf", []byte("plain text, not a pdf"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Len(t, env.Scorer.texts, 1)
}

// TestPDFTooLarge 测试上传大小限制
func TestPDFTooLarge(t *testing.T) {
	env := newEnv(t)

	t.Run("declared length over limit", func(t *testing.T) {
		data := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 2<<20)...)
		w := postFile(t, env.Router, "/api/sentiment/pdf", data)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

		resp, _ := decodeResponse(t, w)
		assert.Equal(t, "The PDF file exceeds the 1 MB upload limit.", resp.Message)
	})

	t.Run("file just over limit", func(t *testing.T) {
		data := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 1<<20)...)
		w := postFile(t, env.Router, "/api/sentiment/pdf", data)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("unknown length stops reading", func(t *testing.T) {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", "doc.pdf")
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte("x"), 2<<20))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		// 隐藏长度，只能依靠读取上限
		req := httptest.NewRequest(http.MethodPost, "/api/sentiment/pdf", io.MultiReader(&body))
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		env.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	assert.Empty(t, env.Scorer.texts)
}

// TestScorerErrorsAPI 测试评分错误的状态码
func TestScorerErrorsAPI(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"parse error", &sentiment.ParseError{Field: "Negative", Reason: "marker not found"}, http.StatusBadGateway},
		{"invalid key", llm.NewLLMError(llm.ErrCodeInvalidAPIKey, llm.ErrMsgInvalidAPIKey), http.StatusBadGateway},
		{"timeout", llm.NewLLMError(llm.ErrCodeTimeout, llm.ErrMsgTimeout), http.StatusGatewayTimeout},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestEnv(t, &countingScorer{err: tt.err})
			w := postJSON(router, "/api/sentiment/text", `{"text":"hello"}`)
			assert.Equal(t, tt.status, w.Code)

			resp, _ := decodeResponse(t, w)
			assert.Equal(t, tt.status, resp.Code)
			assert.NotEmpty(t, resp.TraceID)
		})
	}
}

// TestRemoteScorerEndToEnd 通过mock模型走完整的远程评分链路
func TestRemoteScorerEndToEnd(t *testing.T) {
	mockClient := llm.NewMockClient(t)
	mockClient.EXPECT().
		Generate(mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return strings.HasSuffix(prompt, "The food was great.")
		})).
		Return(&llm.Response{Text: "Positive: 90%, Negative: 10%"}, nil)

	router := setupTestEnv(t, sentiment.NewRemoteScorer(mockClient))

	w := postJSON(router, "/api/sentiment/text", `{"text":"The food was great."}`)
	require.Equal(t, http.StatusOK, w.Code)

	_, data := decodeResponse(t, w)
	assert.Equal(t, "remote", data.Backend)
	assert.Equal(t, 90.0, data.Positive)
	assert.Equal(t, 10.0, data.Negative)
}

// TestWebUI 测试HTML表单
func TestWebUI(t *testing.T) {
	env := newEnv(t)

	t.Run("index", func(t *testing.T) {
		for _, mode := range []string{"", "text", "url", "pdf", "bogus"} {
			req := httptest.NewRequest(http.MethodGet, "/?mode="+mode, nil)
			w := httptest.NewRecorder()
			env.Router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Body.String(), "<h1>Sentiment Analysis</h1>")
		}

		req := httptest.NewRequest(http.MethodGet, "/?mode=pdf", nil)
		w := httptest.NewRecorder()
		env.Router.ServeHTTP(w, req)
		assert.Contains(t, w.Body.String(), "(up to 1 MB)")
	})

	t.Run("text form", func(t *testing.T) {
		w := postForm(env.Router, "/analyze/text", url.Values{"text": {"I love it."}})
		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Positive Percentage: 66.67%")
		assert.Contains(t, body, "Negative Percentage: 33.33%")
		assert.Contains(t, body, "I love it.")
	})

	t.Run("missing inputs", func(t *testing.T) {
		before := len(env.Scorer.texts)

		w := postForm(env.Router, "/analyze/text", url.Values{"text": {""}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Please enter some text.")

		w = postForm(env.Router, "/analyze/url", url.Values{"url": {""}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Please enter a URL.")

		w = postFile(t, env.Router, "/analyze/pdf", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Please upload a PDF file.")

		assert.NotContains(t, w.Body.String(), "Positive Percentage")
		assert.Len(t, env.Scorer.texts, before)
	})

	t.Run("pdf form", func(t *testing.T) {
		w := postFile(t, env.Router, "/analyze/pdf", buildPDF(t, "Lovely day."))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Positive Percentage")
	})
}
