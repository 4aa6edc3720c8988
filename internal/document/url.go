package document

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

// URLConfig 网页抓取配置
type URLConfig struct {
	Timeout            time.Duration // 单次请求超时
	MaxBytes           int64         // 响应体最大读取字节数，0表示不限制
	UserAgent          string        // User-Agent请求头
	InsecureSkipVerify bool          // 跳过TLS证书校验
}

// DefaultURLConfig 返回默认抓取配置
func DefaultURLConfig() URLConfig {
	return URLConfig{
		Timeout:   30 * time.Second,
		MaxBytes:  10 << 20,
		UserAgent: "doc-sentiment/1.0",
	}
}

// URLExtractor 抓取网页并提取所有<p>元素的文本
type URLExtractor struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
	logger    *logrus.Logger
}

// NewURLExtractor 创建网页提取器
func NewURLExtractor(cfg URLConfig, logger *logrus.Logger) *URLExtractor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultURLConfig().Timeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &URLExtractor{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		maxBytes:  cfg.MaxBytes,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Extract 发起一次GET请求并返回按换行拼接的段落文本
// 页面中没有<p>元素时返回空字符串
func (u *URLExtractor) Extract(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", parsed.Scheme)}
	}
	if parsed.Host == "" {
		return "", &FetchError{URL: rawURL, Err: errors.New("missing host")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	if u.userAgent != "" {
		req.Header.Set("User-Agent", u.userAgent)
	}

	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if u.maxBytes > 0 {
		body = io.LimitReader(resp.Body, u.maxBytes)
	}

	// 按Content-Type或<meta>声明的编码转为UTF-8
	body, err = charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("failed to decode page: %w", err)}
	}

	text, err := ExtractParagraphs(body)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	u.logger.WithFields(logrus.Fields{
		"url":        rawURL,
		"status":     resp.StatusCode,
		"latency":    time.Since(start).String(),
		"text_bytes": len(text),
	}).Debug("URL text extracted")

	return text, nil
}

// ExtractParagraphs 解析HTML并按文档顺序收集<p>元素文本
func ExtractParagraphs(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	paragraphs := make([]string, 0)
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		paragraphs = append(paragraphs, s.Text())
	})

	return strings.Join(paragraphs, "\n"), nil
}
