package document

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHTMLServer(t *testing.T, status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtractParagraphs(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{"two paragraphs", "<html><body><p>A</p><p>B</p></body></html>", "A\nB"},
		{"no paragraphs", "<html><body><div>only a div</div></body></html>", ""},
		{"nested markup", "<p>Hello <b>bold</b> world</p><div><p>inner</p></div>", "Hello bold world\ninner"},
		{"ignores other text", "<h1>Title</h1><p>Body</p><footer>foot</footer>", "Body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractParagraphs(strings.NewReader(tt.html))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, text)
		})
	}
}

func TestURLExtractor(t *testing.T) {
	srv := newHTMLServer(t, http.StatusOK, "<html><body><p>A</p><p>B</p></body></html>")

	extractor := NewURLExtractor(DefaultURLConfig(), nil)
	text, err := extractor.Extract(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "A\nB", text)
}

// TestURLExtractorCharset 测试非UTF-8页面按声明的编码解码
func TestURLExtractorCharset(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"header charset", "text/html; charset=iso-8859-1", "<p>Caf\xe9 tr\xe8s bon</p>"},
		{"meta charset", "text/html", "<html><head><meta charset=\"windows-1252\"></head><body><p>Caf\xe9 tr\xe8s bon</p></body></html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			text, err := NewURLExtractor(DefaultURLConfig(), nil).Extract(context.Background(), srv.URL)
			require.NoError(t, err)
			assert.Equal(t, "Café très bon", text)
		})
	}
}

func TestURLExtractorUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		_, _ = w.Write([]byte("<p>ok</p>"))
	}))
	defer srv.Close()

	cfg := DefaultURLConfig()
	cfg.UserAgent = "sentiment-test"
	_, err := NewURLExtractor(cfg, nil).Extract(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "sentiment-test", gotUA)
}

func TestURLExtractorMaxBytes(t *testing.T) {
	srv := newHTMLServer(t, http.StatusOK, "<p>kept</p><p>"+strings.Repeat("x", 1024)+"</p>")

	cfg := DefaultURLConfig()
	cfg.MaxBytes = 11
	text, err := NewURLExtractor(cfg, nil).Extract(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "kept", text)
}

func TestURLExtractorErrors(t *testing.T) {
	extractor := NewURLExtractor(DefaultURLConfig(), nil)
	ctx := context.Background()

	t.Run("non-success status", func(t *testing.T) {
		srv := newHTMLServer(t, http.StatusNotFound, "<p>missing</p>")

		_, err := extractor.Extract(ctx, srv.URL)
		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := extractor.Extract(ctx, "ftp://example.com/file")
		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Zero(t, fetchErr.StatusCode)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		_, err := extractor.Extract(ctx, addr)
		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		cfg := DefaultURLConfig()
		cfg.Timeout = 50 * time.Millisecond
		_, err := NewURLExtractor(cfg, nil).Extract(ctx, srv.URL)

		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
	})
}
