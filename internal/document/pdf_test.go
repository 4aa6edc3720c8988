package document

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF 用gofpdf生成测试PDF，空字符串表示该页不写入任何文字
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	for _, text := range pages {
		pdf.AddPage()
		if text == "" {
			// 只画一个矩形，保证页面有内容流但没有文字
			pdf.Rect(20, 20, 40, 40, "D")
			continue
		}
		pdf.MultiCell(0, 10, text, "", "", false)
	}

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func TestPDFExtractor(t *testing.T) {
	extractor := NewPDFExtractor(nil)
	ctx := context.Background()

	t.Run("single page", func(t *testing.T) {
		data := buildPDF(t, "This is a PDF test.")

		text, err := extractor.Extract(ctx, data)
		require.NoError(t, err)
		assert.Contains(t, text, "PDF test")
	})

	t.Run("page order without separator", func(t *testing.T) {
		data := buildPDF(t, "First page here.", "", "Third page here.")

		text, err := extractor.Extract(ctx, data)
		require.NoError(t, err)

		first := strings.Index(text, "First page")
		third := strings.Index(text, "Third page")
		require.NotEqual(t, -1, first)
		require.NotEqual(t, -1, third)
		assert.Less(t, first, third)
		assert.NotContains(t, text, "---")
	})

	t.Run("page without text", func(t *testing.T) {
		data := buildPDF(t, "")

		text, err := extractor.Extract(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, "", text)
	})
}

func TestPDFExtractorInvalidInput(t *testing.T) {
	extractor := NewPDFExtractor(nil)
	ctx := context.Background()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"plain text", []byte("definitely not a pdf")},
		{"truncated", []byte("%PDF-1.4\n1 0 obj\n<<")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractor.Extract(ctx, tt.data)
			require.Error(t, err)

			var extErr *ExtractionError
			assert.ErrorAs(t, err, &extErr)
			assert.Equal(t, SourcePDF, extErr.Source)
		})
	}
}

func TestPDFExtractorCancelled(t *testing.T) {
	extractor := NewPDFExtractor(nil)
	data := buildPDF(t, "Cancelled before the first page.")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extractor.Extract(ctx, data)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7 ...")))
	assert.False(t, IsPDF([]byte("<html>")))
	assert.False(t, IsPDF(nil))
}
