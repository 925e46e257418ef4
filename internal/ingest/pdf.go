package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// ExtractPDF extracts text from a PDF into page-level strings. Whitespace
// is normalized and each page is prefixed with its number; pages yielding
// no text are skipped. The chunker refines the text further downstream.
func ExtractPDF(ctx context.Context, path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("pdf not found: %s: %w", path, err)
	}
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	logger := logutil.GetLogger(ctx).With(zap.String("path", path))
	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("page extraction failed", zap.Int("page", i), zap.Error(err))
			continue
		}
		text = normalizeWhitespace(text)
		if text == "" {
			continue
		}
		pages = append(pages, fmt.Sprintf("[PAGE %d] %s", i, text))
	}
	logger.Info("pdf extracted", zap.Int("pages", len(pages)))
	return pages, nil
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
