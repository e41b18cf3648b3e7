// Package extract converts uploaded documents to plain text for the AI
// extraction adapter. docconv does the heavy lifting across formats; the
// PDF page count comes from a dedicated reader since docconv does not
// expose it.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"github.com/tochi-dev/medisync/internal/core"
)

var _ core.TextExtractor = (*DocconvExtractor)(nil)

type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

// ExtractText returns the document's plain text and, for PDFs, its page
// count. An empty extraction is an error: a report with no text can never
// produce a usable record downstream.
func (e *DocconvExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (string, int, error) {
	res, err := docconv.Convert(bytes.NewReader(data), contentType, e.useReadability)
	if err != nil {
		return "", 0, fmt.Errorf("docconv %s: %w", contentType, err)
	}
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	text := strings.TrimSpace(res.Body)
	if text == "" {
		return "", 0, fmt.Errorf("no text extracted from %s document", contentType)
	}

	pages := 0
	if contentType == "application/pdf" {
		pages = pdfPageCount(data)
	}

	return text, pages, nil
}

func pdfPageCount(data []byte) int {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Warn().Err(err).Msg("pdf page count unavailable")
		return 0
	}
	return reader.NumPage()
}
