// Package pdf extracts paginated text content from PDF documents.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/docqa-labs/docqa-cli/internal/chunker"
	"github.com/docqa-labs/docqa-cli/internal/core/domain"
	"github.com/docqa-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor produces page-positioned chunks from PDF bytes.
// Each page's text is split independently, so a chunk's page number always
// refers to a single page.
type Extractor struct {
	reader   driven.PDFReader
	splitter *chunker.Splitter
}

// New creates a PDF extractor. A nil splitter uses the default chunk size.
func New(reader driven.PDFReader, splitter *chunker.Splitter) *Extractor {
	if splitter == nil {
		splitter = chunker.New()
	}
	return &Extractor{reader: reader, splitter: splitter}
}

// SupportedTypes returns the document types this extractor handles.
func (e *Extractor) SupportedTypes() []domain.DocumentType {
	return []domain.DocumentType{domain.TypePDF}
}

// Extract iterates pages in order, skipping pages with no extractable text.
// Chunk indices form a single counter across all pages.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document, data []byte) ([]domain.Chunk, error) {
	pages, err := e.reader.PageCount(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: page count: %w", domain.ErrExtraction, err)
	}

	var chunks []domain.Chunk
	for page := 1; page <= pages; page++ {
		text, err := e.reader.ExtractPage(ctx, data, page)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", domain.ErrExtraction, page, err)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			// Empty pages contribute zero chunks, not empty chunks
			continue
		}

		pageNumber := page
		for _, piece := range e.splitter.Split(text) {
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				Index:      len(chunks),
				Content:    piece,
				PageNumber: &pageNumber,
			})
		}
	}

	return chunks, nil
}
