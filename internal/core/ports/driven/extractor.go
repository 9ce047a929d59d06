package driven

import (
	"context"

	"github.com/docqa-labs/docqa-cli/internal/core/domain"
)

// Extractor turns a document's raw bytes into ordered, positioned chunks.
// Each extractor handles a closed set of document types; the lifecycle
// orchestrator dispatches through an explicit table, not open subclassing.
type Extractor interface {
	// SupportedTypes returns the document types this extractor handles.
	SupportedTypes() []domain.DocumentType

	// Extract produces the document's chunks in index order.
	// Chunk indices start at 0 and are contiguous across the whole
	// document. Extraction failures are wrapped into ErrExtraction or
	// ErrTranscription, never swallowed.
	Extract(ctx context.Context, doc *domain.Document, data []byte) ([]domain.Chunk, error)
}
