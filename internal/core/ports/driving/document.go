package driving

import (
	"context"

	"github.com/docqa-labs/docqa-cli/internal/core/domain"
)

// DocumentService manages the document lifecycle.
//
// Upload validates synchronously and dispatches processing as an
// independent unit of work; callers receive the PENDING record immediately
// and must poll status rather than assume synchronous completion.
type DocumentService interface {
	// Upload accepts a new document and schedules its processing.
	// Returns ErrInvalidInput for empty uploads and ErrUnsupportedType
	// for unrecognised content types.
	Upload(ctx context.Context, fileName, mimeType string, data []byte) (*domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all documents.
	List(ctx context.Context) ([]domain.Document, error)

	// ListByType returns documents of one type.
	ListByType(ctx context.Context, t domain.DocumentType) ([]domain.Document, error)

	// GetContent returns the raw stored bytes and MIME type of a document.
	GetContent(ctx context.Context, id string) ([]byte, string, error)

	// Delete removes a document, its stored bytes, chunks and chat messages.
	Delete(ctx context.Context, id string) error
}
