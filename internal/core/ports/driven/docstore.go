package driven

import (
	"context"

	"github.com/docqa-labs/docqa-cli/internal/core/domain"
)

// DocumentStore persists documents and chunks.
// Backed by SQLite for durable storage, or the in-memory store for tests.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// ListDocumentsByType returns documents of one type, newest first.
	ListDocumentsByType(ctx context.Context, t domain.DocumentType) ([]domain.Document, error)

	// DeleteDocument removes a document, its chunks and its chat messages.
	DeleteDocument(ctx context.Context, id string) error

	// SaveChunks stores chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunks retrieves a document's chunks ordered by chunk index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)
}

// ChatStore persists chat message audit records.
type ChatStore interface {
	// SaveMessage stores a chat message.
	SaveMessage(ctx context.Context, msg *domain.ChatMessage) error

	// ListMessages returns a session's messages in creation order.
	ListMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}
