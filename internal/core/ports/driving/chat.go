package driving

import (
	"context"

	"github.com/docqa-labs/docqa-cli/internal/core/domain"
)

// ChatService answers questions against a single processed document.
type ChatService interface {
	// Chat retrieves relevant chunks for the question, generates an
	// answer grounded in them, and records the exchange.
	// Returns ErrNotFound for unknown documents and ErrNotReady for
	// documents still PENDING or PROCESSING.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// History returns a session's recorded exchanges in creation order.
	History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}

// ChatRequest is one question against one document.
type ChatRequest struct {
	// DocumentID identifies the target document.
	DocumentID string

	// SessionID groups the exchange into a conversation.
	// A new session is created when empty.
	SessionID string

	// Message is the user's question.
	Message string
}

// ChatResponse is the generated answer with its citations.
type ChatResponse struct {
	// SessionID is the conversation the exchange was recorded under.
	SessionID string

	// Answer is the generated response text.
	Answer string

	// Citations are timestamp references into the source document.
	// Empty for PDF documents.
	Citations []domain.Citation
}
