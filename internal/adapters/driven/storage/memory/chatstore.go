package memory

import (
	"context"

	"github.com/docqa-labs/docqa-cli/internal/core/domain"
	"github.com/docqa-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure ChatStore implements the interface.
var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore is an in-memory implementation of driven.ChatStore.
// It shares the document store's state so message deletion cascades with
// the owning document.
type ChatStore struct {
	docs *DocumentStore
}

// NewChatStore creates a chat store backed by the given document store.
func NewChatStore(docs *DocumentStore) *ChatStore {
	return &ChatStore{docs: docs}
}

// SaveMessage stores a chat message.
func (s *ChatStore) SaveMessage(_ context.Context, msg *domain.ChatMessage) error {
	return s.docs.saveMessage(*msg)
}

// ListMessages returns a session's messages in creation order.
func (s *ChatStore) ListMessages(_ context.Context, sessionID string) ([]domain.ChatMessage, error) {
	return s.docs.listMessages(sessionID), nil
}
