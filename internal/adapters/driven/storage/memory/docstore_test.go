package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docqa-labs/docqa-cli/internal/core/domain"
)

func storedDocument(id string, uploadedAt time.Time) *domain.Document {
	return &domain.Document{
		ID:         id,
		FileName:   id + ".pdf",
		Locator:    "blob-" + id,
		MIMEType:   "application/pdf",
		Type:       domain.TypePDF,
		Status:     domain.StatusPending,
		UploadedAt: uploadedAt,
	}
}

func TestDocumentStore_Documents(t *testing.T) {
	ctx := context.Background()

	t.Run("save and get round trip", func(t *testing.T) {
		store := NewDocumentStore()
		doc := storedDocument("doc-1", time.Now().UTC())

		require.NoError(t, store.SaveDocument(ctx, doc))

		got, err := store.GetDocument(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, doc.FileName, got.FileName)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		store := NewDocumentStore()
		require.NoError(t, store.SaveDocument(ctx, storedDocument("doc-1", time.Now().UTC())))

		got, err := store.GetDocument(ctx, "doc-1")
		require.NoError(t, err)
		got.Status = domain.StatusFailed

		again, err := store.GetDocument(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, again.Status)
	})

	t.Run("get missing document", func(t *testing.T) {
		store := NewDocumentStore()

		_, err := store.GetDocument(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		store := NewDocumentStore()
		now := time.Now().UTC()

		require.NoError(t, store.SaveDocument(ctx, storedDocument("older", now.Add(-time.Hour))))
		require.NoError(t, store.SaveDocument(ctx, storedDocument("newer", now)))

		docs, err := store.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "newer", docs[0].ID)
		assert.Equal(t, "older", docs[1].ID)
	})

	t.Run("list by type filters", func(t *testing.T) {
		store := NewDocumentStore()
		pdf := storedDocument("doc-pdf", time.Now().UTC())
		audio := storedDocument("doc-audio", time.Now().UTC())
		audio.Type = domain.TypeAudio

		require.NoError(t, store.SaveDocument(ctx, pdf))
		require.NoError(t, store.SaveDocument(ctx, audio))

		docs, err := store.ListDocumentsByType(ctx, domain.TypeAudio)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "doc-audio", docs[0].ID)
	})
}

func TestDocumentStore_Chunks(t *testing.T) {
	ctx := context.Background()

	t.Run("chunks sorted by index", func(t *testing.T) {
		store := NewDocumentStore()
		require.NoError(t, store.SaveDocument(ctx, storedDocument("doc-1", time.Now().UTC())))

		chunks := []domain.Chunk{
			{ID: "c-1", DocumentID: "doc-1", Index: 1, Content: "second"},
			{ID: "c-0", DocumentID: "doc-1", Index: 0, Content: "first"},
		}
		require.NoError(t, store.SaveChunks(ctx, chunks))

		got, err := store.GetChunks(ctx, "doc-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "first", got[0].Content)
		assert.Equal(t, "second", got[1].Content)
	})

	t.Run("get chunk by id", func(t *testing.T) {
		store := NewDocumentStore()
		require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
			{ID: "c-0", DocumentID: "doc-1", Index: 0, Content: "body"},
		}))

		got, err := store.GetChunk(ctx, "c-0")
		require.NoError(t, err)
		assert.Equal(t, "body", got.Content)

		_, err = store.GetChunk(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty save is a no-op", func(t *testing.T) {
		store := NewDocumentStore()
		require.NoError(t, store.SaveChunks(ctx, nil))
	})
}

func TestDocumentStore_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()
	chats := NewChatStore(store)

	require.NoError(t, store.SaveDocument(ctx, storedDocument("doc-1", time.Now().UTC())))
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "c-0", DocumentID: "doc-1", Index: 0, Content: "body"},
	}))
	require.NoError(t, chats.SaveMessage(ctx, &domain.ChatMessage{
		ID: "m-1", SessionID: "s-1", DocumentID: "doc-1",
		Query: "q", Answer: "a", CreatedAt: time.Now().UTC(),
	}))

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	_, err := store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	msgs, err := chats.ListMessages(ctx, "s-1")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	assert.ErrorIs(t, store.DeleteDocument(ctx, "doc-1"), domain.ErrNotFound)
}

func TestChatStore_Messages(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()
	chats := NewChatStore(store)

	require.NoError(t, store.SaveDocument(ctx, storedDocument("doc-1", time.Now().UTC())))

	base := time.Now().UTC()
	require.NoError(t, chats.SaveMessage(ctx, &domain.ChatMessage{
		ID: "m-2", SessionID: "s-1", DocumentID: "doc-1",
		Query: "second", Answer: "a", CreatedAt: base.Add(time.Second),
	}))
	require.NoError(t, chats.SaveMessage(ctx, &domain.ChatMessage{
		ID: "m-1", SessionID: "s-1", DocumentID: "doc-1",
		Query: "first", Answer: "a", CreatedAt: base,
	}))

	msgs, err := chats.ListMessages(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Query)
	assert.Equal(t, "second", msgs[1].Query)

	t.Run("message for unknown document", func(t *testing.T) {
		err := chats.SaveMessage(ctx, &domain.ChatMessage{
			ID: "m-3", SessionID: "s-1", DocumentID: "ghost",
			Query: "q", Answer: "a", CreatedAt: base,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
