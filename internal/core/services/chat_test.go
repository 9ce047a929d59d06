package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docqa-labs/docqa-cli/internal/adapters/driven/storage/memory"
	"github.com/docqa-labs/docqa-cli/internal/core/domain"
	"github.com/docqa-labs/docqa-cli/internal/core/ports/driven"
	"github.com/docqa-labs/docqa-cli/internal/core/ports/driving"
)

// --- Mock implementations for chat testing ---
// Note: These are prefixed with "chat" to avoid conflicts with other test files

// chatMockLLM implements driven.LLMService for testing.
type chatMockLLM struct {
	answer  string
	err     error
	prompts []string
}

func (m *chatMockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *chatMockLLM) ModelName() string            { return "mock-llm" }
func (m *chatMockLLM) Ping(_ context.Context) error { return nil }
func (m *chatMockLLM) Close() error                 { return nil }

func chatFixture(t *testing.T, doc domain.Document, chunks []domain.Chunk) (*memory.DocumentStore, *memory.ChatStore) {
	t.Helper()

	store := memory.NewDocumentStore()
	require.NoError(t, store.SaveDocument(context.Background(), &doc))
	if len(chunks) > 0 {
		for i := range chunks {
			chunks[i].DocumentID = doc.ID
		}
		require.NoError(t, store.SaveChunks(context.Background(), chunks))
	}
	return store, memory.NewChatStore(store)
}

func completedPDF(id string) domain.Document {
	return domain.Document{
		ID:       id,
		FileName: "report.pdf",
		Type:     domain.TypePDF,
		Status:   domain.StatusCompleted,
	}
}

func completedAudio(id string) domain.Document {
	return domain.Document{
		ID:       id,
		FileName: "talk.mp3",
		Type:     domain.TypeAudio,
		Status:   domain.StatusCompleted,
	}
}

func timedChunk(index int, start, end float64, content string) domain.Chunk {
	return domain.Chunk{
		ID:        fmt.Sprintf("tc-%d", index),
		Index:     index,
		Content:   content,
		StartTime: &start,
		EndTime:   &end,
	}
}

func pagedChunk(index, page int, content string) domain.Chunk {
	return domain.Chunk{
		ID:         fmt.Sprintf("pc-%d", index),
		Index:      index,
		Content:    content,
		PageNumber: &page,
	}
}

func TestChatService_Chat(t *testing.T) {
	t.Run("rejects blank message", func(t *testing.T) {
		store, chats := chatFixture(t, completedPDF("doc-1"), nil)
		svc := NewChatService(store, chats, NewVectorSearch(store, nil), nil)

		_, err := svc.Chat(context.Background(), driving.ChatRequest{DocumentID: "doc-1", Message: "   "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown document", func(t *testing.T) {
		store, chats := chatFixture(t, completedPDF("doc-1"), nil)
		svc := NewChatService(store, chats, NewVectorSearch(store, nil), nil)

		_, err := svc.Chat(context.Background(), driving.ChatRequest{DocumentID: "nope", Message: "hello"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("pending and processing documents are not ready", func(t *testing.T) {
		for _, status := range []domain.ProcessingStatus{domain.StatusPending, domain.StatusProcessing} {
			doc := completedPDF("doc-" + string(status))
			doc.Status = status
			store, chats := chatFixture(t, doc, nil)
			svc := NewChatService(store, chats, NewVectorSearch(store, nil), nil)

			_, err := svc.Chat(context.Background(), driving.ChatRequest{DocumentID: doc.ID, Message: "hello"})
			assert.ErrorIs(t, err, domain.ErrNotReady, "status %s", status)
		}
	})

	t.Run("generates session id when absent", func(t *testing.T) {
		store, chats := chatFixture(t, completedPDF("doc-1"), []domain.Chunk{pagedChunk(0, 1, "Revenue grew.")})
		svc := NewChatService(store, chats, NewVectorSearch(store, nil), nil)

		resp, err := svc.Chat(context.Background(), driving.ChatRequest{DocumentID: "doc-1", Message: "What about revenue?"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.SessionID)
	})

	t.Run("reuses supplied session id and records history", func(t *testing.T) {
		store, chats := chatFixture(t, completedPDF("doc-1"), []domain.Chunk{pagedChunk(0, 1, "Revenue grew.")})
		svc := NewChatService(store, chats, NewVectorSearch(store, nil), nil)

		for _, q := range []string{"What about revenue?", "And profit?"} {
			resp, err := svc.Chat(context.Background(), driving.ChatRequest{
				DocumentID: "doc-1",
				SessionID:  "session-7",
				Message:    q,
			})
			require.NoError(t, err)
			assert.Equal(t, "session-7", resp.SessionID)
		}

		msgs, err := chats.ListMessages(context.Background(), "session-7")
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "What about revenue?", msgs[0].Query)
		assert.Equal(t, "And profit?", msgs[1].Query)
		assert.NotEmpty(t, msgs[0].Answer)
	})

	t.Run("uses llm answer when configured", func(t *testing.T) {
		store, chats := chatFixture(t, completedPDF("doc-1"), []domain.Chunk{pagedChunk(0, 3, "Revenue grew 12%.")})
		llm := &chatMockLLM{answer: "Revenue grew twelve percent."}
		svc := NewChatService(store, chats, NewVectorSearch(store, nil), llm)

		resp, err := svc.Chat(context.Background(), driving.ChatRequest{DocumentID: "doc-1", Message: "What about revenue?"})
		require.NoError(t, err)
		assert.Equal(t, "Revenue grew twelve percent.", resp.Answer)

		require.Len(t, llm.prompts, 1)
		assert.Contains(t, llm.prompts[0], `"report.pdf"`)
		assert.Contains(t, llm.prompts[0], "[Page 3] Revenue grew 12%.")
		assert.Contains(t, llm.prompts[0], "User Question: What about revenue?")
	})

	t.Run("llm failure degrades to template answer", func(t *testing.T) {
		store, chats := chatFixture(t, completedPDF("doc-1"), []domain.Chunk{pagedChunk(0, 1, "Revenue grew.")})
		llm := &chatMockLLM{err: errors.New("api down")}
		svc := NewChatService(store, chats, NewVectorSearch(store, nil), llm)

		resp, err := svc.Chat(context.Background(), driving.ChatRequest{DocumentID: "doc-1", Message: "What about revenue?"})
		require.NoError(t, err)
		assert.Contains(t, resp.Answer, "offline mode")
		assert.Contains(t, resp.Answer, `"What about revenue?"`)
	})

	t.Run("failed document yields no-content answer", func(t *testing.T) {
		doc := completedPDF("doc-1")
		doc.Status = domain.StatusFailed
		store, chats := chatFixture(t, doc, nil)
		svc := NewChatService(store, chats, NewVectorSearch(store, nil), nil)

		resp, err := svc.Chat(context.Background(), driving.ChatRequest{DocumentID: "doc-1", Message: "anything here?"})
		require.NoError(t, err)
		assert.Contains(t, resp.Answer, "No content is available")
		assert.Empty(t, resp.Citations)
	})
}

func TestChatService_Retrieval(t *testing.T) {
	t.Run("keyword match filters chunks", func(t *testing.T) {
		store, chats := chatFixture(t, completedPDF("doc-1"), []domain.Chunk{
			pagedChunk(0, 1, "Introduction and scope."),
			pagedChunk(1, 2, "The revenue section."),
			pagedChunk(2, 3, "Closing remarks."),
		})
		llm := &chatMockLLM{answer: "ok"}
		svc := NewChatService(store, chats, NewVectorSearch(store, nil), llm)

		_, err := svc.Chat(context.Background(), driving.ChatRequest{DocumentID: "doc-1", Message: "What about revenue"})
		require.NoError(t, err)

		require.Len(t, llm.prompts, 1)
		assert.Contains(t, llm.prompts[0], "The revenue section.")
		assert.NotContains(t, llm.prompts[0], "Closing remarks.")
	})

	t.Run("keyword match is case sensitive after lowering the term", func(t *testing.T) {
		store, chats := chatFixture(t, completedPDF("doc-1"), []domain.Chunk{
			pagedChunk(0, 1, "Revenue is discussed here."),
			pagedChunk(1, 2, "Nothing relevant."),
		})
		llm := &chatMockLLM{answer: "ok"}
		svc := NewChatService(store, chats, NewVectorSearch(store, nil), llm)

		// Term "revenue" does not match capitalised "Revenue", so retrieval
		// falls through to all chunks in index order.
		_, err := svc.Chat(context.Background(), driving.ChatRequest{DocumentID: "doc-1", Message: "Revenue figures?"})
		require.NoError(t, err)

		require.Len(t, llm.prompts, 1)
		assert.Contains(t, llm.prompts[0], "Revenue is discussed here.")
		assert.Contains(t, llm.prompts[0], "Nothing relevant.")
	})

	t.Run("no match returns all chunks in index order", func(t *testing.T) {
		store, chats := chatFixture(t, completedPDF("doc-1"), []domain.Chunk{
			pagedChunk(0, 1, "alpha"),
			pagedChunk(1, 2, "beta"),
			pagedChunk(2, 3, "gamma"),
		})
		llm := &chatMockLLM{answer: "ok"}
		svc := NewChatService(store, chats, NewVectorSearch(store, nil), llm)

		_, err := svc.Chat(context.Background(), driving.ChatRequest{DocumentID: "doc-1", Message: "zzzz question"})
		require.NoError(t, err)

		require.Len(t, llm.prompts, 1)
		prompt := llm.prompts[0]
		assert.Less(t, strings.Index(prompt, "alpha"), strings.Index(prompt, "beta"))
		assert.Less(t, strings.Index(prompt, "beta"), strings.Index(prompt, "gamma"))
	})

	t.Run("vector results win over keyword", func(t *testing.T) {
		start := 0.0
		end := 2.0
		store, chats := chatFixture(t, completedAudio("doc-1"), []domain.Chunk{
			{ID: "a", Index: 0, Content: "about cats", StartTime: &start, EndTime: &end, Embedding: []float32{1, 0}},
			{ID: "b", Index: 1, Content: "about dogs", StartTime: &start, EndTime: &end, Embedding: []float32{0, 1}},
		})
		embedding := &searchMockEmbedding{queryVector: []float32{0, 1}}
		llm := &chatMockLLM{answer: "ok"}
		svc := NewChatService(store, chats, NewVectorSearch(store, embedding), llm)

		_, err := svc.Chat(context.Background(), driving.ChatRequest{DocumentID: "doc-1", Message: "tell me everything"})
		require.NoError(t, err)

		require.Len(t, llm.prompts, 1)
		prompt := llm.prompts[0]
		assert.Less(t, strings.Index(prompt, "about dogs"), strings.Index(prompt, "about cats"))
	})

	t.Run("vector search failure degrades to keyword", func(t *testing.T) {
		store, chats := chatFixture(t, completedPDF("doc-1"), []domain.Chunk{
			pagedChunk(0, 1, "the budget section"),
			pagedChunk(1, 2, "unrelated text"),
		})
		embedding := &searchMockEmbedding{embedErr: errors.New("api down")}
		llm := &chatMockLLM{answer: "ok"}
		svc := NewChatService(store, chats, NewVectorSearch(store, embedding), llm)

		resp, err := svc.Chat(context.Background(), driving.ChatRequest{DocumentID: "doc-1", Message: "what budget was set?"})
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Answer)

		require.Len(t, llm.prompts, 1)
		assert.Contains(t, llm.prompts[0], "the budget section")
		assert.NotContains(t, llm.prompts[0], "unrelated text")
	})
}

func TestSearchTerm(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"What about revenue?", "revenue?"},
		{"where is the conclusion", "conclusion"},
		{"Budget numbers please", "budget"},
		{"a an it", "a"},
		{"What is this", "What"},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, searchTerm(tt.question))
		})
	}
}

func TestBuildContext(t *testing.T) {
	t.Run("timestamp prefix wins over page", func(t *testing.T) {
		start := 65.0
		end := 70.0
		page := 4
		chunk := domain.Chunk{Content: "spoken words", StartTime: &start, EndTime: &end, PageNumber: &page}

		assert.Equal(t, "[01:05] spoken words", BuildContext([]domain.Chunk{chunk}))
	})

	t.Run("page prefix", func(t *testing.T) {
		assert.Equal(t, "[Page 2] body", BuildContext([]domain.Chunk{pagedChunk(0, 2, "body")}))
	})

	t.Run("bare chunk has no prefix", func(t *testing.T) {
		assert.Equal(t, "plain", BuildContext([]domain.Chunk{{Content: "plain"}}))
	})

	t.Run("chunks joined by blank lines", func(t *testing.T) {
		got := BuildContext([]domain.Chunk{pagedChunk(0, 1, "one"), pagedChunk(1, 2, "two")})
		assert.Equal(t, "[Page 1] one\n\n[Page 2] two", got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, BuildContext(nil))
	})
}

func TestExtractCitations(t *testing.T) {
	t.Run("pdf documents never cite", func(t *testing.T) {
		doc := completedPDF("doc-1")
		chunks := []domain.Chunk{timedChunk(0, 1, 2, "even with timestamps")}

		assert.Nil(t, extractCitations(&doc, chunks))
	})

	t.Run("timestamped chunks become citations", func(t *testing.T) {
		doc := completedAudio("doc-1")
		chunks := []domain.Chunk{
			timedChunk(0, 0, 5, "Intro"),
			timedChunk(1, 65, 72, "Main point"),
		}

		citations := extractCitations(&doc, chunks)
		require.Len(t, citations, 2)
		assert.Equal(t, "00:00", citations[0].FormattedTime)
		assert.Equal(t, 0.0, citations[0].StartTime)
		assert.Equal(t, "01:05", citations[1].FormattedTime)
		assert.Equal(t, 72.0, citations[1].EndTime)
	})

	t.Run("caps at five citations", func(t *testing.T) {
		doc := completedAudio("doc-1")
		var chunks []domain.Chunk
		for i := 0; i < 8; i++ {
			chunks = append(chunks, timedChunk(i, float64(i*10), float64(i*10+5), "segment"))
		}

		citations := extractCitations(&doc, chunks)
		assert.Len(t, citations, maxCitations)
	})

	t.Run("long content truncated with ellipsis", func(t *testing.T) {
		doc := completedAudio("doc-1")
		long := strings.Repeat("x", 150)
		chunks := []domain.Chunk{timedChunk(0, 0, 5, long)}

		citations := extractCitations(&doc, chunks)
		require.Len(t, citations, 1)
		assert.Equal(t, strings.Repeat("x", citationPreviewLen)+"...", citations[0].Content)
	})

	t.Run("untimestamped chunks skipped", func(t *testing.T) {
		doc := completedAudio("doc-1")
		chunks := []domain.Chunk{{ID: "u", Index: 0, Content: "no times"}}

		assert.Empty(t, extractCitations(&doc, chunks))
	})

	t.Run("missing end time defaults to zero", func(t *testing.T) {
		doc := completedAudio("doc-1")
		start := 3.0
		chunks := []domain.Chunk{{ID: "h", Index: 0, Content: "half", StartTime: &start}}

		citations := extractCitations(&doc, chunks)
		require.Len(t, citations, 1)
		assert.Equal(t, 3.0, citations[0].StartTime)
		assert.Equal(t, 0.0, citations[0].EndTime)
	})
}

func TestWithTopK(t *testing.T) {
	docs := memory.NewDocumentStore()

	svc := NewChatService(docs, memory.NewChatStore(docs), NewVectorSearch(docs, nil), nil, WithTopK(2))
	assert.Equal(t, 2, svc.topK)

	svc = NewChatService(docs, memory.NewChatStore(docs), NewVectorSearch(docs, nil), nil, WithTopK(0))
	assert.Equal(t, DefaultTopK, svc.topK)
}

func TestChatService_History(t *testing.T) {
	doc := completedPDF("doc-1")
	docs, chats := chatFixture(t, doc, textChunks("first fact", "second fact"))
	svc := NewChatService(docs, chats, NewVectorSearch(docs, nil), nil)

	t.Run("empty session id rejected", func(t *testing.T) {
		_, err := svc.History(context.Background(), "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown session yields no messages", func(t *testing.T) {
		messages, err := svc.History(context.Background(), "missing")
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("returns recorded exchanges in order", func(t *testing.T) {
		for _, question := range []string{"first question", "second question"} {
			_, err := svc.Chat(context.Background(), driving.ChatRequest{
				DocumentID: "doc-1",
				SessionID:  "sess-1",
				Message:    question,
			})
			require.NoError(t, err)
		}

		messages, err := svc.History(context.Background(), "sess-1")
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "first question", messages[0].Query)
		assert.Equal(t, "second question", messages[1].Query)
		assert.NotEmpty(t, messages[0].Answer)
	})
}
