package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docqa-labs/docqa-cli/internal/core/domain"
	"github.com/docqa-labs/docqa-cli/internal/core/ports/driven"
	"github.com/docqa-labs/docqa-cli/internal/core/ports/driving"
	"github.com/docqa-labs/docqa-cli/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// maxCitations caps the number of timestamp citations per response.
const maxCitations = 5

// citationPreviewLen is the citation content truncation length.
const citationPreviewLen = 100

// contextPreviewLen is the context preview length in template answers.
const contextPreviewLen = 300

// stopWords are excluded when picking the keyword search term.
var stopWords = map[string]struct{}{
	"what": {}, "where": {}, "when": {}, "which": {}, "who": {}, "whom": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "about": {}, "from": {},
	"with": {}, "have": {}, "been": {},
}

// ChatService answers questions against one document's chunks.
// Retrieval applies vector search, keyword search and an unranked fallback
// in order, stopping at the first non-empty result, so a processed document
// always yields some context.
type ChatService struct {
	docStore  driven.DocumentStore
	chatStore driven.ChatStore
	vector    *VectorSearch
	llm       driven.LLMService
	topK      int
}

// ChatOption configures a ChatService.
type ChatOption func(*ChatService)

// WithTopK sets how many chunks vector retrieval returns.
// Values below 1 are ignored.
func WithTopK(k int) ChatOption {
	return func(s *ChatService) {
		if k >= 1 {
			s.topK = k
		}
	}
}

// NewChatService creates a chat service.
// The LLM service is optional (can be nil); answers then come from the
// deterministic template responder.
func NewChatService(
	docStore driven.DocumentStore,
	chatStore driven.ChatStore,
	vector *VectorSearch,
	llm driven.LLMService,
	opts ...ChatOption,
) *ChatService {
	s := &ChatService{
		docStore:  docStore,
		chatStore: chatStore,
		vector:    vector,
		llm:       llm,
		topK:      DefaultTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat answers one question against one document and records the exchange.
func (s *ChatService) Chat(ctx context.Context, req driving.ChatRequest) (*driving.ChatResponse, error) {
	question := strings.TrimSpace(req.Message)
	if question == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}

	doc, err := s.docStore.GetDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	if doc.Status == domain.StatusPending || doc.Status == domain.StatusProcessing {
		return nil, fmt.Errorf("%w: document is %s", domain.ErrNotReady, doc.Status)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	chunks, err := s.relevantChunks(ctx, doc, question)
	if err != nil {
		return nil, err
	}

	contextText := BuildContext(chunks)

	var answer string
	if len(chunks) == 0 {
		answer = noContentAnswer(doc)
	} else {
		answer = s.generateAnswer(ctx, question, doc, contextText)
	}

	citations := extractCitations(doc, chunks)

	msg := &domain.ChatMessage{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		DocumentID: doc.ID,
		Query:      question,
		Answer:     answer,
		Citations:  domain.SerializeCitations(citations),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.chatStore.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("saving chat message: %w", err)
	}

	return &driving.ChatResponse{
		SessionID: sessionID,
		Answer:    answer,
		Citations: citations,
	}, nil
}

// History returns a session's recorded exchanges in creation order.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: empty session id", domain.ErrInvalidInput)
	}
	return s.chatStore.ListMessages(ctx, sessionID)
}

// relevantChunks applies the retrieval fallback chain:
// vector similarity, then keyword match, then all chunks unranked.
func (s *ChatService) relevantChunks(ctx context.Context, doc *domain.Document, question string) ([]domain.Chunk, error) {
	if s.vector.Enabled() {
		results, err := s.vector.Search(ctx, doc.ID, question, s.topK)
		if err != nil {
			// Soft fallback: a failed vector search degrades to keyword search
			logger.Warn("Vector search for %s failed: %v", doc.ID, err)
		}
		if len(results) > 0 {
			logger.Debug("Retrieval: vector search returned %d chunks", len(results))
			return results, nil
		}
	}

	all, err := s.docStore.GetChunks(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}

	term := searchTerm(question)
	var matches []domain.Chunk
	for _, c := range all {
		if strings.Contains(c.Content, term) {
			matches = append(matches, c)
		}
	}
	if len(matches) > 0 {
		logger.Debug("Retrieval: keyword %q matched %d chunks", term, len(matches))
		return matches, nil
	}

	logger.Debug("Retrieval: unranked fallback, %d chunks", len(all))
	return all, nil
}

// searchTerm picks a single keyword from the question: the first word
// longer than three characters that is not a stop word, else the first
// token of the question.
func searchTerm(question string) string {
	for _, word := range strings.Fields(strings.ToLower(question)) {
		if len(word) > 3 {
			if _, stop := stopWords[word]; !stop {
				return word
			}
		}
	}
	return strings.Fields(question)[0]
}

// generateAnswer produces the response text, degrading to the template
// responder when no LLM is configured or the live call fails.
func (s *ChatService) generateAnswer(ctx context.Context, question string, doc *domain.Document, contextText string) string {
	if s.llm == nil {
		return templateAnswer(question, doc, contextText)
	}

	prompt := BuildPrompt(question, doc, contextText)
	answer, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   2000,
		Temperature: 0.7,
	})
	if err != nil {
		logger.Warn("Answer generation for %s failed, using template: %v", doc.ID, err)
		return templateAnswer(question, doc, contextText)
	}
	return answer
}

// BuildContext concatenates chunks in their retrieved order, each prefixed
// with its position annotation and separated by blank lines.
func BuildContext(chunks []domain.Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		var sb strings.Builder
		if c.Timestamped() {
			sb.WriteString("[" + domain.FormatTimestamp(c.StartTime) + "] ")
		} else if c.PageNumber != nil {
			sb.WriteString(fmt.Sprintf("[Page %d] ", *c.PageNumber))
		}
		sb.WriteString(c.Content)
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "\n\n")
}

// BuildPrompt embeds the document identity, assembled context and question
// into a model-ready prompt.
func BuildPrompt(question string, doc *domain.Document, contextText string) string {
	return fmt.Sprintf(`You are a helpful assistant that answers questions based on the provided document content.
The document is a %s file named %q.

Document Content:
%s

User Question: %s

Instructions:
1. Answer based only on the provided document content
2. If the answer is not in the document, say so clearly
3. For audio/video content, reference the timestamps when relevant
4. Be concise but comprehensive

Answer:
`, strings.ToLower(string(doc.Type)), doc.FileName, contextText, question)
}

// templateAnswer is the deterministic substitute used without a live model.
// It is clearly labelled and echoes the question, the document identity and
// a context preview.
func templateAnswer(question string, doc *domain.Document, contextText string) string {
	preview := contextText
	if len(preview) > contextPreviewLen {
		preview = preview[:contextPreviewLen] + "..."
	}

	return fmt.Sprintf(`**Response (offline mode)**

You asked: %q

**Document:** %s (%s)

**Relevant Content Preview:**
%s

---
*This is a template response generated without a language model. To enable model-generated answers, configure an OpenAI API key and set mock_ai = false in config.toml.*
`, question, doc.FileName, doc.Type, preview)
}

// noContentAnswer is returned when retrieval yields no chunks at all,
// such as for FAILED documents.
func noContentAnswer(doc *domain.Document) string {
	return fmt.Sprintf("No content is available for %q (status %s). The document has no extracted text to answer from.",
		doc.FileName, doc.Status)
}

// extractCitations builds timestamp citations from the retrieved chunks.
// PDF documents never produce citations.
func extractCitations(doc *domain.Document, chunks []domain.Chunk) []domain.Citation {
	if doc.Type == domain.TypePDF {
		return nil
	}

	var citations []domain.Citation
	for _, c := range chunks {
		if !c.Timestamped() {
			continue
		}
		if len(citations) == maxCitations {
			break
		}

		var end float64
		if c.EndTime != nil {
			end = *c.EndTime
		}

		content := c.Content
		if len(content) > citationPreviewLen {
			content = content[:citationPreviewLen] + "..."
		}

		citations = append(citations, domain.Citation{
			StartTime:     *c.StartTime,
			EndTime:       end,
			Content:       content,
			FormattedTime: domain.FormatTimestamp(c.StartTime),
		})
	}
	return citations
}
