package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/docqa-labs/docqa-cli/internal/core/ports/driven"
	"github.com/docqa-labs/docqa-cli/internal/logger"
)

// summaryInputLimit truncates very long content before prompting.
const summaryInputLimit = 15000

// summaryPreviewLen is the content preview length in template summaries.
const summaryPreviewLen = 200

// memoLimit bounds the summary memo table. When full, the table is cleared
// wholesale; documents are summarised once per run, so recomputation after
// a flush is cheap.
const memoLimit = 256

// Summariser generates document summaries, memoised by a fingerprint of
// the normalised content. It never fails: a missing or failing LLM degrades
// to a deterministic template summary.
type Summariser struct {
	llm driven.LLMService

	mu   sync.Mutex
	memo map[uint64]string
}

// NewSummariser creates a summariser. The LLM service is optional (can be nil).
func NewSummariser(llm driven.LLMService) *Summariser {
	return &Summariser{
		llm:  llm,
		memo: make(map[uint64]string),
	}
}

// Summarise returns a summary of content, from the memo table when the
// same content was summarised before.
func (s *Summariser) Summarise(ctx context.Context, content string) string {
	if strings.TrimSpace(content) == "" {
		return "No content available for summarization."
	}

	key := fingerprint(content)
	s.mu.Lock()
	if cached, ok := s.memo[key]; ok {
		s.mu.Unlock()
		logger.Debug("Summary memo hit for fingerprint %x", key)
		return cached
	}
	s.mu.Unlock()

	summary := s.generate(ctx, content)

	s.mu.Lock()
	if len(s.memo) >= memoLimit {
		s.memo = make(map[uint64]string)
	}
	s.memo[key] = summary
	s.mu.Unlock()

	return summary
}

// generate produces the summary text, degrading to the template when no
// LLM is configured or the live call fails.
func (s *Summariser) generate(ctx context.Context, content string) string {
	if s.llm == nil {
		return templateSummary(content)
	}

	truncated := content
	if len(truncated) > summaryInputLimit {
		truncated = truncated[:summaryInputLimit] + "..."
	}

	prompt := fmt.Sprintf(`Please provide a comprehensive summary of the following content.
The summary should:
1. Capture the main topics and key points
2. Be concise but informative (3-5 paragraphs)
3. Highlight any important details, dates, or figures

Content:
%s
`, truncated)

	summary, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   1000,
		Temperature: 0.3,
	})
	if err != nil {
		logger.Warn("Summary generation failed, using template: %v", err)
		return templateSummary(content)
	}
	return summary
}

// templateSummary is the deterministic substitute used without a live model.
func templateSummary(content string) string {
	words := strings.Fields(content)

	preview := strings.Join(words, " ")
	if len(preview) > summaryPreviewLen {
		preview = preview[:summaryPreviewLen] + "..."
	}

	return fmt.Sprintf(`**Document Summary (offline mode)**

This document contains approximately %d words and %d characters.

**Preview:** %s

**Note:** This is a template summary generated without a language model. To enable model-generated summaries, configure an OpenAI API key and set mock_ai = false in config.toml.
`, len(words), len(content), preview)
}

// fingerprint hashes whitespace-normalised content for the memo table.
func fingerprint(content string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(strings.Join(strings.Fields(content), " "))) //nolint:errcheck // hash writes never fail
	return h.Sum64()
}
