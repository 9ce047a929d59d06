package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/docqa-labs/docqa-cli/internal/core/domain"
	"github.com/docqa-labs/docqa-cli/internal/core/ports/driven"
	"github.com/docqa-labs/docqa-cli/internal/logger"
)

// DefaultTopK is the default number of chunks returned by similarity search.
const DefaultTopK = 5

// scoredChunk holds an intermediate similarity result before ranking.
type scoredChunk struct {
	chunk domain.Chunk
	score float64
}

// VectorSearch ranks a document's chunks by cosine similarity against a
// query embedding. The scan is linear over the single document's chunks;
// there is no approximate index.
type VectorSearch struct {
	docStore  driven.DocumentStore
	embedding driven.EmbeddingService
}

// NewVectorSearch creates a vector search over stored chunk embeddings.
// The embedding service is optional (can be nil); Enabled reports whether
// similarity search is usable.
func NewVectorSearch(docStore driven.DocumentStore, embedding driven.EmbeddingService) *VectorSearch {
	return &VectorSearch{docStore: docStore, embedding: embedding}
}

// Enabled reports whether the embedding capability is configured.
func (s *VectorSearch) Enabled() bool {
	return s.embedding != nil
}

// Search returns the topK most similar chunks of one document, ranked by
// descending cosine similarity with ties broken by ascending chunk index.
// Chunks without a stored embedding are skipped, never scored.
func (s *VectorSearch) Search(ctx context.Context, documentID, query string, topK int) ([]domain.Chunk, error) {
	if s.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	queryVector, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}

	scored := make([]scoredChunk, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		scored = append(scored, scoredChunk{chunk: c, score: CosineSimilarity(queryVector, c.Embedding)})
	}

	// Chunks arrive in index order; a stable sort keeps ties index-ascending,
	// so repeated queries return identical ordering.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}

	results := make([]domain.Chunk, 0, len(scored))
	for _, sc := range scored {
		results = append(results, sc.chunk)
	}

	logger.Debug("Vector search over document %s: %d scored, %d returned", documentID, len(chunks), len(results))
	return results, nil
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|) in the range [-1, 1].
// Mismatched dimensions or a zero-norm vector score 0, never an error.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
