package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docqa-labs/docqa-cli/internal/core/domain"
	"github.com/docqa-labs/docqa-cli/internal/core/ports/driven"
	"github.com/docqa-labs/docqa-cli/internal/core/ports/driving"
	"github.com/docqa-labs/docqa-cli/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages the document lifecycle: upload validation, blob
// storage, and the asynchronous processing run (extract, chunk, embed,
// summarise).
type DocumentService struct {
	docStore   driven.DocumentStore
	blobStore  driven.BlobStore
	embedding  driven.EmbeddingService
	summariser *Summariser
	extractors map[domain.DocumentType]driven.Extractor

	// Run tracking
	mu     sync.RWMutex
	active map[string]struct{}
	wg     sync.WaitGroup
}

// NewDocumentService creates a document service.
// The embedding service is optional (can be nil); chunks are then stored
// without embeddings and retrieval relies on the keyword fallback.
func NewDocumentService(
	docStore driven.DocumentStore,
	blobStore driven.BlobStore,
	summariser *Summariser,
	embedding driven.EmbeddingService,
	extractors ...driven.Extractor,
) *DocumentService {
	table := make(map[domain.DocumentType]driven.Extractor)
	for _, e := range extractors {
		for _, t := range e.SupportedTypes() {
			table[t] = e
		}
	}

	return &DocumentService{
		docStore:   docStore,
		blobStore:  blobStore,
		embedding:  embedding,
		summariser: summariser,
		extractors: table,
		active:     make(map[string]struct{}),
	}
}

// Upload validates the file, stores its bytes, records the PENDING document
// and dispatches the processing run. The caller receives the PENDING record
// immediately and polls status for the outcome.
func (s *DocumentService) Upload(ctx context.Context, fileName, mimeType string, data []byte) (*domain.Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
	}
	if mimeType == "" {
		return nil, fmt.Errorf("%w: missing content type", domain.ErrInvalidInput)
	}

	docType, err := domain.TypeForMIME(mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, mimeType)
	}

	locator, err := s.blobStore.Store(ctx, fileName, data)
	if err != nil {
		return nil, fmt.Errorf("storing file: %w", err)
	}

	doc := &domain.Document{
		ID:         uuid.New().String(),
		FileName:   fileName,
		Locator:    locator,
		MIMEType:   mimeType,
		FileSize:   int64(len(data)),
		Type:       docType,
		Status:     domain.StatusPending,
		UploadedAt: time.Now().UTC(),
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}

	logger.Info("Accepted upload %s (%s, %d bytes)", doc.FileName, doc.Type, doc.FileSize)

	s.dispatch(doc.ID)
	return doc, nil
}

// dispatch starts the processing run for a document.
// The caller holds no handle to await completion.
func (s *DocumentService) dispatch(documentID string) {
	s.mu.Lock()
	s.active[documentID] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.active, documentID)
			s.mu.Unlock()
		}()
		s.process(context.Background(), documentID)
	}()
}

// process is one processing run: extract, chunk, embed, summarise, finalise.
// Steps are strictly sequential; failures are contained here and surface
// only as the FAILED status. A started run is never cancelled.
func (s *DocumentService) process(ctx context.Context, documentID string) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		logger.Error("Processing run: document %s vanished: %v", documentID, err)
		return
	}

	if err := s.setStatus(ctx, doc, domain.StatusProcessing); err != nil {
		logger.Error("Processing run: %v", err)
		return
	}

	data, err := s.blobStore.Read(ctx, doc.Locator)
	if err != nil {
		s.fail(ctx, doc, fmt.Errorf("reading stored file: %w", err))
		return
	}

	extractor, ok := s.extractors[doc.Type]
	if !ok {
		s.fail(ctx, doc, fmt.Errorf("%w: no extractor for %s", domain.ErrUnsupportedType, doc.Type))
		return
	}

	chunks, err := extractor.Extract(ctx, doc, data)
	if err != nil {
		s.fail(ctx, doc, err)
		return
	}

	s.embedChunks(ctx, doc, chunks)

	if len(chunks) > 0 {
		if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
			s.fail(ctx, doc, fmt.Errorf("saving chunks: %w", err))
			return
		}
	}

	doc.Summary = s.summariser.Summarise(ctx, joinContents(chunks))

	now := time.Now().UTC()
	doc.ProcessedAt = &now
	if err := s.setStatus(ctx, doc, domain.StatusCompleted); err != nil {
		logger.Error("Processing run: %v", err)
		return
	}

	logger.Info("Processed document %s: %d chunks", doc.FileName, len(chunks))
}

// embedChunks attaches embeddings in place. Embedding failures are soft:
// the run continues and retrieval falls back to keyword search.
func (s *DocumentService) embedChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) {
	if s.embedding == nil || len(chunks) == 0 {
		return
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := s.embedding.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Warn("Embedding %s failed, continuing without index: %v", doc.FileName, err)
		return
	}
	if len(vectors) != len(chunks) {
		logger.Warn("Embedding %s returned %d vectors for %d chunks, continuing without index",
			doc.FileName, len(vectors), len(chunks))
		return
	}

	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
}

// fail moves the document to FAILED. The document stays queryable with its
// metadata but has no chunks and no summary.
func (s *DocumentService) fail(ctx context.Context, doc *domain.Document, cause error) {
	logger.Error("Processing %s failed: %v", doc.FileName, cause)
	if err := s.setStatus(ctx, doc, domain.StatusFailed); err != nil {
		logger.Error("Recording failure for %s: %v", doc.FileName, err)
	}
}

// setStatus enforces the lifecycle state machine before persisting.
func (s *DocumentService) setStatus(ctx context.Context, doc *domain.Document, next domain.ProcessingStatus) error {
	if !doc.Status.CanTransitionTo(next) {
		return fmt.Errorf("illegal status transition %s -> %s for document %s", doc.Status, next, doc.ID)
	}
	doc.Status = next
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("saving status %s: %w", next, err)
	}
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, id)
}

// List returns all documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// ListByType returns documents of one type.
func (s *DocumentService) ListByType(ctx context.Context, t domain.DocumentType) ([]domain.Document, error) {
	return s.docStore.ListDocumentsByType(ctx, t)
}

// GetContent returns the raw stored bytes and MIME type of a document.
func (s *DocumentService) GetContent(ctx context.Context, id string) ([]byte, string, error) {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return nil, "", err
	}

	data, err := s.blobStore.Read(ctx, doc.Locator)
	if err != nil {
		return nil, "", fmt.Errorf("reading stored file: %w", err)
	}
	return data, doc.MIMEType, nil
}

// Delete removes a document, its stored bytes, chunks and chat messages.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobStore.Delete(ctx, doc.Locator); err != nil {
		logger.Warn("Deleting stored file %s: %v", doc.Locator, err)
	}

	if err := s.docStore.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// Processing reports whether a document's run is still active.
func (s *DocumentService) Processing(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.active[id]
	return ok
}

// Wait blocks until all dispatched processing runs have finished.
func (s *DocumentService) Wait() {
	s.wg.Wait()
}

// joinContents concatenates chunk contents for summarisation.
func joinContents(chunks []domain.Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Content)
	}
	return strings.Join(parts, "\n")
}
