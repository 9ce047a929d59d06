package cli

import (
	"context"
	"os"
	"time"

	blobfile "github.com/docqa-labs/docqa-cli/internal/adapters/driven/blob/file"
	configfile "github.com/docqa-labs/docqa-cli/internal/adapters/driven/config/file"
	"github.com/docqa-labs/docqa-cli/internal/adapters/driven/storage/memory"
	"github.com/docqa-labs/docqa-cli/internal/core/domain"
	"github.com/docqa-labs/docqa-cli/internal/core/services"
)

// setupTestServices wires the package services against in-memory stores
// seeded with one completed and one pending document. The returned cleanup
// resets the wiring.
func setupTestServices() func() {
	tempDir, err := os.MkdirTemp("", "docqa-cli-test-*")
	if err != nil {
		panic(err)
	}

	docs := memory.NewDocumentStore()
	chats := memory.NewChatStore(docs)

	blobs, err := blobfile.NewBlobStore(tempDir)
	if err != nil {
		panic(err)
	}
	cfgStore, err := configfile.NewConfigStore(tempDir)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	locator, err := blobs.Store(ctx, "report.pdf", []byte("%PDF-1.4 test"))
	if err != nil {
		panic(err)
	}

	processedAt := time.Now()
	seed := []domain.Document{
		{
			ID:          "doc-1",
			FileName:    "report.pdf",
			Locator:     locator,
			MIMEType:    "application/pdf",
			FileSize:    13,
			Type:        domain.TypePDF,
			Status:      domain.StatusCompleted,
			Summary:     "A short report about revenue.",
			UploadedAt:  time.Now(),
			ProcessedAt: &processedAt,
		},
		{
			ID:         "doc-2",
			FileName:   "talk.mp3",
			MIMEType:   "audio/mpeg",
			FileSize:   10,
			Type:       domain.TypeAudio,
			Status:     domain.StatusPending,
			UploadedAt: time.Now(),
		},
	}
	for i := range seed {
		if err := docs.SaveDocument(ctx, &seed[i]); err != nil {
			panic(err)
		}
	}
	if err := docs.SaveChunks(ctx, []domain.Chunk{
		{ID: "chunk-1", DocumentID: "doc-1", Index: 0, Content: "Revenue grew 12% this quarter."},
	}); err != nil {
		panic(err)
	}

	configStore = cfgStore
	documentService = services.NewDocumentService(docs, blobs, services.NewSummariser(nil), nil)
	chatService = services.NewChatService(docs, chats, services.NewVectorSearch(docs, nil), nil)

	return func() {
		configStore = nil
		documentService = nil
		chatService = nil
		os.RemoveAll(tempDir)
	}
}
