package cli

import (
	"fmt"
	"os"
	"path/filepath"

	blobfile "github.com/docqa-labs/docqa-cli/internal/adapters/driven/blob/file"
	configfile "github.com/docqa-labs/docqa-cli/internal/adapters/driven/config/file"
	embeddingopenai "github.com/docqa-labs/docqa-cli/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/docqa-labs/docqa-cli/internal/adapters/driven/llm/openai"
	"github.com/docqa-labs/docqa-cli/internal/adapters/driven/pdftext"
	"github.com/docqa-labs/docqa-cli/internal/adapters/driven/storage/sqlite"
	"github.com/docqa-labs/docqa-cli/internal/adapters/driven/transcription/whisper"
	"github.com/docqa-labs/docqa-cli/internal/chunker"
	"github.com/docqa-labs/docqa-cli/internal/core/ports/driven"
	"github.com/docqa-labs/docqa-cli/internal/core/services"
	"github.com/docqa-labs/docqa-cli/internal/extractors/pdf"
	"github.com/docqa-labs/docqa-cli/internal/extractors/transcript"
	"github.com/docqa-labs/docqa-cli/internal/logger"
)

// Wired application state, built once per invocation by initApp.
var (
	configStore     *configfile.ConfigStore
	store           *sqlite.Store
	documentService *services.DocumentService
	chatService     *services.ChatService
)

// initApp wires the adapters and services from configuration.
// Already-wired services are left alone.
func initApp() error {
	if documentService != nil {
		return nil
	}

	var err error
	configStore, err = configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := configStore.Config()

	store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	blobs, err := blobfile.NewBlobStore(blobDir(cfg))
	if err != nil {
		return fmt.Errorf("opening blob store: %w", err)
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = cfg.OpenAI.APIKey
	}

	var llm driven.LLMService
	var embedding driven.EmbeddingService
	if !cfg.MockAI && apiKey != "" {
		llm, err = llmopenai.NewLLMService(llmopenai.LLMConfig{
			APIKey:  apiKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.ChatModel,
		})
		if err != nil {
			return fmt.Errorf("configuring chat model: %w", err)
		}

		embedding, err = embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:  apiKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.EmbeddingModel,
		})
		if err != nil {
			return fmt.Errorf("configuring embedding model: %w", err)
		}
	} else {
		logger.Debug("Running in offline mode: template answers and keyword retrieval")
	}

	splitter := chunker.New(chunker.WithChunkSize(cfg.ChunkSize))

	extractors := []driven.Extractor{
		pdf.New(pdftext.New(), splitter),
	}

	// Transcription always needs the live API; audio and video uploads
	// fail cleanly when no key is configured.
	if apiKey != "" {
		transcriber, err := whisper.NewTranscriber(whisper.Config{
			APIKey:  apiKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.TranscriptionModel,
		})
		if err != nil {
			return fmt.Errorf("configuring transcriber: %w", err)
		}
		extractors = append(extractors, transcript.New(transcriber))
	}

	docStore := store.DocumentStore()
	summariser := services.NewSummariser(llm)

	documentService = services.NewDocumentService(docStore, blobs, summariser, embedding, extractors...)
	chatService = services.NewChatService(docStore, store.ChatStore(),
		services.NewVectorSearch(docStore, embedding), llm,
		services.WithTopK(cfg.TopK))

	return nil
}

// closeApp waits for background processing and releases resources.
func closeApp() error {
	if documentService != nil {
		documentService.Wait()
	}
	if store != nil {
		return store.Close()
	}
	return nil
}

// blobDir places uploaded files next to the database.
func blobDir(cfg configfile.Config) string {
	if cfg.DataDir == "" {
		return "" // blob store applies its own default
	}
	return filepath.Join(cfg.DataDir, "files")
}
