// Package transcript extracts timestamped content from audio and video.
package transcript

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/docqa-labs/docqa-cli/internal/core/domain"
	"github.com/docqa-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor produces time-positioned chunks from audio and video bytes.
// Transcription segments define the chunk boundaries and are never re-split.
type Extractor struct {
	transcriber driven.Transcriber
}

// New creates a transcript extractor.
func New(transcriber driven.Transcriber) *Extractor {
	return &Extractor{transcriber: transcriber}
}

// SupportedTypes returns the document types this extractor handles.
func (e *Extractor) SupportedTypes() []domain.DocumentType {
	return []domain.DocumentType{domain.TypeAudio, domain.TypeVideo}
}

// Extract transcribes the media and turns each non-empty segment into one
// chunk. When the transcription carries no segments, the whole transcript
// becomes a single chunk covering the full duration.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document, data []byte) ([]domain.Chunk, error) {
	transcription, err := e.transcriber.Transcribe(ctx, data, doc.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTranscription, err)
	}

	var chunks []domain.Chunk
	for _, seg := range transcription.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}

		start, end := seg.Start, seg.End
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Index:      len(chunks),
			Content:    text,
			StartTime:  &start,
			EndTime:    &end,
		})
	}

	if len(chunks) == 0 {
		if text := strings.TrimSpace(transcription.Text); text != "" {
			start, end := 0.0, transcription.Duration
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				Index:      0,
				Content:    text,
				StartTime:  &start,
				EndTime:    &end,
			})
		}
	}

	return chunks, nil
}
