package domain

import (
	"strings"
	"time"
)

// DocumentType identifies the kind of source file a document was created from.
// The set is closed: extractors are selected by an explicit dispatch table.
type DocumentType string

const (
	// TypePDF is a paginated PDF document.
	TypePDF DocumentType = "PDF"

	// TypeAudio is an audio recording transcribed into timestamped segments.
	TypeAudio DocumentType = "AUDIO"

	// TypeVideo is a video file; only its audio track is transcribed.
	TypeVideo DocumentType = "VIDEO"
)

// TypeForMIME maps an upload's MIME type to a document type.
// Returns ErrUnsupportedType for anything outside PDF, audio/* and video/*.
func TypeForMIME(mimeType string) (DocumentType, error) {
	switch {
	case mimeType == "application/pdf":
		return TypePDF, nil
	case strings.HasPrefix(mimeType, "audio/"):
		return TypeAudio, nil
	case strings.HasPrefix(mimeType, "video/"):
		return TypeVideo, nil
	default:
		return "", ErrUnsupportedType
	}
}

// ProcessingStatus is the document lifecycle state.
// The only legal path is PENDING -> PROCESSING -> {COMPLETED, FAILED}.
// FAILED is terminal; reprocessing requires a fresh upload.
type ProcessingStatus string

const (
	// StatusPending is set on accepted upload, before any extraction work.
	StatusPending ProcessingStatus = "PENDING"

	// StatusProcessing is set when the asynchronous processing run starts.
	StatusProcessing ProcessingStatus = "PROCESSING"

	// StatusCompleted is set after extraction, chunking and summarisation succeed.
	StatusCompleted ProcessingStatus = "COMPLETED"

	// StatusFailed is set when any extraction or transcription step fails.
	StatusFailed ProcessingStatus = "FAILED"
)

// CanTransitionTo reports whether moving to next is a legal lifecycle step.
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// Terminal reports whether the status admits no further transitions.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Document represents an uploaded source file and its processing state.
// A document exclusively owns its chunks; deleting it removes all chunks
// and chat messages that reference it.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// FileName is the original upload file name, used for display.
	FileName string

	// Locator is the blob store key holding the raw file bytes.
	Locator string

	// MIMEType is the declared content type of the upload.
	MIMEType string

	// FileSize is the upload size in bytes.
	FileSize int64

	// Type is the document kind derived from the MIME type.
	Type DocumentType

	// Status is the current lifecycle state.
	Status ProcessingStatus

	// Summary is the generated document summary, empty until COMPLETED.
	Summary string

	// UploadedAt is when the upload was accepted.
	UploadedAt time.Time

	// ProcessedAt is when processing finished successfully.
	ProcessedAt *time.Time
}

// Chunk is a bounded, positioned segment of a document's extracted text.
// It is the atomic unit of retrieval. A chunk carries exactly one positional
// kind: PageNumber for PDF-origin chunks, StartTime/EndTime for audio and
// video-origin chunks.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document. Lookup reference only,
	// never a live object reference.
	DocumentID string

	// Index is the zero-based position within the document. Indices are
	// contiguous across all pages and segments of one document.
	Index int

	// Content is the chunk text. Never empty after creation.
	Content string

	// PageNumber is the 1-based source page for PDF chunks, nil otherwise.
	PageNumber *int

	// StartTime is the segment start in seconds for audio/video chunks.
	StartTime *float64

	// EndTime is the segment end in seconds for audio/video chunks.
	EndTime *float64

	// Embedding is the vector representation for similarity search.
	// Nil until indexed. Immutable once computed; recomputation replaces
	// the whole vector.
	Embedding []float32
}

// Timestamped reports whether the chunk carries time positions.
func (c Chunk) Timestamped() bool {
	return c.StartTime != nil
}
