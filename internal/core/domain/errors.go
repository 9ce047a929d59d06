package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, such as an
	// empty upload.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an upload with an unrecognised or
	// unsupported content type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNotReady indicates the document has not finished processing.
	// Chat requests against PENDING or PROCESSING documents are rejected,
	// never blocked.
	ErrNotReady = errors.New("document not ready")

	// ErrExtraction indicates PDF content extraction failed.
	ErrExtraction = errors.New("extraction failed")

	// ErrTranscription indicates the transcription capability failed or
	// returned a non-success response.
	ErrTranscription = errors.New("transcription failed")

	// ErrEmbedding indicates embedding generation or a stored vector
	// failed to serialise or deserialise.
	ErrEmbedding = errors.New("embedding failed")

	// ErrLLMUnavailable indicates the language model service is not
	// configured. Chat and summaries degrade to template responses.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Retrieval degrades to keyword search.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
