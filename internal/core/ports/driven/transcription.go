package driven

import "context"

// Transcriber converts audio or video bytes into timestamped text segments.
//
// Implementations may include:
//   - OpenAI Whisper (verbose_json with segment granularity)
//   - Local inference servers exposing a compatible API
type Transcriber interface {
	// Transcribe produces a transcription for the given media bytes.
	// The MIME type hints the container format to the backend.
	Transcribe(ctx context.Context, data []byte, mimeType string) (*Transcription, error)
}

// Transcription is the result of transcribing one media file.
type Transcription struct {
	// Text is the whole transcript, used as a fallback when the backend
	// returns no segments.
	Text string

	// Duration is the media length in seconds.
	Duration float64

	// Segments are the timestamped pieces, in temporal order.
	Segments []TranscriptSegment
}

// TranscriptSegment is one timestamped piece of a transcription.
type TranscriptSegment struct {
	// Start is the segment start in seconds.
	Start float64

	// End is the segment end in seconds.
	End float64

	// Text is the segment text.
	Text string
}
