// Package chunker provides boundary-aware text splitting.
package chunker

import "strings"

// DefaultChunkSize is the default target number of characters per chunk.
const DefaultChunkSize = 1000

// Splitter splits a text block into bounded pieces, preferring to break at
// sentence or word boundaries.
type Splitter struct {
	chunkSize int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChunkSize returns the configured target chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Split divides text into pieces of at most the target size, each trimmed
// of surrounding whitespace. Text at or below the limit returns as a single
// piece.
//
// For longer text, each window of chunkSize characters is cut back to the
// last sentence terminator ('.') before the window end, or failing that the
// last space, but only when the break point lies in the back half of the
// window. A break that would leave less than half a chunk is ignored, so no
// piece except possibly the last is shorter than chunkSize/2.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= s.chunkSize {
		return []string{strings.TrimSpace(text)}
	}

	var pieces []string
	start := 0
	for start < len(text) {
		end := start + s.chunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = s.rewind(text, start, end)
		}

		piece := strings.TrimSpace(text[start:end])
		if piece != "" {
			pieces = append(pieces, piece)
		}
		start = end
	}

	return pieces
}

// rewind moves the window end back to the nearest acceptable boundary.
// A boundary is only honoured when it recovers at least half the target
// chunk size, which prevents degenerate near-empty pieces.
func (s *Splitter) rewind(text string, start, end int) int {
	half := start + s.chunkSize/2

	if dot := strings.LastIndexByte(text[:end+1], '.'); dot > half {
		return dot + 1
	}
	if space := strings.LastIndexByte(text[:end+1], ' '); space > half {
		return space
	}
	return end
}
