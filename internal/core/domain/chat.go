package domain

import (
	"fmt"
	"strings"
	"time"
)

// ChatMessage is the audit record of one question and answer exchange.
// It plays no part in retrieval.
type ChatMessage struct {
	// ID is the unique identifier for the message.
	ID string

	// SessionID groups messages belonging to one conversation.
	SessionID string

	// DocumentID links to the document the question was asked against.
	DocumentID string

	// Query is the user's question.
	Query string

	// Answer is the generated response.
	Answer string

	// Citations is the serialised citation list, empty when none.
	Citations string

	// CreatedAt is when the exchange happened.
	CreatedAt time.Time
}

// Citation is a timestamp-anchored reference attached to a chat response,
// pointing back to a source chunk. PDF documents never produce citations.
type Citation struct {
	// StartTime is the source segment start in seconds.
	StartTime float64

	// EndTime is the source segment end in seconds.
	EndTime float64

	// Content is a preview of the chunk text, truncated to 100 characters.
	Content string

	// FormattedTime is StartTime rendered as MM:SS.
	FormattedTime string
}

// FormatTimestamp renders seconds as zero-padded MM:SS.
// A nil start time renders as 00:00.
func FormatTimestamp(seconds *float64) string {
	if seconds == nil {
		return "00:00"
	}
	mins := int(*seconds) / 60
	secs := int(*seconds) % 60
	return fmt.Sprintf("%02d:%02d", mins, secs)
}

// SerializeCitations flattens citations for storage on a ChatMessage,
// joining "time:content" pairs with pipes. Returns "" for no citations.
func SerializeCitations(citations []Citation) string {
	if len(citations) == 0 {
		return ""
	}
	parts := make([]string, 0, len(citations))
	for _, c := range citations {
		parts = append(parts, c.FormattedTime+":"+c.Content)
	}
	return strings.Join(parts, "|")
}
