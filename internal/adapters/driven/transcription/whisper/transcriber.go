// Package whisper provides a transcription adapter using the OpenAI
// Whisper API.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/docqa-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure Transcriber implements the interface.
var _ driven.Transcriber = (*Transcriber)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "whisper-1"

	// DefaultTimeout is generous: transcription uploads whole media files.
	DefaultTimeout = 10 * time.Minute
)

// extensionForMIME picks a file extension the API recognises.
var extensionForMIME = map[string]string{
	"audio/mpeg":      ".mp3",
	"audio/mp3":       ".mp3",
	"audio/wav":       ".wav",
	"audio/x-wav":     ".wav",
	"audio/mp4":       ".m4a",
	"audio/m4a":       ".m4a",
	"audio/ogg":       ".ogg",
	"audio/flac":      ".flac",
	"audio/webm":      ".webm",
	"video/mp4":       ".mp4",
	"video/mpeg":      ".mpeg",
	"video/webm":      ".webm",
	"video/quicktime": ".mp4",
}

// Config holds configuration for the Whisper transcriber.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the transcription model to use (default: whisper-1).
	Model string

	// Timeout is the request timeout (default: 10m).
	Timeout time.Duration
}

// Transcriber transcribes audio and video using the Whisper API.
// It requests verbose_json output so segment timestamps survive.
type Transcriber struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// transcriptionResponse is the Whisper verbose_json response format.
type transcriptionResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewTranscriber creates a new Whisper transcriber.
func NewTranscriber(cfg Config) (*Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("whisper: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Transcriber{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Transcribe sends the media bytes to the transcription API and returns
// the text with per-segment timestamps.
func (t *Transcriber) Transcribe(ctx context.Context, data []byte, mimeType string) (*driven.Transcription, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("whisper: empty media data")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "media"+extension(mimeType))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("writing form file: %w", err)
	}

	if err := writer.WriteField("model", t.model); err != nil {
		return nil, fmt.Errorf("writing model field: %w", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("writing format field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		t.baseURL+"/audio/transcriptions",
		body,
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var transcResp transcriptionResponse
	if err := json.Unmarshal(respBody, &transcResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if transcResp.Error != nil {
		return nil, fmt.Errorf("whisper error: %s", transcResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisper error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return parseTranscription(&transcResp), nil
}

// parseTranscription maps the API response onto the port type.
func parseTranscription(resp *transcriptionResponse) *driven.Transcription {
	out := &driven.Transcription{
		Text:     resp.Text,
		Duration: resp.Duration,
	}

	for _, seg := range resp.Segments {
		out.Segments = append(out.Segments, driven.TranscriptSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}

	return out
}

// extension picks a recognised file extension for the upload name.
func extension(mimeType string) string {
	if ext, ok := extensionForMIME[strings.ToLower(mimeType)]; ok {
		return ext
	}
	return ".mp3"
}
