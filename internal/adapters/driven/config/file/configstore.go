// Package file provides TOML-backed configuration for the CLI.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Defaults applied when the config file is absent or fields are unset.
const (
	DefaultChunkSize = 1000
	DefaultTopK      = 5
)

// Config is the persisted application configuration.
type Config struct {
	// DataDir is where the database and uploaded files live.
	// Empty means ~/.docqa/data.
	DataDir string `toml:"data_dir"`

	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int `toml:"chunk_size"`

	// TopK is the number of chunks retrieved per question.
	TopK int `toml:"top_k"`

	// MockAI disables live model calls; answers and summaries come from
	// deterministic templates.
	MockAI bool `toml:"mock_ai"`

	// OpenAI holds API credentials and model selection.
	OpenAI OpenAIConfig `toml:"openai"`
}

// OpenAIConfig configures the OpenAI-backed adapters.
type OpenAIConfig struct {
	// APIKey is the API key. The OPENAI_API_KEY environment variable
	// takes precedence when set.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the API endpoint for compatible providers.
	BaseURL string `toml:"base_url"`

	// ChatModel is the completion model (default: gpt-4o-mini).
	ChatModel string `toml:"chat_model"`

	// EmbeddingModel is the embedding model (default: text-embedding-3-small).
	EmbeddingModel string `toml:"embedding_model"`

	// TranscriptionModel is the transcription model (default: whisper-1).
	TranscriptionModel string `toml:"transcription_model"`
}

// ConfigStore loads and persists the configuration as TOML.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	config   Config
}

// NewConfigStore creates a TOML-based config store.
// If configDir is empty, defaults to ~/.docqa/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".docqa")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		config:   defaults(),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Path returns the config file location.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Config returns a copy of the current configuration.
func (s *ConfigStore) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Update applies fn to the configuration and persists the result.
func (s *ConfigStore) Update(fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.config)
	applyDefaults(&s.config)
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.config)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	// Write with restricted permissions: the file may hold an API key
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file.
// A missing file leaves the defaults in place.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.config = defaults()
			return nil
		}
		return err
	}

	loaded := defaults()
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	applyDefaults(&loaded)

	s.config = loaded
	return nil
}

func defaults() Config {
	return Config{
		ChunkSize: DefaultChunkSize,
		TopK:      DefaultTopK,
		MockAI:    true,
	}
}

func applyDefaults(c *Config) {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
}
