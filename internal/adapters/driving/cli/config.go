package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	configfile "github.com/docqa-labs/docqa-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change configuration: data location, chunking, retrieval depth,
and the OpenAI credentials used for live answers.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the OpenAI API key",
	RunE:  runConfigSetKey,
}

var configMockAICmd = &cobra.Command{
	Use:   "mock-ai [on|off]",
	Short: "Toggle offline mode",
	Long: `With mock-ai on, answers and summaries come from templates and retrieval
falls back to keyword matching. Turn it off to use the configured OpenAI models.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigMockAI,
}

var configChunkSizeCmd = &cobra.Command{
	Use:   "chunk-size [characters]",
	Short: "Set the chunk size for new uploads",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigChunkSize,
}

var configTopKCmd = &cobra.Command{
	Use:   "top-k [count]",
	Short: "Set how many chunks retrieval returns",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigTopK,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configMockAICmd)
	configCmd.AddCommand(configChunkSizeCmd)
	configCmd.AddCommand(configTopKCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cfg := configStore.Config()

	cmd.Printf("Config file: %s\n", configStore.Path())
	cmd.Println()
	cmd.Printf("Data dir:    %s\n", orDefault(cfg.DataDir, "~/.docqa/data"))
	cmd.Printf("Chunk size:  %d\n", cfg.ChunkSize)
	cmd.Printf("Top K:       %d\n", cfg.TopK)
	cmd.Printf("Mock AI:     %t\n", cfg.MockAI)
	cmd.Println()
	cmd.Println("[OpenAI]")
	if cfg.OpenAI.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(cfg.OpenAI.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Chat model:          %s\n", orDefault(cfg.OpenAI.ChatModel, "gpt-4o-mini"))
	cmd.Printf("  Embedding model:     %s\n", orDefault(cfg.OpenAI.EmbeddingModel, "text-embedding-3-small"))
	cmd.Printf("  Transcription model: %s\n", orDefault(cfg.OpenAI.TranscriptionModel, "whisper-1"))

	return nil
}

func runConfigSetKey(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Print("Enter API key: ")
	key := readPassword()
	cmd.Println()
	if key == "" {
		return errors.New("API key must not be empty")
	}

	if err := configStore.Update(func(c *configfile.Config) {
		c.OpenAI.APIKey = key
	}); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("Stored API key %s\n", maskAPIKey(key))
	return nil
}

func runConfigMockAI(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	var enabled bool
	switch strings.ToLower(args[0]) {
	case "on", "true":
		enabled = true
	case "off", "false":
		enabled = false
	default:
		return fmt.Errorf("expected on or off, got %q", args[0])
	}

	if err := configStore.Update(func(c *configfile.Config) {
		c.MockAI = enabled
	}); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if enabled {
		cmd.Println("Mock AI enabled: template answers and keyword retrieval.")
	} else {
		cmd.Println("Mock AI disabled: live models will be used when an API key is set.")
	}
	return nil
}

func runConfigChunkSize(cmd *cobra.Command, args []string) error {
	return setPositiveInt(cmd, args[0], "chunk size", func(c *configfile.Config, v int) {
		c.ChunkSize = v
	})
}

func runConfigTopK(cmd *cobra.Command, args []string) error {
	return setPositiveInt(cmd, args[0], "top K", func(c *configfile.Config, v int) {
		c.TopK = v
	})
}

func setPositiveInt(cmd *cobra.Command, raw, label string, apply func(*configfile.Config, int)) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fmt.Errorf("%s must be a positive integer, got %q", label, raw)
	}

	if err := configStore.Update(func(c *configfile.Config) {
		apply(c, v)
	}); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("Set %s to %d\n", label, v)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
