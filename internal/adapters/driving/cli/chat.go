package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docqa-labs/docqa-cli/internal/core/ports/driving"
)

// sessionID is a flag for the chat command.
var sessionID string

var chatCmd = &cobra.Command{
	Use:   "chat [doc-id] [question...]",
	Short: "Ask a question about a document",
	Long: `Asks a question against a single processed document. The answer is
grounded in the most relevant chunks and, for audio and video, carries
timestamp citations. Pass --session to continue an earlier conversation.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&sessionID, "session", "s", "", "Continue an existing chat session")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	resp, err := chatService.Chat(context.Background(), driving.ChatRequest{
		DocumentID: args[0],
		SessionID:  sessionID,
		Message:    strings.Join(args[1:], " "),
	})
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	cmd.Println(resp.Answer)

	if len(resp.Citations) > 0 {
		cmd.Println("\nSources:")
		for _, c := range resp.Citations {
			cmd.Printf("  [%s] %s\n", c.FormattedTime, c.Content)
		}
	}

	cmd.Printf("\nSession: %s\n", resp.SessionID)
	return nil
}
