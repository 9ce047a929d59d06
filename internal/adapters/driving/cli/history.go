package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Show a chat session's exchanges",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	messages, err := chatService.History(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(messages) == 0 {
		cmd.Println("No messages in this session.")
		return nil
	}

	for i, msg := range messages {
		if i > 0 {
			cmd.Println(strings.Repeat("-", 40))
		}
		cmd.Printf("[%s] Q: %s\n", msg.CreatedAt.Format("2006-01-02 15:04:05"), msg.Query)
		cmd.Printf("A: %s\n", msg.Answer)
		if msg.Citations != "" {
			cmd.Printf("Citations: %s\n", msg.Citations)
		}
	}
	return nil
}
