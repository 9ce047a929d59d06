package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docqa-labs/docqa-cli/internal/adapters/driving/watch"
	"github.com/docqa-labs/docqa-cli/internal/core/domain"
	"github.com/docqa-labs/docqa-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and upload new documents",
	Long: `Watches a directory and uploads every supported file dropped into it.
Runs until interrupted with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := watch.New(args[0], watch.WithFilter(supportedUpload))
	events, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", args[0])

	for ev := range events {
		if err := uploadWatched(ctx, cmd, ev.Path); err != nil {
			logger.Error("Upload of %s failed: %v", ev.Path, err)
		}
	}

	cmd.Println("Stopped.")
	return nil
}

func uploadWatched(ctx context.Context, cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	mimeType := mimeForExtension[strings.ToLower(filepath.Ext(path))]
	doc, err := documentService.Upload(ctx, filepath.Base(path), mimeType, data)
	if err != nil {
		return err
	}

	cmd.Printf("Uploaded %s as %s\n", doc.FileName, doc.ID)

	documentService.Wait()

	processed, err := documentService.Get(ctx, doc.ID)
	if err != nil {
		return err
	}
	if processed.Status == domain.StatusFailed {
		cmd.Printf("  processing failed for %s\n", doc.FileName)
	} else {
		cmd.Printf("  %s: %s\n", doc.FileName, processed.Status)
	}
	return nil
}

// supportedUpload accepts files whose extension maps to a known content type.
func supportedUpload(path string) bool {
	return mimeForExtension[strings.ToLower(filepath.Ext(path))] != ""
}
