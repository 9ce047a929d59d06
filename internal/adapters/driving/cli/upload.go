package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docqa-labs/docqa-cli/internal/core/domain"
)

// mimeForExtension maps common upload extensions to content types.
var mimeForExtension = map[string]string{
	".pdf":  "application/pdf",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mpeg": "video/mpeg",
}

// contentType is a flag for the upload command.
var contentType string

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload and process a document",
	Long: `Uploads a PDF, audio or video file and processes it: text extraction or
transcription, chunking, optional embedding, and summarisation. The command
waits for processing to finish and reports the outcome.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&contentType, "content-type", "", "Override the detected content type")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	mimeType := contentType
	if mimeType == "" {
		mimeType = mimeForExtension[strings.ToLower(filepath.Ext(path))]
	}
	if mimeType == "" {
		return fmt.Errorf("cannot detect content type of %s, use --content-type", path)
	}

	ctx := context.Background()
	doc, err := documentService.Upload(ctx, filepath.Base(path), mimeType, data)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	cmd.Printf("Uploaded %s (%s, %d bytes)\n", doc.FileName, doc.Type, doc.FileSize)
	cmd.Printf("Document ID: %s\n", doc.ID)
	cmd.Println("Processing...")

	documentService.Wait()

	processed, err := documentService.Get(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("reading result: %w", err)
	}

	switch processed.Status {
	case domain.StatusCompleted:
		cmd.Println("Status: COMPLETED")
		if processed.Summary != "" {
			cmd.Printf("\n%s\n", processed.Summary)
		}
	case domain.StatusFailed:
		cmd.Println("Status: FAILED")
		cmd.Println("Run with --verbose for processing details.")
	default:
		cmd.Printf("Status: %s\n", processed.Status)
	}

	return nil
}
