package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docqa-labs/docqa-cli/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage uploaded documents",
	Long:  `List, inspect, download, or delete uploaded documents.`,
}

// documentType is a flag for the list command.
var documentType string

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentStatusCmd = &cobra.Command{
	Use:   "status [doc-id]",
	Short: "Show processing status",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentStatus,
}

var documentSummaryCmd = &cobra.Command{
	Use:   "summary [doc-id]",
	Short: "Print the document summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentSummary,
}

// outputPath is a flag for the content command.
var outputPath string

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Write the original file bytes",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and everything derived from it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentListCmd.Flags().StringVarP(&documentType, "type", "t", "", "Filter by type (pdf, audio, video)")
	documentContentCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to file instead of stdout")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentStatusCmd)
	documentCmd.AddCommand(documentSummaryCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()

	var docs []domain.Document
	var err error
	if documentType == "" {
		docs, err = documentService.List(ctx)
	} else {
		var t domain.DocumentType
		t, err = parseDocumentType(documentType)
		if err != nil {
			return err
		}
		docs, err = documentService.ListByType(ctx, t)
	}
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("%s  %-5s  %-10s  %s\n", doc.ID, doc.Type, doc.Status, doc.FileName)
	}
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("ID:          %s\n", doc.ID)
	cmd.Printf("File:        %s\n", doc.FileName)
	cmd.Printf("Type:        %s\n", doc.Type)
	cmd.Printf("Status:      %s\n", doc.Status)
	cmd.Printf("Size:        %d bytes\n", doc.FileSize)
	cmd.Printf("Uploaded:    %s\n", doc.UploadedAt.Format("2006-01-02 15:04:05"))
	if doc.ProcessedAt != nil {
		cmd.Printf("Processed:   %s\n", doc.ProcessedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runDocumentStatus(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Println(string(doc.Status))
	return nil
}

func runDocumentSummary(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if doc.Summary == "" {
		cmd.Printf("No summary available (status %s).\n", doc.Status)
		return nil
	}
	cmd.Println(doc.Summary)
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	data, mimeType, err := documentService.GetContent(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get content: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0600); err != nil {
			return fmt.Errorf("writing %s: %w", outputPath, err)
		}
		cmd.Printf("Wrote %d bytes (%s) to %s\n", len(data), mimeType, outputPath)
		return nil
	}

	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return fmt.Errorf("writing content: %w", err)
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}

// parseDocumentType maps a user-supplied type filter onto the domain type.
func parseDocumentType(s string) (domain.DocumentType, error) {
	switch strings.ToLower(s) {
	case "pdf":
		return domain.TypePDF, nil
	case "audio":
		return domain.TypeAudio, nil
	case "video":
		return domain.TypeVideo, nil
	default:
		return "", fmt.Errorf("unknown document type %q (expected pdf, audio or video)", s)
	}
}
