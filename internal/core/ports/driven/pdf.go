package driven

import "context"

// PDFReader provides page-level text access to PDF bytes.
type PDFReader interface {
	// PageCount returns the number of pages in the PDF.
	PageCount(ctx context.Context, data []byte) (int, error)

	// ExtractPage returns the text of one page (1-based).
	// A page with no extractable text returns "".
	ExtractPage(ctx context.Context, data []byte, page int) (string, error)
}
