// Package pdftext extracts text from PDFs by shelling out to the poppler
// utilities (pdfinfo, pdftotext).
package pdftext

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/docqa-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.PDFReader = (*Reader)(nil)

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands using os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Reader reads PDF text page by page. The PDF bytes are written to a
// temporary file once per call; poppler tools only accept file paths.
type Reader struct {
	runner CommandRunner
}

// New creates a PDF reader using the system poppler utilities.
func New() *Reader {
	return &Reader{runner: execRunner{}}
}

// NewWithRunner creates a PDF reader with a custom command runner.
func NewWithRunner(runner CommandRunner) *Reader {
	return &Reader{runner: runner}
}

// PageCount returns the number of pages reported by pdfinfo.
func (r *Reader) PageCount(ctx context.Context, data []byte) (int, error) {
	path, cleanup, err := tempPDF(data)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	out, err := r.runner.Run(ctx, "pdfinfo", path)
	if err != nil {
		return 0, fmt.Errorf("running pdfinfo: %w", err)
	}

	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("parsing page count %q: %w", line, err)
		}
		return count, nil
	}

	return 0, fmt.Errorf("pdfinfo output has no Pages line")
}

// ExtractPage returns the text of one page (1-based) via pdftotext.
func (r *Reader) ExtractPage(ctx context.Context, data []byte, page int) (string, error) {
	if page < 1 {
		return "", fmt.Errorf("page number %d out of range", page)
	}

	path, cleanup, err := tempPDF(data)
	if err != nil {
		return "", err
	}
	defer cleanup()

	p := strconv.Itoa(page)
	out, err := r.runner.Run(ctx, "pdftotext", "-f", p, "-l", p, path, "-")
	if err != nil {
		return "", fmt.Errorf("running pdftotext: %w", err)
	}

	return string(out), nil
}

// tempPDF writes data to a temporary .pdf file and returns its path with
// a cleanup function.
func tempPDF(data []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "docqa-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("closing temp file: %w", err)
	}

	return path, func() { os.Remove(path) }, nil
}

// Available reports whether the poppler utilities are installed.
func Available() bool {
	_, err := exec.LookPath("pdftotext")
	if err != nil {
		return false
	}
	_, err = exec.LookPath("pdfinfo")
	return err == nil
}

// InstallInstructions returns platform hints for installing poppler.
func InstallInstructions() string {
	return strings.TrimSpace(`
PDF extraction requires the poppler utilities (pdftotext, pdfinfo):
  macOS:         brew install poppler
  Debian/Ubuntu: sudo apt install poppler-utils
  Fedora:        sudo dnf install poppler-utils
`)
}
