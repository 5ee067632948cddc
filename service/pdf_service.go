package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/docchat-io/docchat-be/types"
)

// TextExtractor pulls the full plain text out of a document file on disk.
type TextExtractor interface {
	ExtractText(ctx context.Context, filePath string) (string, error)
}

// PDFService extracts plain text from PDF files via poppler's pdftotext.
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// ExtractText returns the whole document's text. It fails with
// types.ErrParseError when the file is unreadable or yields no text, so a
// document is never indexed without retrievable content.
func (s *PDFService) ExtractText(ctx context.Context, filePath string) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext",
		"-enc", "UTF-8", "-nopgbrk",
		filePath, "-")
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: pdftotext: %v: %s", types.ErrParseError, err, strings.TrimSpace(stderr.String()))
	}

	text := s.cleanText(out.String())
	if text == "" {
		return "", fmt.Errorf("%w: document contains no extractable text", types.ErrParseError)
	}
	return text, nil
}

func (s *PDFService) cleanText(text string) string {
	replacements := map[string]string{
		"\x00":   "",   // Null character
		"�": "",   // Unicode replacement character
		"\x1b":   "",   // Escape character
		"\r":     "",   // Carriage return
		"\f":     "\n", // Form feed to newline
	}
	cleaned := text
	for old, new := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, new)
	}
	return strings.TrimSpace(cleaned)
}
