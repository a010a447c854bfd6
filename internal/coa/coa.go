// Package coa pulls plain text out of PDF certificates of analysis.
package coa

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned when the content cannot be parsed as a PDF.
var ErrNotPDF = errors.New("coa: content is not a readable PDF")

// Document is the extracted text of a certificate.
type Document struct {
	Pages int    `json:"pages"`
	Text  string `json:"text"`
}

// Read buffers r and extracts its text.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("coa: read: %w", err)
	}
	return ExtractText(bytes.NewReader(data), int64(len(data)))
}

// ExtractText concatenates the plain text of every page, one page per line block.
func ExtractText(r io.ReaderAt, size int64) (doc *Document, err error) {
	// The PDF parser panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("%w: %v", ErrNotPDF, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}

	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("coa: page %d: %w", i, err)
		}
		builder.WriteString(strings.TrimSpace(text))
		builder.WriteString("\n")
	}
	return &Document{Pages: numPages, Text: builder.String()}, nil
}
