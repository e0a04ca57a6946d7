// Package pdftext extracts plain text from PDF documents, page by
// page. Extraction is best-effort: a page that cannot be decoded
// contributes empty text instead of failing the whole document, since
// the caller only needs enough text for pattern matching.
package pdftext

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// IsPDF reports whether the payload starts with the PDF magic bytes.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}

// Extract returns the concatenated text of every page. Only a document
// that cannot be opened at all yields an error.
func Extract(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		pages = append(pages, pageText(reader, i))
	}
	return strings.Join(pages, "\n"), nil
}

func pageText(reader *pdf.Reader, num int) (text string) {
	// the pdf library panics on some malformed content streams;
	// treat those pages as empty
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
