package origin

import (
	"unicode/utf8"

	"refdocs-backend/lib/htmlutil"
	"refdocs-backend/lib/pdftext"

	"golang.org/x/text/encoding/charmap"
)

// DocumentText turns a downloaded document into searchable plain text.
// PDFs go through page-by-page extraction; anything else is decoded as
// UTF-8 with a latin-1 fallback and stripped of markup.
func DocumentText(data []byte) string {
	if pdftext.IsPDF(data) {
		text, err := pdftext.Extract(data)
		if err != nil {
			return ""
		}
		return text
	}

	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return ""
		}
		text = string(decoded)
	}

	return htmlutil.StripTags(text)
}
