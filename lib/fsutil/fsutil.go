// Package fsutil derives filesystem-safe output names for downloaded
// artifacts and keeps them collision-free within an output directory.
package fsutil

import (
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-resty/resty/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// SafeFilename folds a value to ASCII and strips characters that are
// illegal on common filesystems. An empty result collapses to fallback.
func SafeFilename(value, fallback string) string {
	folded, _, err := transform.String(asciiFold, value)
	if err != nil {
		folded = value
	}

	var b strings.Builder
	for _, c := range folded {
		if c > unicode.MaxASCII {
			continue
		}
		switch c {
		case '\\', '/', '*', '?', ':', '"', '<', '>', '|':
			b.WriteRune('_')
		default:
			b.WriteRune(c)
		}
	}

	name := strings.Trim(b.String(), " .")
	if name == "" {
		return fallback
	}
	return name
}

// UniquePath returns path unchanged if nothing exists there, otherwise
// the first "<base>_<n><ext>" that is free.
func UniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		next := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(next); os.IsNotExist(err) {
			return next
		}
	}
}

// FilenameFromResponse picks an output name for a fetched document, in
// order of preference: the extended utf-8 form of the
// Content-Disposition filename, its basic form, a "filename" query
// parameter on the request URL, then the URL path's basename. Returns
// "" when none of those produce a usable name.
func FilenameFromResponse(res *resty.Response) string {
	disposition := res.Header().Get("Content-Disposition")
	if disposition != "" {
		if name := filenameFromDisposition(disposition); name != "" {
			return name
		}
	}

	link, err := url.Parse(res.Request.URL)
	if err != nil {
		return ""
	}
	if name := link.Query().Get("filename"); name != "" {
		return name
	}

	base := filepath.Base(link.Path)
	if base != "" && base != "." && base != "/" && filepath.Ext(base) != "" {
		return base
	}
	return ""
}

func filenameFromDisposition(disposition string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	// mime.ParseMediaType decodes the RFC 5987 filename* form into
	// "filename", so the extended form already wins when both appear.
	// A malformed extended value survives under its raw key.
	if name := params["filename*"]; name != "" {
		if decoded := decodeExtendedValue(name); decoded != "" {
			return decoded
		}
	}
	return params["filename"]
}

func decodeExtendedValue(value string) string {
	// RFC 5987: charset'lang'percent-encoded
	parts := strings.SplitN(value, "'", 3)
	if len(parts) != 3 {
		return ""
	}
	decoded, err := url.QueryUnescape(parts[2])
	if err != nil {
		return ""
	}
	return decoded
}

// ExtensionForContentType maps a response content type to a file
// extension, defaulting to .pdf since that is what both catalogs serve
// for documents.
func ExtensionForContentType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	switch strings.TrimSpace(strings.ToLower(contentType)) {
	case "application/pdf":
		return ".pdf"
	case "text/plain":
		return ".txt"
	case "text/html":
		return ".html"
	case "application/json":
		return ".json"
	case "application/zip":
		return ".zip"
	default:
		return ".pdf"
	}
}
