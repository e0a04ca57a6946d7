// Package docfetch walks an ordered candidate-URL list and returns the
// first response that looks like an actual document. Both catalogs
// answer 200 with an HTML error body on broken links, so a successful
// status alone proves nothing; the content type decides.
package docfetch

import (
	"context"
	"fmt"
	"strings"

	"refdocs-backend/lib/catalog"
	"refdocs-backend/lib/pdftext"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("refdocs.scrapers.docfetch")

// IsHTML reports whether the response carries an HTML page rather than
// a document payload.
func IsHTML(res *resty.Response) bool {
	contentType := strings.ToLower(res.Header().Get("Content-Type"))
	if strings.Contains(contentType, "html") {
		return true
	}
	if contentType != "" {
		return false
	}
	body := strings.ToLower(strings.TrimSpace(string(res.Body())))
	return strings.HasPrefix(body, "<!doctype") || strings.HasPrefix(body, "<html")
}

// IsPDF reports whether the response carries a PDF payload, by content
// type or magic bytes.
func IsPDF(res *resty.Response) bool {
	contentType := strings.ToLower(res.Header().Get("Content-Type"))
	return strings.Contains(contentType, "pdf") || pdftext.IsPDF(res.Body())
}

// Fetch gets a single candidate and validates it.
func Fetch(ctx context.Context, client *resty.Client, candidate string) (*resty.Response, error) {
	res, err := client.R().SetContext(ctx).Get(candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", catalog.ErrTransport, candidate, err)
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: %s: status %d", catalog.ErrTransport, candidate, res.StatusCode())
	}
	if IsHTML(res) {
		return nil, fmt.Errorf("%w: %s", catalog.ErrFormat, candidate)
	}
	return res, nil
}

// First tries candidates in priority order and returns the first valid
// document response. Exhausting the list surfaces the last error seen.
func First(ctx context.Context, client *resty.Client, candidates []string) (*resty.Response, error) {
	ctx, span := tracer.Start(ctx, "First")
	defer span.End()

	if len(candidates) == 0 {
		return nil, catalog.ErrLinkMissing
	}

	var lastErr error
	for _, candidate := range candidates {
		res, err := Fetch(ctx, client, candidate)
		if err != nil {
			lastErr = err
			continue
		}
		return res, nil
	}

	span.SetStatus(codes.Error, lastErr.Error())
	return nil, lastErr
}
