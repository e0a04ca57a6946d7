// Package documents exposes the per-catalog downloaders behind one
// interface: resolve a catalogue code, pull its certificate of
// analysis, safety data sheet and origin certificate, and persist the
// artifacts under the output directory.
package documents

import (
	"context"
	"fmt"

	"refdocs-backend/lib/catalog"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("refdocs.services.documents")

// Downloader is one catalog's document acquisition session. Start must
// be called before any other method; using an unstarted session is a
// programming error and panics.
type Downloader interface {
	Start() error
	Stop()
	// Search resolves a catalogue code and caches the identity for the
	// following download calls. It reports whether the product exists;
	// resolution failures are logged, never returned.
	Search(ctx context.Context, code string) bool
	// ResolveDisplayName returns the product name for a code.
	ResolveDisplayName(ctx context.Context, code string) (string, error)
	// DownloadDocument fetches and persists one document type for a
	// previously searched code.
	DownloadDocument(ctx context.Context, code string, doc catalog.DocType) catalog.Result
	// DownloadAll fetches every supported document type for a code.
	DownloadAll(ctx context.Context, code string) []catalog.Result
}

// downloadAll is the shared DownloadAll skeleton: a failed search
// fails every document type with the same message instead of
// attempting downloads that cannot succeed.
func downloadAll(ctx context.Context, d Downloader, code string, docs []catalog.DocType) []catalog.Result {
	ctx, span := tracer.Start(ctx, "downloadAll")
	defer span.End()

	var results []catalog.Result
	if !d.Search(ctx, code) {
		for _, doc := range docs {
			results = append(results, catalog.Failure(
				code, doc, fmt.Errorf("search failed: %w", catalog.ErrNotFound)))
		}
		return results
	}

	for _, doc := range docs {
		results = append(results, d.DownloadDocument(ctx, code, doc))
	}
	return results
}
