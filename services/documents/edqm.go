package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"refdocs-backend/lib/catalog"
	"refdocs-backend/lib/origin"
	"refdocs-backend/lib/scrapers/edqm"
	"refdocs-backend/lib/scrapers/sigma"
	"refdocs-backend/lib/textutil"
)

type EdqmOptions struct {
	BaseURL   string
	OutputDir string
	// Vendor configures the safety-data-sheet fallback client.
	Vendor sigma.ClientOptions
}

// Edqm downloads reference-standard documents from the EDQM database,
// with a vendor fallback for safety data sheets and origin-country
// synthesis from the origin-of-goods document.
type Edqm struct {
	options EdqmOptions
	client  *edqm.Client
	vendor  *sigma.Client
	store   store

	// current is the last resolved identity, replaced whenever a
	// different code is requested.
	current *catalog.ProductIdentity
}

func NewEdqm(options EdqmOptions) *Edqm {
	return &Edqm{options: options}
}

func (e *Edqm) Start() error {
	store, err := newStore(e.options.OutputDir, "edqm")
	if err != nil {
		return err
	}
	e.store = store
	e.client = edqm.NewClient(e.options.BaseURL)
	e.vendor = sigma.NewClient(e.options.Vendor)
	slog.Info("edqm session started", "output", store.dir)
	return nil
}

func (e *Edqm) Stop() {
	if e.client != nil {
		e.client.Close()
	}
	if e.vendor != nil {
		e.vendor.Close()
	}
	e.client = nil
	e.vendor = nil
	e.current = nil
	slog.Info("edqm session stopped")
}

func (e *Edqm) mustSession() {
	if e.client == nil {
		panic("documents: Edqm used before Start")
	}
}

func (e *Edqm) Search(ctx context.Context, code string) bool {
	e.mustSession()
	_, err := e.identityFor(ctx, code)
	return err == nil
}

// identityFor reuses the cached identity while the same code is being
// worked on and resolves afresh otherwise. A failed resolution clears
// the slot so stale identities never leak across codes.
func (e *Edqm) identityFor(ctx context.Context, code string) (catalog.ProductIdentity, error) {
	if e.current != nil && e.current.Key == textutil.Compact(code) {
		return *e.current, nil
	}
	e.current = nil

	identity, err := e.client.Resolve(ctx, code)
	if err != nil {
		slog.Warn("edqm resolution failed", "code", code, "err", err)
		return catalog.ProductIdentity{}, err
	}
	e.current = &identity
	return identity, nil
}

func (e *Edqm) ResolveDisplayName(ctx context.Context, code string) (string, error) {
	e.mustSession()
	identity, err := e.identityFor(ctx, code)
	if err != nil {
		return "", err
	}
	return identity.DisplayName, nil
}

func (e *Edqm) DownloadDocument(ctx context.Context, code string, doc catalog.DocType) catalog.Result {
	e.mustSession()
	ctx, span := tracer.Start(ctx, "Edqm.DownloadDocument")
	defer span.End()

	identity, err := e.identityFor(ctx, code)
	if err != nil {
		return catalog.Failure(code, doc, fmt.Errorf("search failed: %w", err))
	}

	switch doc {
	case catalog.CertificateOfAnalysis:
		return e.downloadDirect(ctx, identity, code, doc)
	case catalog.SafetyDataSheet:
		return e.downloadSDS(ctx, identity, code)
	case catalog.CertificateOfOrigin:
		return e.downloadOrigin(ctx, identity, code)
	}
	return catalog.Failure(code, doc, fmt.Errorf("unknown document type %q", doc))
}

func (e *Edqm) downloadDirect(ctx context.Context, identity catalog.ProductIdentity, code string, doc catalog.DocType) catalog.Result {
	res, err := e.client.FetchDocument(ctx, identity, doc)
	if err != nil {
		return catalog.Failure(code, doc, err)
	}
	path, err := e.store.saveDocument(res, code, doc)
	if err != nil {
		return catalog.Failure(code, doc, err)
	}
	slog.Info("downloaded document", "source", "edqm", "code", code, "doc", doc, "path", path)
	return catalog.Success(code, doc, path)
}

// downloadSDS tries the database's own sheet first and escalates to
// the vendor site on any failure. Both failures are reported together
// so the log shows which stage broke.
func (e *Edqm) downloadSDS(ctx context.Context, identity catalog.ProductIdentity, code string) catalog.Result {
	doc := catalog.SafetyDataSheet

	res, primaryErr := e.client.ResolveSDS(ctx, identity)
	if primaryErr != nil {
		slog.Info("falling back to vendor sds", "code", code, "err", primaryErr)
		var vendorErr error
		res, vendorErr = e.vendor.FetchSDS(ctx, code)
		if vendorErr != nil {
			return catalog.Failure(code, doc, errors.Join(primaryErr, vendorErr))
		}
	}

	path, err := e.store.saveDocument(res, code, doc)
	if err != nil {
		return catalog.Failure(code, doc, err)
	}
	slog.Info("downloaded document", "source", "edqm", "code", code, "doc", doc, "path", path)
	return catalog.Success(code, doc, path)
}

// downloadOrigin fetches the origin-of-goods document, mines it for
// the country and stores the country as a text artifact. The binary
// document itself is not kept.
func (e *Edqm) downloadOrigin(ctx context.Context, identity catalog.ProductIdentity, code string) catalog.Result {
	doc := catalog.CertificateOfOrigin

	res, err := e.client.FetchDocument(ctx, identity, doc)
	if err != nil {
		return catalog.Failure(code, doc, err)
	}

	country, found := origin.Extract(origin.DocumentText(res.Body()), code)
	if !found {
		slog.Warn("origin extraction failed", "code", code, "err", catalog.ErrExtractionEmpty)
	}

	path, err := e.store.saveCountry(country, code)
	if err != nil {
		return catalog.Failure(code, doc, err)
	}
	slog.Info("saved origin country", "code", code, "country", country, "path", path)
	return catalog.Success(code, doc, path)
}

func (e *Edqm) DownloadAll(ctx context.Context, code string) []catalog.Result {
	e.mustSession()
	return downloadAll(ctx, e, code, catalog.AllDocTypes)
}
