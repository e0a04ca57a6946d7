package documents

import (
	"context"
	"fmt"
	"log/slog"

	"refdocs-backend/lib/catalog"
	"refdocs-backend/lib/scrapers/uspstore"
	"refdocs-backend/lib/textutil"
)

type UspOptions struct {
	BaseURL   string
	OutputDir string
}

// Usp downloads reference-standard documents from the USP store. The
// store exposes origin countries structurally on its lot records, so
// the origin artifact is synthesized without fetching any document.
type Usp struct {
	options UspOptions
	client  *uspstore.Client
	store   store

	current *catalog.ProductIdentity
}

func NewUsp(options UspOptions) *Usp {
	return &Usp{options: options}
}

func (u *Usp) Start() error {
	store, err := newStore(u.options.OutputDir, "usp")
	if err != nil {
		return err
	}
	u.store = store
	u.client = uspstore.NewClient(u.options.BaseURL)
	slog.Info("usp session started", "output", store.dir)
	return nil
}

func (u *Usp) Stop() {
	if u.client != nil {
		u.client.Close()
	}
	u.client = nil
	u.current = nil
	slog.Info("usp session stopped")
}

func (u *Usp) mustSession() {
	if u.client == nil {
		panic("documents: Usp used before Start")
	}
}

func (u *Usp) Search(ctx context.Context, code string) bool {
	u.mustSession()
	_, err := u.identityFor(ctx, code)
	return err == nil
}

func (u *Usp) identityFor(ctx context.Context, code string) (catalog.ProductIdentity, error) {
	if u.current != nil && u.current.Key == textutil.Compact(code) {
		return *u.current, nil
	}
	u.current = nil

	identity, err := u.client.Resolve(ctx, code)
	if err != nil {
		slog.Warn("usp resolution failed", "code", code, "err", err)
		return catalog.ProductIdentity{}, err
	}
	u.current = &identity
	return identity, nil
}

func (u *Usp) ResolveDisplayName(ctx context.Context, code string) (string, error) {
	u.mustSession()
	identity, err := u.identityFor(ctx, code)
	if err != nil {
		return "", err
	}
	return identity.DisplayName, nil
}

func (u *Usp) DownloadDocument(ctx context.Context, code string, doc catalog.DocType) catalog.Result {
	u.mustSession()
	ctx, span := tracer.Start(ctx, "Usp.DownloadDocument")
	defer span.End()

	identity, err := u.identityFor(ctx, code)
	if err != nil {
		return catalog.Failure(code, doc, fmt.Errorf("search failed: %w", err))
	}

	switch doc {
	case catalog.CertificateOfAnalysis, catalog.SafetyDataSheet:
		return u.downloadDirect(ctx, identity, code, doc)
	case catalog.CertificateOfOrigin:
		return u.saveOrigin(identity, code)
	}
	return catalog.Failure(code, doc, fmt.Errorf("unknown document type %q", doc))
}

func (u *Usp) downloadDirect(ctx context.Context, identity catalog.ProductIdentity, code string, doc catalog.DocType) catalog.Result {
	res, err := u.client.FetchDocument(ctx, identity, doc)
	if err != nil {
		return catalog.Failure(code, doc, err)
	}
	path, err := u.store.saveDocument(res, code, doc)
	if err != nil {
		return catalog.Failure(code, doc, err)
	}
	slog.Info("downloaded document", "source", "usp", "code", code, "doc", doc, "path", path)
	return catalog.Success(code, doc, path)
}

// saveOrigin reads the origin country from the currently-active lot,
// falling back to the product-level field.
func (u *Usp) saveOrigin(identity catalog.ProductIdentity, code string) catalog.Result {
	doc := catalog.CertificateOfOrigin

	country := uspstore.ActiveCountry(identity.Lots)
	if country == "" {
		country = identity.Country
	}
	if country == "" {
		slog.Warn("no origin country on product record", "code", code)
	}

	path, err := u.store.saveCountry(country, code)
	if err != nil {
		return catalog.Failure(code, doc, err)
	}
	slog.Info("saved origin country", "code", code, "country", country, "path", path)
	return catalog.Success(code, doc, path)
}

func (u *Usp) DownloadAll(ctx context.Context, code string) []catalog.Result {
	u.mustSession()
	return downloadAll(ctx, u, code, catalog.AllDocTypes)
}
