// Package edqm scrapes the EDQM reference-standard database. The site
// has no API; product resolution goes through the public search
// endpoint and the per-substance detail page.
package edqm

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"refdocs-backend/lib/catalog"
	"refdocs-backend/lib/htmlutil"
	"refdocs-backend/lib/restyutil"
	"refdocs-backend/lib/telemetry"
	"refdocs-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("refdocs.scrapers.edqm")

const searchPath = "/db/4DCGI/Search"

type Client struct {
	baseUrl string
	http    *resty.Client
}

func NewClient(baseUrl string) *Client {
	http := restyutil.NewClient(baseUrl)
	telemetry.InstrumentResty(http, "refdocs.scrapers.edqm:http")
	return &Client{
		baseUrl: baseUrl,
		http:    http,
	}
}

// Close releases the session's idle connections.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

// Resolve looks up a catalogue code and returns the product identity
// with its document links classified. The search page is matched on
// compacted text so "Y0001532" finds the row labelled "Y-0001532".
func (c *Client) Resolve(ctx context.Context, code string) (catalog.ProductIdentity, error) {
	ctx, span := tracer.Start(ctx, "Resolve")
	defer span.End()

	compact := textutil.Compact(code)

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("vSearchCriteria", code).
		Get(searchPath)
	if err != nil {
		return catalog.ProductIdentity{}, fmt.Errorf("%w: search: %s", catalog.ErrTransport, err)
	}
	if res.StatusCode() != 200 {
		return catalog.ProductIdentity{}, fmt.Errorf("%w: search: status %d", catalog.ErrTransport, res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return catalog.ProductIdentity{}, err
	}

	detailHref := ""
	for _, a := range htmlutil.GetAnchors(ctx, doc.Find("a")) {
		if strings.Contains(textutil.Compact(a.Name), compact) {
			detailHref = a.Href
			break
		}
	}
	if detailHref == "" {
		err := fmt.Errorf("%w: no search result for %q", catalog.ErrNotFound, code)
		span.SetStatus(codes.Error, err.Error())
		return catalog.ProductIdentity{}, err
	}

	return c.resolveDetail(ctx, code, htmlutil.ResolveRef(c.baseUrl, detailHref))
}

func (c *Client) resolveDetail(ctx context.Context, code, detailUrl string) (catalog.ProductIdentity, error) {
	ctx, span := tracer.Start(ctx, "resolveDetail")
	defer span.End()

	res, err := c.http.R().SetContext(ctx).Get(detailUrl)
	if err != nil {
		return catalog.ProductIdentity{}, fmt.Errorf("%w: detail: %s", catalog.ErrTransport, err)
	}
	if res.StatusCode() != 200 {
		return catalog.ProductIdentity{}, fmt.Errorf("%w: detail: status %d", catalog.ErrTransport, res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return catalog.ProductIdentity{}, err
	}

	identity := catalog.ProductIdentity{
		Key:       textutil.Compact(code),
		DetailURL: detailUrl,
		Documents: map[catalog.DocType][]string{},
	}

	// the detail page is a key/value table; the substance name sits in
	// the row labelled "Name"
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return true
		}
		if textutil.Compact(cells.First().Text()) == "name" {
			identity.DisplayName = textutil.CollapseWhitespace(cells.Eq(1).Text())
			return false
		}
		return true
	})
	if identity.DisplayName == "" {
		identity.DisplayName = code
	}

	for _, a := range htmlutil.GetAnchors(ctx, doc.Find("a")) {
		href := htmlutil.ResolveRef(detailUrl, a.Href)
		switch {
		case strings.Contains(strings.ToLower(a.Href), "leaflet"):
			identity.Documents[catalog.CertificateOfAnalysis] = append(
				identity.Documents[catalog.CertificateOfAnalysis], href)
		case textutil.MatchName(a.Name, []string{"safetydatasheet"}) &&
			!textutil.MatchName(a.Name, []string{"productcode"}):
			identity.Documents[catalog.SafetyDataSheet] = append(
				identity.Documents[catalog.SafetyDataSheet], href)
		case strings.Contains(textutil.Compact(a.Href), "originofgoods"):
			identity.Documents[catalog.CertificateOfOrigin] = append(
				identity.Documents[catalog.CertificateOfOrigin], href)
		}
	}

	return identity, nil
}
