package edqm

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"refdocs-backend/lib/catalog"
	"refdocs-backend/lib/htmlutil"
	"refdocs-backend/lib/scrapers/docfetch"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// FetchDocument downloads the given document kind for a previously
// resolved identity. SDS links need an extra hop, see ResolveSDS.
func (c *Client) FetchDocument(ctx context.Context, identity catalog.ProductIdentity, doc catalog.DocType) (*resty.Response, error) {
	ctx, span := tracer.Start(ctx, "FetchDocument")
	defer span.End()

	candidates := identity.Documents[doc]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no %s link on detail page", catalog.ErrLinkMissing, doc)
	}
	return docfetch.First(ctx, c.http, candidates)
}

// ResolveSDS follows the detail page's safety-data-sheet link, which
// lands on a language chooser rather than the sheet itself, and
// downloads the English variant. Pages that link the PDF directly
// still work since a non-HTML response short-circuits the hop.
func (c *Client) ResolveSDS(ctx context.Context, identity catalog.ProductIdentity) (*resty.Response, error) {
	ctx, span := tracer.Start(ctx, "ResolveSDS")
	defer span.End()

	candidates := identity.Documents[catalog.SafetyDataSheet]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no safety data sheet link on detail page", catalog.ErrLinkMissing)
	}

	pageUrl := candidates[0]
	res, err := c.http.R().SetContext(ctx).Get(pageUrl)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", catalog.ErrTransport, pageUrl, err)
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: %s: status %d", catalog.ErrTransport, pageUrl, res.StatusCode())
	}
	if !docfetch.IsHTML(res) {
		return res, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, err
	}
	sheet := pickEnglishSheet(htmlutil.GetAnchors(ctx, doc.Find("a")))
	if sheet == "" {
		return nil, fmt.Errorf("%w: no sheet link on %s", catalog.ErrLinkMissing, pageUrl)
	}
	return docfetch.Fetch(ctx, c.http, htmlutil.ResolveRef(pageUrl, sheet))
}

// pickEnglishSheet prefers the anchor labelled or suffixed English and
// falls back to the first pdf-looking link.
func pickEnglishSheet(anchors []htmlutil.Anchor) string {
	first := ""
	for _, a := range anchors {
		href := strings.ToLower(a.Href)
		if !strings.Contains(href, ".pdf") {
			continue
		}
		if first == "" {
			first = a.Href
		}
		name := strings.ToLower(a.Name)
		if strings.Contains(name, "english") ||
			strings.HasSuffix(strings.TrimSuffix(href, ".pdf"), "_en") ||
			strings.HasSuffix(strings.TrimSuffix(href, ".pdf"), "-en") {
			return a.Href
		}
	}
	return first
}
