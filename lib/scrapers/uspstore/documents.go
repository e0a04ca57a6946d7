package uspstore

import (
	"context"
	"fmt"

	"refdocs-backend/lib/catalog"
	"refdocs-backend/lib/scrapers/docfetch"
	"refdocs-backend/lib/textutil"

	"github.com/go-resty/resty/v2"
)

// FetchDocument walks the identity's candidate URLs for the document
// type and returns the first response that is an actual document.
func (c *Client) FetchDocument(ctx context.Context, identity catalog.ProductIdentity, doc catalog.DocType) (*resty.Response, error) {
	ctx, span := tracer.Start(ctx, "FetchDocument")
	defer span.End()

	candidates := identity.Documents[doc]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no %s candidates", catalog.ErrLinkMissing, doc)
	}
	return docfetch.First(ctx, c.http, candidates)
}

// templateFamily builds the static-asset candidate URLs for one group
// of product categories. Families are selected by category at data
// level so new storefront layouts only add a table row.
type templateFamily struct {
	coa func(baseUrl string, record productRecord, lots []catalog.LotRecord) []string
}

// lotAndBatchFamily assets are published per production lot.
var lotAndBatchFamily = templateFamily{
	coa: func(baseUrl string, record productRecord, lots []catalog.LotRecord) []string {
		var urls []string
		for _, lot := range lots {
			urls = append(urls, fmt.Sprintf(
				"%s/media/coa/%s-%s.pdf", baseUrl, record.Id, lot.Number))
		}
		return urls
	},
}

// submissionDossierFamily covers kits shipped with a regulatory
// dossier; the certificate lives inside the dossier tree.
var submissionDossierFamily = templateFamily{
	coa: func(baseUrl string, record productRecord, _ []catalog.LotRecord) []string {
		return []string{fmt.Sprintf(
			"%s/media/dossier/%s/certificate.pdf", baseUrl, record.Id)}
	},
}

// simpleFamily assets are keyed by product id alone.
var simpleFamily = templateFamily{
	coa: func(baseUrl string, record productRecord, _ []catalog.LotRecord) []string {
		return []string{fmt.Sprintf("%s/media/coa/%s.pdf", baseUrl, record.Id)}
	},
}

// familyByCategory maps compacted category names to their template
// family. Unknown categories fall back to simpleFamily.
var familyByCategory = map[string]templateFamily{
	"referencestandard": lotAndBatchFamily,
	"reagent":           lotAndBatchFamily,
	"compendialkit":     submissionDossierFamily,
	"submissiondossier": submissionDossierFamily,
	"publication":       simpleFamily,
	"generalsupply":     simpleFamily,
}

func familyFor(category string) templateFamily {
	if family, ok := familyByCategory[textutil.Compact(category)]; ok {
		return family
	}
	return simpleFamily
}

func sdsCandidates(baseUrl string, record productRecord) []string {
	var urls []string
	if record.SdsUrl != "" {
		urls = append(urls, record.SdsUrl)
	}
	urls = append(urls, fmt.Sprintf("%s/media/sds/%s.pdf", baseUrl, record.Id))
	return urls
}

// buildCandidates assembles the per-document candidate lists for an
// identity. Explicit links from the product record always lead, then
// the category's template family in lot priority order.
func buildCandidates(baseUrl string, record productRecord, lots []catalog.LotRecord) map[catalog.DocType][]string {
	candidates := map[catalog.DocType][]string{}

	var coa []string
	if record.CoaUrl != "" {
		coa = append(coa, record.CoaUrl)
	}
	coa = append(coa, familyFor(record.Category).coa(baseUrl, record, lots)...)
	candidates[catalog.CertificateOfAnalysis] = coa

	candidates[catalog.SafetyDataSheet] = sdsCandidates(baseUrl, record)
	return candidates
}
