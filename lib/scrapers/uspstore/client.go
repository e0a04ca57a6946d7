// Package uspstore resolves reference standards through the store's
// product API and builds document candidate lists from explicit links
// plus the templated static-asset URLs the storefront itself uses.
package uspstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"refdocs-backend/lib/catalog"
	"refdocs-backend/lib/restyutil"
	"refdocs-backend/lib/telemetry"
	"refdocs-backend/lib/textutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("refdocs.scrapers.uspstore")

type Client struct {
	baseUrl string
	http    *resty.Client
}

func NewClient(baseUrl string) *Client {
	http := restyutil.NewClient(baseUrl)
	telemetry.InstrumentResty(http, "refdocs.scrapers.uspstore:http")
	return &Client{
		baseUrl: baseUrl,
		http:    http,
	}
}

// Close releases the session's idle connections.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

// productRecord mirrors the store's product payload. lotData is the
// raw delimited lot field, see ParseLots.
type productRecord struct {
	Id              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	CoaUrl          string `json:"coaUrl"`
	SdsUrl          string `json:"sdsUrl"`
	LotData         string `json:"lotData"`
	CountryOfOrigin string `json:"countryOfOrigin"`
}

type searchResponse struct {
	Results []struct {
		Products []struct {
			Id string `json:"id"`
		} `json:"products"`
	} `json:"results"`
}

// Resolve fetches the product by catalogue number, falling back to the
// search endpoint when the direct lookup misses, and returns the
// identity with its candidate URLs already ordered.
func (c *Client) Resolve(ctx context.Context, code string) (catalog.ProductIdentity, error) {
	ctx, span := tracer.Start(ctx, "Resolve")
	defer span.End()

	record, err := c.fetchProduct(ctx, code)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			span.SetStatus(codes.Error, err.Error())
			return catalog.ProductIdentity{}, err
		}
		id, searchErr := c.searchProductId(ctx, code)
		if searchErr != nil {
			span.SetStatus(codes.Error, searchErr.Error())
			return catalog.ProductIdentity{}, searchErr
		}
		record, err = c.fetchProduct(ctx, id)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return catalog.ProductIdentity{}, err
		}
	}

	lots := SelectLots(ParseLots(record.LotData))

	identity := catalog.ProductIdentity{
		Key:         textutil.Compact(code),
		DisplayName: record.Name,
		DetailURL:   c.baseUrl + "/api/products/" + record.Id,
		Documents:   buildCandidates(c.baseUrl, record, lots),
		Lots:        lots,
		Country:     record.CountryOfOrigin,
	}
	return identity, nil
}

func (c *Client) fetchProduct(ctx context.Context, id string) (productRecord, error) {
	res, err := c.http.R().SetContext(ctx).Get("/api/products/" + id)
	if err != nil {
		return productRecord{}, fmt.Errorf("%w: product %s: %s", catalog.ErrTransport, id, err)
	}
	if res.StatusCode() == 404 {
		return productRecord{}, fmt.Errorf("%w: product %s", catalog.ErrNotFound, id)
	}
	if res.StatusCode() != 200 {
		return productRecord{}, fmt.Errorf("%w: product %s: status %d", catalog.ErrTransport, id, res.StatusCode())
	}

	var record productRecord
	if err := json.Unmarshal(res.Body(), &record); err != nil {
		return productRecord{}, fmt.Errorf("%w: product %s: %s", catalog.ErrFormat, id, err)
	}
	return record, nil
}

// searchProductId prefers the hit whose compacted id equals the
// requested code and falls back to the first hit.
func (c *Client) searchProductId(ctx context.Context, code string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", code).
		Get("/api/search")
	if err != nil {
		return "", fmt.Errorf("%w: search: %s", catalog.ErrTransport, err)
	}
	if res.StatusCode() != 200 {
		return "", fmt.Errorf("%w: search: status %d", catalog.ErrTransport, res.StatusCode())
	}

	var response searchResponse
	if err := json.Unmarshal(res.Body(), &response); err != nil {
		return "", fmt.Errorf("%w: search: %s", catalog.ErrFormat, err)
	}

	compact := textutil.Compact(code)
	first := ""
	for _, result := range response.Results {
		for _, product := range result.Products {
			if product.Id == "" {
				continue
			}
			if textutil.Compact(product.Id) == compact {
				return product.Id, nil
			}
			if first == "" {
				first = product.Id
			}
		}
	}
	if first == "" {
		return "", fmt.Errorf("%w: no search result for %q", catalog.ErrNotFound, code)
	}
	return first, nil
}
