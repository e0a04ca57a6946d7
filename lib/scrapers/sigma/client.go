// Package sigma pulls safety data sheets straight from the vendor's
// own site when the catalog copy is missing or broken. The vendor
// fronts everything with an anti-bot CDN, so the client impersonates a
// real browser and probes reachability once before committing to the
// slow path.
package sigma

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"refdocs-backend/lib/catalog"
	"refdocs-backend/lib/restyutil"
	"refdocs-backend/lib/scrapers/docfetch"
	"refdocs-backend/lib/telemetry"
	"refdocs-backend/lib/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("refdocs.scrapers.sigma")

// DefaultTemplates are tried in order; each is formatted with the
// compacted product code. US English first, then the other English
// locales, then the product page, which usually embeds an sds link.
var DefaultTemplates = []string{
	"https://www.sigmaaldrich.com/US/en/sds/sial/%s",
	"https://www.sigmaaldrich.com/GB/en/sds/sial/%s",
	"https://www.sigmaaldrich.com/DE/en/sds/sial/%s",
	"https://www.sigmaaldrich.com/US/en/product/sial/%s",
}

const probeTimeout = 3 * time.Second

type ClientOptions struct {
	// Templates overrides DefaultTemplates, mostly for tests.
	Templates []string
	// Impersonate wraps the transport in browser impersonation. Leave
	// off against local fixtures.
	Impersonate bool
	// ProbeAddr is the host:port dialed to check reachability before
	// any request goes out. Empty disables the probe.
	ProbeAddr string
}

type Client struct {
	options ClientOptions
	http    *resty.Client

	probeOnce sync.Once
	probeErr  error
}

func NewClient(options ClientOptions) *Client {
	if len(options.Templates) == 0 {
		options.Templates = DefaultTemplates
	}
	client := restyutil.NewClient("")
	if options.Impersonate {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	telemetry.InstrumentResty(client, "refdocs.scrapers.sigma:http")
	return &Client{
		options: options,
		http:    client,
	}
}

// Close releases the session's idle connections.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

// reachable dials the probe address once per client. An unreachable
// vendor fails every FetchSDS immediately instead of burning the full
// retry budget per template.
func (c *Client) reachable() error {
	if c.options.ProbeAddr == "" {
		return nil
	}
	c.probeOnce.Do(func() {
		conn, err := net.DialTimeout("tcp", c.options.ProbeAddr, probeTimeout)
		if err != nil {
			c.probeErr = fmt.Errorf("%w: vendor unreachable: %s", catalog.ErrTransport, err)
			return
		}
		conn.Close()
	})
	return c.probeErr
}

// FetchSDS walks the url templates and returns the first PDF found,
// following one level of HTML indirection per template. All failures
// along the way are folded into the returned error.
func (c *Client) FetchSDS(ctx context.Context, code string) (*resty.Response, error) {
	ctx, span := tracer.Start(ctx, "FetchSDS")
	defer span.End()

	if err := c.reachable(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	compact := textutil.Compact(code)
	var errlist []error
	for _, template := range c.options.Templates {
		url := fmt.Sprintf(template, compact)
		res, err := c.tryUrl(ctx, url)
		if err != nil {
			errlist = append(errlist, err)
			continue
		}
		return res, nil
	}

	err := fmt.Errorf("%w: vendor sds lookup for %q: %s",
		catalog.ErrNotFound, code, errors.Join(errlist...))
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}

// tryUrl fetches one candidate. A direct PDF wins outright; an HTML
// response gets scanned for embedded sds links and the best one is
// fetched.
func (c *Client) tryUrl(ctx context.Context, url string) (*resty.Response, error) {
	res, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", catalog.ErrTransport, url, err)
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: %s: status %d", catalog.ErrTransport, url, res.StatusCode())
	}
	if docfetch.IsPDF(res) {
		return res, nil
	}

	link := pickSheetLink(scanPdfLinks(string(res.Body())))
	if link == "" {
		return nil, fmt.Errorf("%w: %s: no sheet link in page", catalog.ErrLinkMissing, url)
	}

	linked, err := c.http.R().SetContext(ctx).Get(link)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", catalog.ErrTransport, link, err)
	}
	if linked.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: %s: status %d", catalog.ErrTransport, link, linked.StatusCode())
	}
	if !docfetch.IsPDF(linked) {
		return nil, fmt.Errorf("%w: %s", catalog.ErrFormat, link)
	}
	return linked, nil
}
