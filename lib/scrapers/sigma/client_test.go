package sigma

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"refdocs-backend/lib/catalog"

	"github.com/stretchr/testify/require"
)

func TestScanPdfLinks(t *testing.T) {
	body := `<html>
<a href="https://cdn.example.com/docs/plain.pdf">plain</a>
<script>var data = {"url": "https:\/\/cdn.example.com\/sds\/US\/en\/y0001532.pdf"};</script>
<a href="https://cdn.example.com/docs/plain.pdf">duplicate</a>
</html>`

	links := scanPdfLinks(body)
	require.Equal(t, []string{
		"https://cdn.example.com/docs/plain.pdf",
		"https://cdn.example.com/sds/US/en/y0001532.pdf",
	}, links)
}

func TestPickSheetLink(t *testing.T) {
	for _, tt := range []struct {
		name     string
		links    []string
		expected string
	}{
		{
			"english sds beats plain sds",
			[]string{
				"https://x/sds/de/a.pdf",
				"https://x/sds/en/a.pdf",
			},
			"https://x/sds/en/a.pdf",
		},
		{
			"plain sds beats unrelated",
			[]string{
				"https://x/brochure.pdf",
				"https://x/sds/a.pdf",
			},
			"https://x/sds/a.pdf",
		},
		{
			"first link as last resort",
			[]string{"https://x/one.pdf", "https://x/two.pdf"},
			"https://x/one.pdf",
		},
		{"nothing", nil, ""},
	} {
		require.Equal(t, tt.expected, pickSheetLink(tt.links), tt.name)
	}
}

func TestFetchSDSSecondTemplateWins(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/first/y0001532", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/second/y0001532", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 sheet"))
	})
	var thirdHit bool
	mux.HandleFunc("/third/y0001532", func(w http.ResponseWriter, r *http.Request) {
		thirdHit = true
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(ClientOptions{
		Templates: []string{
			server.URL + "/first/%s",
			server.URL + "/second/%s",
			server.URL + "/third/%s",
		},
	})

	res, err := client.FetchSDS(context.Background(), "Y-0001532")
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 sheet", string(res.Body()))
	require.False(t, thirdHit)
}

func TestFetchSDSFollowsEmbeddedLink(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/product/y0001532", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><script>{"pdf":"%s"}</script></html>`,
			`http:\/\/`+r.Host+`\/sds\/en\/y0001532.pdf`)
	})
	mux.HandleFunc("/sds/en/y0001532.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 embedded"))
	})

	client := NewClient(ClientOptions{
		Templates: []string{server.URL + "/product/%s"},
	})

	res, err := client.FetchSDS(context.Background(), "Y0001532")
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 embedded", string(res.Body()))
}

func TestFetchSDSCollectsAllFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(ClientOptions{
		Templates: []string{
			server.URL + "/a/%s",
			server.URL + "/b/%s",
		},
	})

	_, err := client.FetchSDS(context.Background(), "Y0001532")
	require.ErrorIs(t, err, catalog.ErrNotFound)
	require.Contains(t, err.Error(), "/a/y0001532")
	require.Contains(t, err.Error(), "/b/y0001532")
}

func TestUnreachableVendorFailsFast(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		hits++
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(ClientOptions{
		Templates: []string{server.URL + "/%s"},
		// reserved port, nothing listens here
		ProbeAddr: "127.0.0.1:1",
	})

	_, err := client.FetchSDS(context.Background(), "Y0001532")
	require.ErrorIs(t, err, catalog.ErrTransport)

	// the cached probe result skips the templates on later calls too
	_, err = client.FetchSDS(context.Background(), "Y0009999")
	require.ErrorIs(t, err, catalog.ErrTransport)
	require.Zero(t, hits)
}
