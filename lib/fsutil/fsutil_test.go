package fsutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestSafeFilename(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"France", "France"},
		{"Côte d'Ivoire", "Cote d'Ivoire"},
		{`a/b\c:d*e?f"g<h>i|j`, "a_b_c_d_e_f_g_h_i_j"},
		{" .. ", "Unknown_Country"},
		{"", "Unknown_Country"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, SafeFilename(test.in, "Unknown_Country"))
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()

	first := filepath.Join(dir, "France.txt")
	require.Equal(t, first, UniquePath(first))

	require.NoError(t, os.WriteFile(first, []byte("France\n"), 0644))
	require.Equal(t, filepath.Join(dir, "France_1.txt"), UniquePath(first))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "France_1.txt"), nil, 0644))
	require.Equal(t, filepath.Join(dir, "France_2.txt"), UniquePath(first))
}

func fetch(t *testing.T, handler http.HandlerFunc, path string) *resty.Response {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	res, err := resty.New().R().Get(server.URL + path)
	require.NoError(t, err)
	return res
}

func TestFilenameFromResponse(t *testing.T) {
	res := fetch(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="coa-y0001532.pdf"`)
	}, "/download")
	require.Equal(t, "coa-y0001532.pdf", FilenameFromResponse(res))

	res = fetch(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(
			"Content-Disposition",
			`attachment; filename="plain.pdf"; filename*=UTF-8''s%C3%BCd.pdf`,
		)
	}, "/download")
	require.Equal(t, "süd.pdf", FilenameFromResponse(res))

	res = fetch(t, func(w http.ResponseWriter, r *http.Request) {}, "/get?filename=from-query.pdf")
	require.Equal(t, "from-query.pdf", FilenameFromResponse(res))

	res = fetch(t, func(w http.ResponseWriter, r *http.Request) {}, "/docs/msds-1134357.pdf")
	require.Equal(t, "msds-1134357.pdf", FilenameFromResponse(res))

	res = fetch(t, func(w http.ResponseWriter, r *http.Request) {}, "/docs/")
	require.Equal(t, "", FilenameFromResponse(res))
}

func TestExtensionForContentType(t *testing.T) {
	require.Equal(t, ".pdf", ExtensionForContentType("application/pdf"))
	require.Equal(t, ".txt", ExtensionForContentType("text/plain; charset=utf-8"))
	require.Equal(t, ".pdf", ExtensionForContentType("application/octet-stream"))
}
