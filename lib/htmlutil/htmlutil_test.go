package htmlutil

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<body>
			<a href="/db/view?id=1">  Y0001532
			</a>
			<a href="/leaflet/y0001532.pdf">Certificate  of Analysis</a>
			<a>no href</a>
		</body>
	`))
	require.NoError(t, err)

	anchors := GetAnchors(context.Background(), doc.Find("a"))
	require.Len(t, anchors, 3)
	require.Equal(t, Anchor{Name: "Y0001532", Href: "/db/view?id=1"}, anchors[0])
	require.Equal(t, Anchor{Name: "Certificate of Analysis", Href: "/leaflet/y0001532.pdf"}, anchors[1])
	require.Equal(t, "", anchors[2].Href)
}

func TestStripTags(t *testing.T) {
	out := StripTags("<tr><td>Country of Origin:</td><td>France</td></tr>")
	require.Contains(t, out, "Country of Origin:")
	require.Contains(t, out, "France")
	require.NotContains(t, out, "<td>")
}

func TestResolveRef(t *testing.T) {
	require.Equal(
		t,
		"https://example.org/db/view?id=1",
		ResolveRef("https://example.org/db/search", "view?id=1"),
	)
	require.Equal(
		t,
		"https://other.org/a.pdf",
		ResolveRef("https://example.org", "https://other.org/a.pdf"),
	)
}
