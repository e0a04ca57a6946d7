package origin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractLabelPatterns(t *testing.T) {
	testCases := []struct {
		text     string
		expected string
	}{
		{"Country of Origin: France", "France"},
		{"country of origin - Germany", "Germany"},
		{"Origin Country: the United Kingdom", "United Kingdom"},
		{"Manufactured in Switzerland.", "Switzerland"},
		{"COUNTRY OF ORIGIN: INDIA", "India"},
	}

	for _, test := range testCases {
		country, ok := Extract(test.text, "Y0001532")
		require.True(t, ok, test.text)
		require.Equal(t, test.expected, country)
	}
}

func TestExtractCodeRow(t *testing.T) {
	text := strings.Join([]string{
		"Certificate of Origin of Goods",
		"Y0001532  Batch 4  Origin: synthetic France",
		"some other row",
	}, "\n")

	country, ok := Extract(text, "Y-0001532")
	require.True(t, ok)
	require.Equal(t, "France", country)
}

func TestExtractNextLine(t *testing.T) {
	text := "Country of Origin\nJapan\n"
	country, ok := Extract(text, "")
	require.True(t, ok)
	require.Equal(t, "Japan", country)
}

func TestExtractNoMatch(t *testing.T) {
	testCases := []string{
		"",
		"no geographic information here",
		"Country of Origin: 12345",
		"Country of Origin: one two three four five six seven",
		"Country of Origin: see certificate of origin",
	}
	for _, text := range testCases {
		country, ok := Extract(text, "Y0001532")
		require.False(t, ok, text)
		require.Equal(t, "", country)
	}
}

func TestExtractNeverReturnsDigitsOrLongValues(t *testing.T) {
	texts := []string{
		"Country of Origin: France 75",
		"Manufactured in: Lot 42",
		"Country of Origin: a very long rambling clause that cannot be a country",
	}
	for _, text := range texts {
		country, _ := Extract(text, "")
		require.NotContains(t, country, "0")
		require.LessOrEqual(t, len(strings.Fields(country)), 6)
	}
}

func TestClean(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"France", "France"},
		{"  france ; shipped via Rotterdam", "France"},
		{"is   Germany.", "Germany"},
		{"the Netherlands", "Netherlands"},
		{"France 75", ""},
		{"country of origin", ""},
		{"", ""},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, Clean(test.in), test.in)
	}
}

func TestDocumentTextStripsTags(t *testing.T) {
	text := DocumentText([]byte("<tr><td>Country of Origin:</td><td>France</td></tr>"))
	country, ok := Extract(text, "")
	require.True(t, ok)
	require.Equal(t, "France", country)
}

func TestDocumentTextLatin1Fallback(t *testing.T) {
	// 0xe9 is not valid utf-8 on its own
	text := DocumentText([]byte{'o', 'r', 'i', 'g', 'i', 'n', ':', ' ', 0xe9})
	require.Contains(t, text, "origin")
}
