package sigma

import (
	"regexp"
	"strings"
)

// pdf urls also appear inside inline json with escaped slashes, so the
// pattern tolerates both "/" and "\/" separators.
var pdfLinkPattern = regexp.MustCompile(`https?:(?:\\/|/){2}[^\s"'<>\\]+(?:(?:\\/)[^\s"'<>\\]+)*\.pdf`)

// scanPdfLinks pulls every pdf url out of a page body, unescaping the
// json-embedded form.
func scanPdfLinks(body string) []string {
	matches := pdfLinkPattern.FindAllString(body, -1)
	links := make([]string, 0, len(matches))
	seen := map[string]bool{}
	for _, m := range matches {
		link := strings.ReplaceAll(m, `\/`, "/")
		if seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}
	return links
}

// pickSheetLink ranks the scanned links: an sds path with an English
// locale segment beats a bare sds path, which beats anything else.
func pickSheetLink(links []string) string {
	var anySds string
	for _, link := range links {
		lower := strings.ToLower(link)
		if !strings.Contains(lower, "sds") {
			continue
		}
		if strings.Contains(lower, "/en/") || strings.Contains(lower, "-en-") ||
			strings.Contains(lower, "_en") {
			return link
		}
		if anySds == "" {
			anySds = link
		}
	}
	if anySds != "" {
		return anySds
	}
	if len(links) > 0 {
		return links[0]
	}
	return ""
}
