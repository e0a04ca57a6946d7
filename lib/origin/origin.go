// Package origin derives an origin-country string from unstructured
// document content. The EDQM certificate-of-origin documents carry the
// country only in free text, so extraction runs an ordered chain of
// strategies, each returning an optional candidate; the first candidate
// surviving the cleaning filters wins. When no strategy produces a
// confident match, Extract reports no value rather than guessing.
package origin

import (
	"regexp"
	"strings"

	"refdocs-backend/lib/textutil"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type strategy func(text, compactCode string) string

// ordered: the code-row form is the most specific, the generic label
// patterns next, the loose line scan last
var strategies = []strategy{
	extractFromCodeRow,
	extractFromLabels,
	extractFromLines,
}

// Extract runs the strategy chain over document text. code may be empty
// when the caller has no catalogue code to anchor on.
func Extract(text, code string) (string, bool) {
	compact := textutil.Compact(code)
	for _, s := range strategies {
		if candidate := s(text, compact); candidate != "" {
			return candidate, true
		}
	}
	return "", false
}

var labelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)country\s*of\s*origin\s*[:\-]\s*([A-Za-z][A-Za-z\s\-',().]{1,80})`),
	regexp.MustCompile(`(?i)origin\s*country\s*[:\-]\s*([A-Za-z][A-Za-z\s\-',().]{1,80})`),
	regexp.MustCompile(`(?i)manufactured\s*in\s*[:\-]?\s*([A-Za-z][A-Za-z\s\-',().]{1,80})`),
}

// labelWords are field labels that may precede the country in a table
// row; they are never part of a country name.
var labelWords = map[string]bool{
	"origin":    true,
	"country":   true,
	"of":        true,
	"the":       true,
	"goods":     true,
	"batch":     true,
	"lot":       true,
	"catalogue": true,
	"catalog":   true,
	"code":      true,
}

// materialQualifiers describe the material's origin class and can sit
// directly before the true country name.
var materialQualifiers = map[string]bool{
	"synthetic":  true,
	"vegetal":    true,
	"vegetable":  true,
	"animal":     true,
	"mineral":    true,
	"biological": true,
}

// structuralKeywords surviving cleaning indicate a mis-segmented match,
// not a country.
var structuralKeywords = []string{
	"origin", "batch", "catalogue", "catalog", "certificate",
}

func extractFromCodeRow(text, compactCode string) string {
	if compactCode == "" {
		return ""
	}
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(textutil.Compact(line), compactCode) {
			continue
		}

		segment := line
		if idx := strings.LastIndexAny(line, ":;|\t"); idx != -1 && idx+1 < len(line) {
			segment = line[idx+1:]
		}

		words := strings.Fields(segment)
		for len(words) > 0 && skippableRowWord(words[0]) {
			words = words[1:]
		}
		if candidate := Clean(strings.Join(words, " ")); candidate != "" {
			return candidate
		}
	}
	return ""
}

func skippableRowWord(word string) bool {
	word = strings.ToLower(strings.Trim(word, " .,:()-"))
	if word == "" || strings.ContainsAny(word, "0123456789") {
		return true
	}
	return labelWords[word] || materialQualifiers[word]
}

func extractFromLabels(text, _ string) string {
	for _, pattern := range labelPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if candidate := Clean(match[1]); candidate != "" {
			return candidate
		}
	}
	return ""
}

func extractFromLines(text, _ string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	for idx, line := range lines {
		normalized := strings.ToLower(line)
		if !strings.Contains(normalized, "country of origin") &&
			!strings.Contains(normalized, "origin country") {
			continue
		}

		if _, after, found := strings.Cut(line, ":"); found {
			if candidate := Clean(after); candidate != "" {
				return candidate
			}
		}
		if idx+1 < len(lines) {
			if candidate := Clean(lines[idx+1]); candidate != "" {
				return candidate
			}
		}
	}
	return ""
}

var clauseSplit = regexp.MustCompile(`[;\n\r]`)
var leadingArticle = regexp.MustCompile(`(?i)^(is|the)\s+`)
var titleCaser = cases.Title(language.English)

// Clean normalizes a raw candidate and applies the acceptance filters:
// first clause only, collapsed whitespace, no leading "is"/"the",
// title-cased; rejected outright when it carries a digit, runs past six
// words, or still contains a structural keyword.
func Clean(value string) string {
	value = clauseSplit.Split(value, 2)[0]
	value = textutil.CollapseWhitespace(value)
	value = strings.Trim(value, " .,:-")
	value = leadingArticle.ReplaceAllString(value, "")

	if value == "" {
		return ""
	}
	if strings.ContainsAny(value, "0123456789") {
		return ""
	}
	if len(strings.Fields(value)) > 6 {
		return ""
	}

	lower := strings.ToLower(value)
	for _, keyword := range structuralKeywords {
		if strings.Contains(lower, keyword) {
			return ""
		}
	}

	return titleCaser.String(lower)
}
