package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)
var nonAlnumRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Compact lowercases a catalogue code and strips everything that is not
// a letter or digit, so "Y-0001532" and "y0001532" compare equal. It is
// also used to locate codes embedded in free-form table rows.
func Compact(code string) string {
	return nonAlnumRegex.ReplaceAllString(strings.ToLower(code), "")
}

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// CollapseWhitespace squashes runs of whitespace into single spaces and
// trims the ends.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
