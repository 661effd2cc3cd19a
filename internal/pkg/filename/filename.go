// Package filename turns client supplied upload names into safe
// Content-Disposition values.
package filename

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultStem is used when nothing usable is left of the upload name.
const DefaultStem = "image"

var disallowed = regexp.MustCompile(`[^\w\-. ]`)

// Sanitize drops non-ASCII characters and replaces every other character
// outside letters, digits, '-', '_', '.' and space with '_'.
func Sanitize(name string) string {
	t := transform.Chain(norm.NFC, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, err := transform.String(t, name)
	if err != nil {
		ascii = strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII {
				return -1
			}
			return r
		}, name)
	}
	return disallowed.ReplaceAllString(ascii, "_")
}

// Stem strips the final extension. A name like ".profile" is its own stem.
func Stem(name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem = name
	}
	if strings.Trim(stem, ". ") == "" {
		return DefaultStem
	}
	return stem
}

// Download builds "<sanitized stem>.<token>".
func Download(upload, token string) string {
	return Stem(Sanitize(upload)) + "." + token
}
