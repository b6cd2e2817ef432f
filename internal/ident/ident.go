// Package ident turns raw path segments into Go identifiers.
package ident

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var replacer = strings.NewReplacer(".", "_", ",", "_", "-", "_")

// Sanitize maps a raw path segment to an identifier by replacing every '.',
// ',' and '-' with '_'. All other characters are kept as they are, so the
// result is not guaranteed to be a legal Go identifier (leading digits,
// keywords and other punctuation pass through and are rejected by the
// compiler).
func Sanitize(raw string) string {
	return replacer.Replace(raw)
}

// Export upper-cases the first rune of id when it is a lower-case letter.
func Export(id string) string {
	return mapFirst(id, unicode.IsLower, unicode.ToUpper)
}

// Unexport lower-cases the first rune of id when it is an upper-case letter.
func Unexport(id string) string {
	return mapFirst(id, unicode.IsUpper, unicode.ToLower)
}

// IsExported reports whether id starts with an upper-case letter.
func IsExported(id string) bool {
	r, _ := utf8.DecodeRuneInString(id)
	return unicode.IsUpper(r)
}

func mapFirst(id string, match func(rune) bool, to func(rune) rune) string {
	r, size := utf8.DecodeRuneInString(id)
	if r == utf8.RuneError || !match(r) {
		return id
	}
	return string(to(r)) + id[size:]
}
