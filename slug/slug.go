// Package slug canonicalizes path-like slugs.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	Separator = "/"
	wordSep   = '-'
)

// IsSpace reports whether r is whitespace in the sense of an ECMAScript \s
// class: unicode.IsSpace without U+0085 (NEL), plus U+FEFF (BOM).
func IsSpace(r rune) bool {
	switch r {
	case '\u0085':
		return false
	case '\uFEFF':
		return true
	}
	return unicode.IsSpace(r)
}

func isTrimmable(r rune) bool {
	return r == '/' || IsSpace(r)
}

// TrimURLSegment strips leading and trailing whitespace and slashes.
func TrimURLSegment(s string) string {
	return strings.TrimFunc(s, isTrimmable)
}

// Lower lower-cases s without locale specific rules. A Caser is stateful,
// so a new one is created per call.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Normalize wraps the lower-cased, slash-trimmed value in single slashes.
// An empty value is returned unchanged.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	return Separator + Lower(TrimURLSegment(s)) + Separator
}

// Variants returns the spellings of s that have to be treated as equal when
// comparing against stored slugs: with and without leading and trailing
// slashes.
func Variants(s string) []string {
	segments := segments(s)
	if len(segments) == 0 {
		return []string{Separator}
	}
	joined := strings.Join(segments, Separator)
	return []string{
		Separator + joined,
		Separator + joined + Separator,
		joined,
		joined + Separator,
	}
}

func segments(s string) []string {
	parts := strings.Split(s, Separator)
	ret := parts[:0]
	for _, part := range parts {
		if part != "" {
			ret = append(ret, part)
		}
	}
	return ret
}

// Slugify builds a normalized slug from a free text source like a title.
// Slashes in the source are kept as segment boundaries.
//
//	Slugify("Hello World")       // "/hello-world/"
//	Slugify("Blog/Crème Brûlée") // "/blog/creme-brulee/"
func Slugify(source string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), source)
	if err != nil {
		folded = source
	}
	folded = Lower(folded)

	var out []string
	for _, segment := range segments(folded) {
		if word := slugifySegment(segment); word != "" {
			out = append(out, word)
		}
	}
	if len(out) == 0 {
		return ""
	}
	return Normalize(strings.Join(out, Separator))
}

func slugifySegment(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastWasSep := true
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_':
			b.WriteRune(r)
			lastWasSep = false
		case !lastWasSep:
			b.WriteRune(wordSep)
			lastWasSep = true
		}
	}
	return strings.TrimRight(b.String(), string(wordSep))
}
