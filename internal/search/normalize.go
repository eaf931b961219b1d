// Package search ranks lodging listings against a free-text keyword.
//
// Keywords are normalized, expanded through a curated location alias table and
// scored by an ordered battery of match rules. Everything here is pure and
// allocation-light; callers own loading and swapping the listing collection.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Hangul ranges
const (
	hangulSyllableFirst = '\uAC00' // 가
	hangulSyllableLast  = '\uD7A3' // 힣
	jamoFirst           = '\u3131' // ㄱ
	jamoLast            = '\u3163' // ㅣ
)

var stripJamo = runes.Remove(runes.Predicate(isJamo))

// Normalize lowercases and trims. Used for coarse equality.
func Normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// NormalizeForSearch folds compatibility forms, lowercases and keeps only word
// runes, so "New York", "new-york" and "ＮＥＷ ＹＯＲＫ" all become "newyork".
func NormalizeForSearch(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(norm.NFKC.String(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isWordRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StripJamo drops standalone compatibility jamo left by half-composed input ("강ㄴ" -> "강").
func StripJamo(s string) string {
	out, _, err := transform.String(stripJamo, s)
	if err != nil {
		return s
	}
	return out
}

// Tokens splits the normalized keyword on whitespace.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// isWordRune is the allow-list for NormalizeForSearch: ASCII word characters,
// decimal digits, Latin letters and composed Hangul syllables.
func isWordRune(r rune) bool {
	switch {
	case r == '_':
		return true
	case r >= hangulSyllableFirst && r <= hangulSyllableLast:
		return true
	case unicode.Is(unicode.Nd, r):
		return true
	case unicode.Is(unicode.Latin, r):
		return true
	}
	return false
}

func isJamo(r rune) bool { return r >= jamoFirst && r <= jamoLast }
