package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stay_search/internal/search"
)

var normalizeSamples = []string{
	"",
	"   ",
	"  Seoul  ",
	"New York",
	"Stay-Hotel!",
	"ＮＥＷ ＹＯＲＫ",
	"길동 MARI-마리",
	"호텔·리조트",
	"강ㄴ",
	"İstanbul",
	"ﬁne dining",
	"Café 123",
	"\tTokyo\n",
	"\xff\xfe broken",
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  Seoul  ", "seoul"},
		{"New York", "new york"},
		{"길동 MARI-마리", "길동 mari-마리"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, search.Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalizeForSearch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"New York", "newyork"},
		{"Stay-Hotel!", "stayhotel"},
		{"ＮＥＷ ＹＯＲＫ", "newyork"},
		{"길동 MARI-마리", "길동mari마리"},
		{"호텔·리조트", "호텔리조트"},
		{"강ㄴ", "강"},
		{"Café 123", "café123"},
		{"snake_case", "snake_case"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, search.NormalizeForSearch(tt.in), "NormalizeForSearch(%q)", tt.in)
	}
}

func TestStripJamo(t *testing.T) {
	assert.Equal(t, "강", search.StripJamo("강ㄴ"))
	assert.Equal(t, "호텔", search.StripJamo("ㅋㅋ호텔"))
	assert.Equal(t, "", search.StripJamo(""))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"stay", "hotel"}, search.Tokens("  Stay   HOTEL "))
	assert.Empty(t, search.Tokens("   "))
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range normalizeSamples {
		once := search.Normalize(s)
		assert.Equal(t, once, search.Normalize(once), "Normalize(%q)", s)

		onceSearch := search.NormalizeForSearch(s)
		assert.Equal(t, onceSearch, search.NormalizeForSearch(onceSearch), "NormalizeForSearch(%q)", s)
	}
}

func FuzzNormalizeForSearch_Idempotent(f *testing.F) {
	for _, s := range normalizeSamples {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		once := search.NormalizeForSearch(s)
		if twice := search.NormalizeForSearch(once); twice != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", s, once, twice)
		}
		if n := search.Normalize(s); search.Normalize(n) != n {
			t.Fatalf("Normalize not idempotent for %q", s)
		}
	})
}
