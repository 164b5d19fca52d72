package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	featuringRe  = regexp.MustCompile(`(?i)\s*[(\[]?\b(?:feat|ft|featuring)\b\.?\s+.*$`)
	remasteredRe = regexp.MustCompile(`\bremastered\b`)
	punctRe      = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	spaceRe      = regexp.MustCompile(`\s+`)

	stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NormalizeTitle canonicalizes a track title for comparison: diacritics
// stripped, lowercased, "&" folded to "and", "remastered" folded to
// "remaster", punctuation folded to whitespace, whitespace collapsed.
func NormalizeTitle(s string) string {
	s = foldBase(s)
	s = remasteredRe.ReplaceAllString(s, "remaster")
	return collapse(s)
}

// NormalizeArtist canonicalizes an artist credit: like [NormalizeTitle] but
// with trailing "feat./ft./featuring …" credits removed.
func NormalizeArtist(s string) string {
	s = featuringRe.ReplaceAllString(s, "")
	return collapse(foldBase(s))
}

func foldBase(s string) string {
	if folded, _, err := transform.String(stripDiacritics, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "&", " and ")
}

func collapse(s string) string {
	s = punctRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// Tokens splits a normalized string into a whitespace-delimited token set.
// Order is intentionally discarded for the Dice comparison.
func Tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}
