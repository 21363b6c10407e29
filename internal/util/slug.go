// Package util provides small shared helpers.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	wordSeparatorRe   = regexp.MustCompile(`[\s_/]+`)
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	multipleDashRe    = regexp.MustCompile(`-{2,}`)

	// Decompose accented letters and drop the combining marks,
	// so "piękna" folds to "piekna".
	foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	// Stroked letters don't decompose under NFD.
	strokedReplacer = strings.NewReplacer("ł", "l", "Ł", "l", "ø", "o", "Ø", "o", "đ", "d", "Đ", "d")
)

// NormalizeSlug converts free-form user input into a canonical slug.
// "Slow Burn", "slow burn" and "SLOW-BURN" all normalize to "slow-burn",
// which is what makes tag lookup case-insensitive. Diacritics are folded,
// so "Powieść" and "powiesc" normalize the same way.
// Returns an empty string if nothing survives normalization.
func NormalizeSlug(input string) string {
	// 1. Trim and lowercase
	s := strings.ToLower(strings.TrimSpace(input))

	// 2. Fold diacritics to their base letters
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	s = strokedReplacer.Replace(s)

	// 3. Replace word separators (spaces, underscores, slashes) with dashes
	s = wordSeparatorRe.ReplaceAllString(s, "-")

	// 4. Remove non-alphanumeric (except dashes)
	s = nonAlphanumericRe.ReplaceAllString(s, "")

	// 5. Collapse multiple dashes
	s = multipleDashRe.ReplaceAllString(s, "-")

	// 6. Trim leading/trailing dashes
	s = strings.Trim(s, "-")

	return s
}
