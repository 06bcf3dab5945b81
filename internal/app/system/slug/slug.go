// Package slug derives URL-safe identifiers from titles.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Letters with no canonical decomposition into an ASCII base.
var ligatures = strings.NewReplacer(
	"Œ", "OE", "œ", "oe",
	"Æ", "AE", "æ", "ae",
	"ß", "ss",
	"Ø", "O", "ø", "o",
	"Ł", "L", "ł", "l",
	"Đ", "D", "đ", "d",
)

// Make lowercases s, strips accents, and joins the remaining ASCII
// letters and digits with single hyphens. The result has no leading,
// trailing, or repeated hyphens.
//
//	Make("Guide complet pour votre premier voyage en Chine")
//	// "guide-complet-pour-votre-premier-voyage-en-chine"
func Make(s string) string {
	folded := Fold(s)
	folded = nonAlnum.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(folded, "-")
}

// Fold removes diacritics by decomposing s and dropping combining marks.
// Ligatures such as Œ and Æ are spelled out. Other characters without an
// ASCII base are left as they are.
func Fold(s string) string {
	s = ligatures.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
