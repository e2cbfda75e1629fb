// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that do not decompose into a base letter plus a mark
var foldReplacer = strings.NewReplacer(
	"æ", "ae", "Æ", "AE",
	"ø", "o", "Ø", "O",
	"ß", "ss",
	"đ", "d", "Đ", "D",
	"ł", "l", "Ł", "L",
)

// FoldASCII strips diacritics from s, so "Tromsø Sånn" becomes "Tromso Sann".
// Characters without an ASCII base letter are kept as they are.
func FoldASCII(s string) string {
	s = foldReplacer.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// URLPathSegment turns a room name into a value Connect accepts as url-path.
// Diacritics are folded and runs of whitespace become a single '-'. Every
// byte outside A-Z, a-z, 0-9 and "-_.~" is percent-escaped, so "R&D"
// becomes "R%26D".
func URLPathSegment(s string) string {
	s = strings.Join(strings.Fields(FoldASCII(s)), "-")
	// No whitespace is left, so QueryEscape never produces '+'.
	return url.QueryEscape(s)
}
