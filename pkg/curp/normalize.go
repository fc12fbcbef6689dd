package curp

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// fillerWords are prepositions, conjunctions and contractions dropped from
// compound names before any letter is selected.
var fillerWords = map[string]struct{}{
	"DA": {}, "DAS": {}, "DE": {}, "DEL": {}, "DER": {}, "DI": {}, "DIE": {}, "DD": {},
	"EL": {}, "LA": {}, "LOS": {}, "LAS": {}, "LE": {}, "LES": {},
	"MAC": {}, "MC": {}, "VAN": {}, "VON": {}, "Y": {},
}

// strippedMarks are the combining marks removed from vowels: grave, acute,
// circumflex and diaeresis. The tilde is kept so Ñ survives normalization.
var strippedMarks = map[rune]struct{}{
	'\u0300': {},
	'\u0301': {},
	'\u0302': {},
	'\u0308': {},
}

// Normalize prepares a raw name or surname for letter extraction.
//
// The value is upper-cased with Spanish casing rules, accents and diaereses
// are removed from vowels, runs of spaces collapse to one, surrounding spaces
// are trimmed and filler words (DE, LA, Y, ...) are dropped as whole tokens.
// The result may be empty. Normalize is idempotent.
func Normalize(s string) string {
	s = cases.Upper(language.Spanish).String(s)
	s = stripVowelAccents(s)

	tokens := strings.Split(s, " ")
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if IsFillerWord(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// IsFillerWord reports whether token is removed by Normalize. Matching is exact
// and case-sensitive.
func IsFillerWord(token string) bool {
	_, ok := fillerWords[token]
	return ok
}

func stripVowelAccents(s string) string {
	decomposed := norm.NFD.String(s)

	var b strings.Builder
	b.Grow(len(decomposed))
	vowelBase := false
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			if _, strip := strippedMarks[r]; strip && vowelBase {
				continue
			}
			b.WriteRune(r)
			continue
		}
		vowelBase = isVowel(r)
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
