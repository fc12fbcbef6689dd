package curp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "already normalized", input: "GARCIA", expected: "GARCIA"},
		{name: "upper-cases", input: "garcia", expected: "GARCIA"},
		{name: "acute accents", input: "JOSÉ MARÍA", expected: "JOSE MARIA"},
		{name: "grave, circumflex and diaeresis", input: "ÀÈÎÖÜ", expected: "AEIOU"},
		{name: "lower-case accented vowels", input: "ángel güero", expected: "ANGEL GUERO"},
		{name: "decomposed accent", input: "A\u0301NGEL", expected: "ANGEL"},
		{name: "keeps enye", input: "muñoz", expected: "MUÑOZ"},
		{name: "keeps decomposed enye", input: "MUN\u0303OZ", expected: "MUÑOZ"},
		{name: "collapses inner spaces", input: "JUAN    CARLOS", expected: "JUAN CARLOS"},
		{name: "trims surrounding spaces", input: "  JUAN ", expected: "JUAN"},
		{name: "drops filler words", input: "MARIA DE LOS ANGELES", expected: "MARIA ANGELES"},
		{name: "drops leading filler words", input: "de la cruz", expected: "CRUZ"},
		{name: "drops conjunction", input: "PEÑA Y LILLO", expected: "PEÑA LILLO"},
		{name: "drops MAC and MC", input: "MAC GREGOR MC LEAN", expected: "GREGOR LEAN"},
		{name: "filler match is whole-token only", input: "DELGADO LARA", expected: "DELGADO LARA"},
		{name: "only filler words", input: "DE LA", expected: ""},
		{name: "accent stripped before filler check", input: "DÉ LÁ ROSA", expected: "ROSA"},
		{name: "keeps special characters", input: "O'BRIAN-SMITH", expected: "O'BRIAN-SMITH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"María   de  los Ángeles",
		"  A\u0301\u0301LVAREZ  ",
		"VAN DER BERG",
		"Ñuñez / Ibáñez",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestIsFillerWord(t *testing.T) {
	for _, w := range []string{"DA", "DAS", "DE", "DEL", "DER", "DI", "DIE", "DD", "EL", "LA", "LOS", "LAS", "LE", "LES", "MAC", "MC", "VAN", "VON", "Y"} {
		assert.True(t, IsFillerWord(w), w)
	}
	assert.False(t, IsFillerWord("de"), "matching is case-sensitive")
	assert.False(t, IsFillerWord("DELA"))
	assert.False(t, IsFillerWord(""))
}
