package curp

// specialCharacters become 'X' wherever they are selected. In a paternal
// surname a special character found before any vowel also fills the vowel slot.
var specialCharacters = map[rune]struct{}{
	'/':  {},
	'-':  {},
	'.':  {},
	'\\': {},
}

func isVowel(r rune) bool {
	switch r {
	case 'A', 'E', 'I', 'O', 'U', 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func isSpecial(r rune) bool {
	_, ok := specialCharacters[r]
	return ok
}

// slotLetter maps a selected rune onto the code alphabet. Ñ, the special
// characters and anything else outside A-Z come out as 'X'.
func slotLetter(r rune) byte {
	if r >= 'A' && r <= 'Z' {
		return byte(r)
	}
	return 'X'
}

// extractSurname returns the identity letters contributed by a normalized,
// non-empty surname (two for paternal, one for maternal) and its
// differentiator consonant.
func extractSurname(surname string, paternal bool) ([]byte, byte) {
	runes := []rune(surname)
	identity := make([]byte, 1, 2)
	identity[0] = slotLetter(runes[0])

	var differentiator byte
	vowelFound, consonantFound := false, false
	for _, r := range runes[1:] {
		vowel := isVowel(r)
		if paternal && vowel && !vowelFound {
			identity = append(identity, slotLetter(r))
			vowelFound = true
		}
		if !vowel && !consonantFound {
			differentiator = slotLetter(r)
			consonantFound = true
			if !paternal {
				break
			}
			if isSpecial(r) && !vowelFound {
				identity = append(identity, 'X')
				vowelFound = true
			}
		}
		if paternal && vowelFound && consonantFound {
			break
		}
	}

	if paternal && !vowelFound {
		identity = append(identity, 'X')
	}
	if !consonantFound {
		differentiator = 'X'
	}
	return identity, differentiator
}

// extractGivenName returns the initial and the first internal consonant of a
// single given-name token.
func extractGivenName(token string) (byte, byte) {
	runes := []rune(token)
	initial := slotLetter(runes[0])
	for _, r := range runes[1:] {
		if !isVowel(r) {
			return initial, slotLetter(r)
		}
	}
	return initial, 'X'
}
