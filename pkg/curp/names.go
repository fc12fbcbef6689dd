package curp

import "strings"

// honorifics are leading given-name tokens skipped in favor of the next one,
// so MARIA GUADALUPE is encoded from GUADALUPE.
var honorifics = map[string]struct{}{
	"MARIA": {},
	"MA.":   {},
	"MA":    {},
	"JOSE":  {},
	"J.":    {},
	"J":     {},
}

// IsHonorific reports whether token is skipped when it leads a given name.
func IsHonorific(token string) bool {
	_, ok := honorifics[token]
	return ok
}

// SelectGivenNameToken returns the given-name token used for encoding. The
// input must already be normalized.
//
// Errors: KindInvalidInput when the name is empty or consists of a single
// honorific token with nothing after it.
func SelectGivenNameToken(givenName string) (string, error) {
	tokens := splitTokens(givenName)
	if len(tokens) == 0 {
		return "", invalidInput("given_name", "must contain at least one non-filler word")
	}
	if !IsHonorific(tokens[0]) {
		return tokens[0], nil
	}
	if len(tokens) < 2 {
		return "", invalidInput("given_name", "ambiguous given name: "+tokens[0]+" has no following name")
	}
	return tokens[1], nil
}

func splitTokens(s string) []string {
	parts := strings.Split(s, " ")
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
