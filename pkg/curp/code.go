package curp

import "time"

// Code is a 16-character CURP prefix produced by Encode or checked by ParseCode.
// Accessors assume that shape and must not be called on arbitrary strings.
type Code string

// ParseCode checks that s starts with a structurally valid 16-character code
// and returns that prefix. Characters past position 16 (the homoclave) are not
// inspected.
//
// Errors: KindInvalidInput when s is shorter than 16 characters;
// KindMalformedCandidate when a segment has the wrong alphabet, the date
// segment is not a calendar date, or the sex or entity code is unknown.
func ParseCode(s string) (Code, error) {
	prefix, ok := CodePrefix(s)
	if !ok {
		return "", tooShort()
	}
	if len(prefix) != CodeLength {
		return "", malformedCandidate("contains non-ASCII characters")
	}
	for i := 0; i < CodeLength; i++ {
		c := prefix[i]
		switch {
		case i >= 4 && i < 10:
			if c < '0' || c > '9' {
				return "", malformedCandidate("birth date segment must be digits")
			}
		default:
			if c < 'A' || c > 'Z' {
				return "", malformedCandidate("letter segments must be A-Z")
			}
		}
	}
	code := Code(prefix)
	if _, err := time.Parse("060102", code.BirthDate()); err != nil {
		return "", malformedCandidate("birth date segment is not a calendar date")
	}
	if _, ok := sexFromCode(prefix[10]); !ok {
		return "", malformedCandidate("sex code must be H or M")
	}
	if !code.Entity().IsValid() {
		return "", malformedCandidate("unknown federal entity " + quote(prefix[11:13]))
	}
	return code, nil
}

// Identity returns positions [0:4).
func (c Code) Identity() string { return string(c[0:4]) }

// BirthDate returns the YYMMDD segment, positions [4:10).
func (c Code) BirthDate() string { return string(c[4:10]) }

// Sex returns the sex encoded at position 10.
func (c Code) Sex() Sex {
	sex, _ := sexFromCode(c[10])
	return sex
}

// Entity returns positions [11:13).
func (c Code) Entity() FederalEntity { return FederalEntity(c[11:13]) }

// Differentiator returns positions [13:16).
func (c Code) Differentiator() string { return string(c[13:16]) }

func (c Code) String() string { return string(c) }

// MatchesPrefix reports whether the first 16 characters of candidate equal c.
// Comparison is exact; callers normalize case beforehand if they want to.
//
// Errors: KindInvalidInput when candidate is shorter than 16 characters.
func (c Code) MatchesPrefix(candidate string) (bool, error) {
	prefix, ok := CodePrefix(candidate)
	if !ok {
		return false, tooShort()
	}
	return string(c) == prefix, nil
}

// Equals reports whether candidate is exactly c.
func (c Code) Equals(candidate string) bool {
	return string(c) == candidate
}
