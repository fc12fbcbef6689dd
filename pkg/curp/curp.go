package curp

import (
	"strconv"
	"time"
	"unicode/utf8"
)

// CodeLength is the number of characters computed from personal data. The two
// remaining characters of a legal CURP are issued by the registry.
const CodeLength = 16

// Identity is the personal data a code is derived from.
// MaternalSurname may be empty; only the calendar date of BirthDate is used.
type Identity struct {
	GivenName       string
	PaternalSurname string
	MaternalSurname string
	BirthDate       time.Time
	Sex             Sex
	Entity          FederalEntity
}

// Segments holds the name-derived parts of a code.
type Segments struct {
	// Identity is the four-letter prefix after the offensive-word filter.
	Identity string
	// Candidate is the prefix before filtering; it differs from Identity only
	// when Filtered is true.
	Candidate      string
	Filtered       bool
	Differentiator string
}

// EncodeSegments runs the name pipeline shared by Encode and NameMatchesCode.
//
// Errors: KindInvalidInput when the paternal surname or given name is empty
// after normalization, or when the given name is an honorific alone.
func EncodeSegments(givenName, paternalSurname, maternalSurname string) (Segments, error) {
	paternal := Normalize(paternalSurname)
	if paternal == "" {
		return Segments{}, invalidInput("paternal_surname", "must contain at least one non-filler word")
	}
	token, err := SelectGivenNameToken(Normalize(givenName))
	if err != nil {
		return Segments{}, err
	}

	paternalIdentity, paternalDiff := extractSurname(paternal, true)

	maternalIdentity, maternalDiff := []byte{'X'}, byte('X')
	if maternal := Normalize(maternalSurname); maternal != "" {
		maternalIdentity, maternalDiff = extractSurname(maternal, false)
	}

	givenInitial, givenDiff := extractGivenName(token)

	candidate := string(paternalIdentity) + string(maternalIdentity) + string(givenInitial)
	identity := FilterOffensive(candidate)
	return Segments{
		Identity:       identity,
		Candidate:      candidate,
		Filtered:       identity != candidate,
		Differentiator: string([]byte{paternalDiff, maternalDiff, givenDiff}),
	}, nil
}

// Validate checks the non-name fields of id: a non-zero birth date, a valid
// Sex and an entity from the catalog. Names are checked by EncodeSegments.
//
// Errors: KindInvalidInput naming the offending field.
func (id Identity) Validate() error {
	if id.BirthDate.IsZero() {
		return invalidInput("birth_date", "is required")
	}
	if !id.Sex.IsValid() {
		return invalidInput("sex", "must be male or female")
	}
	if !id.Entity.IsValid() {
		return invalidInput("entity", "unknown federal entity "+quote(string(id.Entity)))
	}
	return nil
}

// Encode computes the 16-character code for id.
//
// Errors: KindInvalidInput for empty required names, an honorific-only given
// name, a zero birth date, an invalid Sex or an entity outside the catalog.
func Encode(id Identity) (Code, error) {
	code, _, err := EncodeWithSegments(id)
	return code, err
}

// EncodeWithSegments is Encode that also returns the name-derived segments
// the code was built from.
func EncodeWithSegments(id Identity) (Code, Segments, error) {
	if err := id.Validate(); err != nil {
		return "", Segments{}, err
	}
	seg, err := EncodeSegments(id.GivenName, id.PaternalSurname, id.MaternalSurname)
	if err != nil {
		return "", Segments{}, err
	}

	buf := make([]byte, 0, CodeLength)
	buf = append(buf, seg.Identity...)
	buf = id.BirthDate.AppendFormat(buf, "060102")
	buf = append(buf, id.Sex.Code())
	buf = append(buf, string(id.Entity)...)
	buf = append(buf, seg.Differentiator...)
	return Code(buf), seg, nil
}

// Validate reports whether the first 16 characters of candidate equal the code
// computed for id. An 18-character legal CURP is accepted; its homoclave is
// ignored.
//
// Errors: KindInvalidInput when candidate is shorter than 16 characters or id
// cannot be encoded.
func Validate(id Identity, candidate string) (bool, error) {
	if _, ok := CodePrefix(candidate); !ok {
		return false, tooShort()
	}
	code, err := Encode(id)
	if err != nil {
		return false, err
	}
	return code.MatchesPrefix(candidate)
}

// ValidateStrict reports whether candidate equals the computed code exactly,
// so an 18-character CURP never matches.
//
// Errors: only those of Encode.
func ValidateStrict(id Identity, candidate string) (bool, error) {
	code, err := Encode(id)
	if err != nil {
		return false, err
	}
	return code.Equals(candidate), nil
}

// NameMatchesCode reports whether the name-derived positions of code ([0:4)
// and [13:16)) agree with the given names. Positions [4:13) are ignored.
//
// Errors: KindInvalidInput when code is shorter than 16 characters or the
// names cannot be encoded.
func NameMatchesCode(givenName, paternalSurname, maternalSurname, code string) (bool, error) {
	prefix, ok := CodePrefix(code)
	if !ok {
		return false, tooShort()
	}
	seg, err := EncodeSegments(givenName, paternalSurname, maternalSurname)
	if err != nil {
		return false, err
	}
	runes := []rune(prefix)
	return string(runes[0:4]) == seg.Identity && string(runes[13:16]) == seg.Differentiator, nil
}

// CodePrefix returns the first 16 runes of s unchanged, or false when s is
// shorter.
func CodePrefix(s string) (string, bool) {
	return leadingRunes(s, CodeLength)
}

func tooShort() *EncodingError {
	return invalidInput("code", "must be at least "+strconv.Itoa(CodeLength)+" characters")
}

// leadingRunes returns the first n runes of s, or false when s is shorter.
func leadingRunes(s string, n int) (string, bool) {
	i := 0
	for count := 0; count < n; count++ {
		if i >= len(s) {
			return "", false
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], true
}

func quote(s string) string {
	return strconv.Quote(s)
}
