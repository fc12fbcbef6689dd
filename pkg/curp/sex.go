package curp

import "strings"

// Sex is the registered sex of a person. The zero value is not a valid Sex.
type Sex uint8

const (
	Male Sex = iota + 1
	Female
)

var sexCodes = map[Sex]byte{
	Male:   'H',
	Female: 'M',
}

// sexAliases lists the accepted external spellings, keyed in upper case.
var sexAliases = map[string]Sex{
	"H":      Male,
	"HOMBRE": Male,
	"MALE":   Male,
	"M":      Female,
	"MUJER":  Female,
	"FEMALE": Female,
}

// ParseSex accepts the code letters (H, M) and the words male/female or
// hombre/mujer, case-insensitively.
func ParseSex(s string) (Sex, error) {
	sex, ok := sexAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return 0, invalidInput("sex", "unsupported value "+quote(s))
	}
	return sex, nil
}

// IsValid reports whether s is Male or Female.
func (s Sex) IsValid() bool {
	_, ok := sexCodes[s]
	return ok
}

// Code returns the letter written at position 11 of the code.
func (s Sex) Code() byte {
	return sexCodes[s]
}

func (s Sex) String() string {
	switch s {
	case Male:
		return "male"
	case Female:
		return "female"
	}
	return "unknown"
}

func sexFromCode(c byte) (Sex, bool) {
	for sex, code := range sexCodes {
		if code == c {
			return sex, true
		}
	}
	return 0, false
}
