package curp

import (
	"errors"
	"testing"
	"time"
)

func FuzzEncode(f *testing.F) {
	f.Add("JOSE MARTIN", "GARCIA", "LOPEZ", 1990, 5, 15)
	f.Add("MARIA", "DE LA CRUZ", "", 2000, 1, 1)
	f.Add("josé maría", "núñez", "ibáñez", 1960, 10, 10)
	f.Add("  ", "/-.\\", "Y", 1, 1, 1)

	f.Fuzz(func(t *testing.T, given, paternal, maternal string, year, month, day int) {
		id := Identity{
			GivenName:       given,
			PaternalSurname: paternal,
			MaternalSurname: maternal,
			BirthDate:       time.Date(year%200+1900, time.Month(month%12+1), day%28+1, 0, 0, 0, 0, time.UTC),
			Sex:             Female,
			Entity:          Oaxaca,
		}
		code, err := Encode(id)
		if err != nil {
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}
		if len(code) != CodeLength {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for i := 0; i < len(code); i++ {
			c := code[i]
			if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
				t.Fatalf("code %q contains %q", code, c)
			}
		}
	})
}

func FuzzParseCode(f *testing.F) {
	f.Add("GALM900515HDFRPR")
	f.Add("GALM900515HDFRPR05")
	f.Add("GALÑ900515HDFRPR")
	f.Add("")

	f.Fuzz(func(t *testing.T, s string) {
		code, err := ParseCode(s)
		if err != nil {
			if !errors.Is(err, ErrInvalidInput) && !errors.Is(err, ErrMalformedCandidate) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}
		_ = code.Sex()
		_ = code.Entity().Name()
	})
}
