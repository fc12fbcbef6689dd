package curp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func joseMartin() Identity {
	return Identity{
		GivenName:       "JOSE MARTIN",
		PaternalSurname: "GARCIA",
		MaternalSurname: "LOPEZ",
		BirthDate:       date(1990, time.May, 15),
		Sex:             Male,
		Entity:          DistritoFederal,
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		expected Code
	}{
		{
			name:     "regression vector with skipped JOSE",
			identity: joseMartin(),
			expected: "GALM900515HDFRPR",
		},
		{
			name: "empty maternal surname",
			identity: Identity{
				GivenName: "JUAN", PaternalSurname: "PEREZ", MaternalSurname: "",
				BirthDate: date(2000, time.January, 1), Sex: Male, Entity: Jalisco,
			},
			expected: "PEXJ000101HJCRXN",
		},
		{
			name: "maternal surname of filler words only",
			identity: Identity{
				GivenName: "JUAN", PaternalSurname: "PEREZ", MaternalSurname: "DE LA",
				BirthDate: date(2000, time.January, 1), Sex: Male, Entity: Jalisco,
			},
			expected: "PEXJ000101HJCRXN",
		},
		{
			name: "MARIA is skipped",
			identity: Identity{
				GivenName: "MARIA GUADALUPE", PaternalSurname: "HERNANDEZ", MaternalSurname: "MARTINEZ",
				BirthDate: date(1985, time.December, 3), Sex: Female, Entity: Jalisco,
			},
			expected: "HEMG851203MJCRRD",
		},
		{
			name: "offensive prefix ROBO",
			identity: Identity{
				GivenName: "OSCAR", PaternalSurname: "ROJAS", MaternalSurname: "BARRERA",
				BirthDate: date(1985, time.March, 12), Sex: Male, Entity: NuevoLeon,
			},
			expected: "RXBO850312HNLJRS",
		},
		{
			name: "offensive prefix CACA keeps later repeats",
			identity: Identity{
				GivenName: "ANA", PaternalSurname: "CASTRO", MaternalSurname: "CANO",
				BirthDate: date(1979, time.July, 21), Sex: Female, Entity: Veracruz,
			},
			expected: "CXCA790721MVZSNN",
		},
		{
			name: "surname starting with special character",
			identity: Identity{
				GivenName: "LUIS", PaternalSurname: "/ARRIETA", MaternalSurname: "SOTO",
				BirthDate: date(1970, time.January, 1), Sex: Male, Entity: Chiapas,
			},
			expected: "XASL700101HCSRTS",
		},
		{
			name: "compound names with filler words",
			identity: Identity{
				GivenName: "MARIA DE LOS ANGELES", PaternalSurname: "DE LA CRUZ", MaternalSurname: "DEL VALLE",
				BirthDate: date(1992, time.February, 29), Sex: Female, Entity: Yucatan,
			},
			expected: "CUVA920229MYNRLN",
		},
		{
			name: "accents and enye in lower case input",
			identity: Identity{
				GivenName: "José María", PaternalSurname: "Núñez", MaternalSurname: "Ibáñez",
				BirthDate: date(1960, time.October, 10), Sex: Male, Entity: BornAbroad,
			},
			expected: "NUIM601010HNEXBR",
		},
		{
			name: "twenty-first century two-digit year",
			identity: Identity{
				GivenName: "ANA", PaternalSurname: "RUIZ", MaternalSurname: "SOTO",
				BirthDate: date(2005, time.September, 9), Sex: Female, Entity: Sonora,
			},
			expected: "RUSA050909MSRZTN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := Encode(tt.identity)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, code)
			assert.Len(t, code.String(), CodeLength)
		})
	}
}

func TestEncodeDoesNotMutateIdentity(t *testing.T) {
	id := Identity{
		GivenName: "  maría  de los ángeles ", PaternalSurname: "de la cruz", MaternalSurname: "",
		BirthDate: date(1992, time.February, 29), Sex: Female, Entity: Yucatan,
	}
	before := id
	_, err := Encode(id)
	require.NoError(t, err)
	assert.Equal(t, before, id)
}

type EncodeErrorSuite struct {
	suite.Suite
	valid Identity
}

func TestEncodeErrorSuite(t *testing.T) {
	suite.Run(t, new(EncodeErrorSuite))
}

func (s *EncodeErrorSuite) SetupTest() {
	s.valid = joseMartin()
}

func (s *EncodeErrorSuite) assertInvalid(id Identity, field string) {
	s.T().Helper()
	_, err := Encode(id)
	s.Require().Error(err)
	s.ErrorIs(err, ErrInvalidInput)

	var encErr *EncodingError
	s.Require().ErrorAs(err, &encErr)
	s.Equal(KindInvalidInput, encErr.Kind)
	s.Equal(field, encErr.Field)
}

func (s *EncodeErrorSuite) TestEmptyPaternalSurname() {
	s.valid.PaternalSurname = ""
	s.assertInvalid(s.valid, "paternal_surname")
}

func (s *EncodeErrorSuite) TestPaternalSurnameOfFillerWords() {
	s.valid.PaternalSurname = "DEL"
	s.assertInvalid(s.valid, "paternal_surname")
}

func (s *EncodeErrorSuite) TestEmptyGivenName() {
	s.valid.GivenName = "   "
	s.assertInvalid(s.valid, "given_name")
}

func (s *EncodeErrorSuite) TestHonorificOnlyGivenName() {
	s.valid.GivenName = "MARIA"
	s.assertInvalid(s.valid, "given_name")
}

func (s *EncodeErrorSuite) TestZeroBirthDate() {
	s.valid.BirthDate = time.Time{}
	s.assertInvalid(s.valid, "birth_date")
}

func (s *EncodeErrorSuite) TestInvalidSex() {
	s.valid.Sex = 0
	s.assertInvalid(s.valid, "sex")
}

func (s *EncodeErrorSuite) TestUnknownEntity() {
	s.valid.Entity = "XX"
	s.assertInvalid(s.valid, "entity")
}

func TestEncodeSegments(t *testing.T) {
	t.Run("reports filtered candidate", func(t *testing.T) {
		seg, err := EncodeSegments("OSCAR", "ROJAS", "BARRERA")
		require.NoError(t, err)
		assert.Equal(t, "ROBO", seg.Candidate)
		assert.Equal(t, "RXBO", seg.Identity)
		assert.True(t, seg.Filtered)
		assert.Equal(t, "JRS", seg.Differentiator)
	})

	t.Run("honorific skip selects GUADALUPE", func(t *testing.T) {
		seg, err := EncodeSegments("MARIA GUADALUPE", "HERNANDEZ", "MARTINEZ")
		require.NoError(t, err)
		assert.Equal(t, byte('G'), seg.Identity[3])
		assert.Equal(t, byte('D'), seg.Differentiator[2])
		assert.False(t, seg.Filtered)
	})

	t.Run("empty maternal surname yields X at both maternal slots", func(t *testing.T) {
		seg, err := EncodeSegments("JUAN", "PEREZ", "")
		require.NoError(t, err)
		assert.Equal(t, byte('X'), seg.Identity[2])
		assert.Equal(t, byte('X'), seg.Differentiator[1])
	})
}

func TestValidate(t *testing.T) {
	id := joseMartin()

	t.Run("matching 16-character code", func(t *testing.T) {
		ok, err := Validate(id, "GALM900515HDFRPR")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("18-character CURP ignores homoclave", func(t *testing.T) {
		ok, err := Validate(id, "GALM900515HDFRPR05")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("different birth date", func(t *testing.T) {
		ok, err := Validate(id, "GALM900516HDFRPR")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("comparison is case-sensitive", func(t *testing.T) {
		ok, err := Validate(id, "galm900515hdfrpr")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed candidate of valid length is simply false", func(t *testing.T) {
		ok, err := Validate(id, "????????????????")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("short candidate is invalid input", func(t *testing.T) {
		_, err := Validate(id, "GALM9005")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unencodable identity is reported", func(t *testing.T) {
		bad := id
		bad.GivenName = "JOSE"
		_, err := Validate(bad, "GALM900515HDFRPR")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestValidateStrict(t *testing.T) {
	id := joseMartin()

	ok, err := ValidateStrict(id, "GALM900515HDFRPR")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ValidateStrict(id, "GALM900515HDFRPR05")
	require.NoError(t, err)
	assert.False(t, ok, "strict mode compares the full string")

	ok, err = ValidateStrict(id, "GALM")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNameMatchesCode(t *testing.T) {
	tests := []struct {
		name     string
		given    string
		paternal string
		maternal string
		code     string
		expected bool
	}{
		{name: "exact code", given: "JOSE MARTIN", paternal: "GARCIA", maternal: "LOPEZ", code: "GALM900515HDFRPR", expected: true},
		{name: "date, sex and entity ignored", given: "JOSE MARTIN", paternal: "GARCIA", maternal: "LOPEZ", code: "GALM000101MJCRPR", expected: true},
		{name: "homoclave ignored", given: "JOSE MARTIN", paternal: "GARCIA", maternal: "LOPEZ", code: "GALM900515HDFRPRA7", expected: true},
		{name: "differentiator mismatch", given: "JOSE MARTIN", paternal: "GARCIA", maternal: "LOPEZ", code: "GALM900515HDFRPX", expected: false},
		{name: "identity mismatch", given: "JUAN", paternal: "GARCIA", maternal: "LOPEZ", code: "GALM900515HDFRPR", expected: false},
		{name: "filter applies before comparison", given: "OSCAR", paternal: "ROJAS", maternal: "BARRERA", code: "RXBO850312HNLJRS", expected: true},
		{name: "unfiltered prefix does not match", given: "OSCAR", paternal: "ROJAS", maternal: "BARRERA", code: "ROBO850312HNLJRS", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := NameMatchesCode(tt.given, tt.paternal, tt.maternal, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}

	t.Run("code shorter than 16 characters", func(t *testing.T) {
		_, err := NameMatchesCode("JOSE MARTIN", "GARCIA", "LOPEZ", "GALM900515HDF")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("multi-byte code is measured in characters", func(t *testing.T) {
		ok, err := NameMatchesCode("JOSE MARTIN", "GARCIA", "LOPEZ", "GALÑ900515HDFRPR")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestIdentityValidate(t *testing.T) {
	require.NoError(t, joseMartin().Validate())

	tests := []struct {
		name   string
		mutate func(*Identity)
		field  string
	}{
		{"missing birth date", func(id *Identity) { id.BirthDate = time.Time{} }, "birth_date"},
		{"unknown sex", func(id *Identity) { id.Sex = Sex(9) }, "sex"},
		{"lower case entity", func(id *Identity) { id.Entity = FederalEntity("df") }, "entity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := joseMartin()
			tt.mutate(&id)
			err := id.Validate()
			var encErr *EncodingError
			require.ErrorAs(t, err, &encErr)
			assert.Equal(t, tt.field, encErr.Field)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestEncodeWithSegments(t *testing.T) {
	code, seg, err := EncodeWithSegments(joseMartin())
	require.NoError(t, err)
	assert.Equal(t, Code("GALM900515HDFRPR"), code)
	assert.Equal(t, seg.Identity, code.Identity())
	assert.Equal(t, seg.Differentiator, code.Differentiator())

	plain, err := Encode(joseMartin())
	require.NoError(t, err)
	assert.Equal(t, plain, code)
}
