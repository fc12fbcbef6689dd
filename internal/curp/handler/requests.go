package handler

import (
	"strings"
	"time"
	"unicode/utf8"

	"curpkit/internal/curp/models"
	"curpkit/pkg/curp"
	dErrors "curpkit/pkg/domain-errors"
)

const maxNameLength = 128

// IdentityRequest is the JSON form of the personal data a code is derived from.
type IdentityRequest struct {
	GivenName       string `json:"given_name"`
	PaternalSurname string `json:"paternal_surname"`
	MaternalSurname string `json:"maternal_surname,omitempty"`
	BirthDate       string `json:"birth_date"`
	Sex             string `json:"sex"`
	Entity          string `json:"entity"`

	identity curp.Identity
}

func (r *IdentityRequest) Validate() error {
	if err := checkName("given_name", r.GivenName, true); err != nil {
		return err
	}
	if err := checkName("paternal_surname", r.PaternalSurname, true); err != nil {
		return err
	}
	if err := checkName("maternal_surname", r.MaternalSurname, false); err != nil {
		return err
	}
	birth, err := time.Parse(time.DateOnly, strings.TrimSpace(r.BirthDate))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "birth_date must be YYYY-MM-DD")
	}
	sex, err := curp.ParseSex(r.Sex)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "sex must be H, M, male or female")
	}
	entity, err := curp.ParseFederalEntity(r.Entity)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "entity must be a two-letter federal entity code")
	}
	r.identity = curp.Identity{
		GivenName:       r.GivenName,
		PaternalSurname: r.PaternalSurname,
		MaternalSurname: r.MaternalSurname,
		BirthDate:       birth,
		Sex:             sex,
		Entity:          entity,
	}
	return nil
}

// Identity is set by a successful Validate.
func (r *IdentityRequest) Identity() curp.Identity {
	return r.identity
}

type EncodeRequest struct {
	IdentityRequest
}

type ValidateRequest struct {
	IdentityRequest
	Code string `json:"code"`
	Mode string `json:"mode,omitempty"`

	mode models.ValidateMode
}

func (r *ValidateRequest) Validate() error {
	if err := r.IdentityRequest.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Code) == "" {
		return dErrors.New(dErrors.CodeValidation, "code is required")
	}
	mode, err := models.ParseValidateMode(r.Mode)
	if err != nil {
		return err
	}
	r.mode = mode
	return nil
}

type NameMatchRequest struct {
	GivenName       string `json:"given_name"`
	PaternalSurname string `json:"paternal_surname"`
	MaternalSurname string `json:"maternal_surname,omitempty"`
	Code            string `json:"code"`
}

func (r *NameMatchRequest) Validate() error {
	if err := checkName("given_name", r.GivenName, true); err != nil {
		return err
	}
	if err := checkName("paternal_surname", r.PaternalSurname, true); err != nil {
		return err
	}
	if err := checkName("maternal_surname", r.MaternalSurname, false); err != nil {
		return err
	}
	if strings.TrimSpace(r.Code) == "" {
		return dErrors.New(dErrors.CodeValidation, "code is required")
	}
	return nil
}

func (r *NameMatchRequest) Query() models.NameQuery {
	return models.NameQuery{
		GivenName:       r.GivenName,
		PaternalSurname: r.PaternalSurname,
		MaternalSurname: r.MaternalSurname,
		Code:            r.Code,
	}
}

type ParseRequest struct {
	Code string `json:"code"`
}

func (r *ParseRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return dErrors.New(dErrors.CodeValidation, "code is required")
	}
	return nil
}

// BatchRequest items are validated one by one so a bad item does not reject
// the batch.
type BatchRequest struct {
	Items []IdentityRequest `json:"items"`
}

func (r *BatchRequest) Validate() error {
	if len(r.Items) == 0 {
		return dErrors.New(dErrors.CodeValidation, "items must not be empty")
	}
	return nil
}

func checkName(field, value string, required bool) error {
	trimmed := strings.TrimSpace(value)
	if required && trimmed == "" {
		return dErrors.New(dErrors.CodeValidation, field+" is required")
	}
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, field+" is too long")
	}
	return nil
}
