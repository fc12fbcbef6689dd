package handler

import (
	"errors"

	"curpkit/internal/curp/models"
	"curpkit/pkg/curp"
	dErrors "curpkit/pkg/domain-errors"
)

type EncodeResponse struct {
	Code           string `json:"code"`
	Identity       string `json:"identity"`
	Differentiator string `json:"differentiator"`
	Filtered       bool   `json:"filtered"`
	Cached         bool   `json:"cached"`
}

func toEncodeResponse(res *models.EncodeResult) EncodeResponse {
	return EncodeResponse{
		Code:           res.Code.String(),
		Identity:       res.Segments.Identity,
		Differentiator: res.Segments.Differentiator,
		Filtered:       res.Segments.Filtered,
		Cached:         res.Cached,
	}
}

type ValidateResponse struct {
	Valid      bool `json:"valid"`
	WellFormed bool `json:"well_formed"`
}

type NameMatchResponse struct {
	Match bool `json:"match"`
}

type ParseResponse struct {
	Code           string `json:"code"`
	Identity       string `json:"identity"`
	BirthDate      string `json:"birth_date"`
	Sex            string `json:"sex"`
	Entity         string `json:"entity"`
	EntityName     string `json:"entity_name"`
	Differentiator string `json:"differentiator"`
}

func toParseResponse(code curp.Code) ParseResponse {
	return ParseResponse{
		Code:           code.String(),
		Identity:       code.Identity(),
		BirthDate:      code.BirthDate(),
		Sex:            code.Sex().String(),
		Entity:         code.Entity().String(),
		EntityName:     code.Entity().Name(),
		Differentiator: code.Differentiator(),
	}
}

type BatchItemResponse struct {
	Index            int    `json:"index"`
	Code             string `json:"code,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type BatchResponse struct {
	Results []BatchItemResponse `json:"results"`
	Failed  int                 `json:"failed"`
}

func batchItemError(index int, err error) BatchItemResponse {
	code := dErrors.CodeOf(err)
	item := BatchItemResponse{Index: index, Error: string(code)}
	var de *dErrors.Error
	if dErrors.IsClientError(code) && errors.As(err, &de) {
		item.ErrorDescription = de.Message
	}
	return item
}

type EntityResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type EntitiesResponse struct {
	Entities []EntityResponse `json:"entities"`
}
