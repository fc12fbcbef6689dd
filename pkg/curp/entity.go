package curp

import "strings"

// FederalEntity is the two-letter catalog code of the state of birth.
//
// Usage: construct via ParseFederalEntity at trust boundaries; direct casting
// bypasses the catalog check.
type FederalEntity string

const (
	Aguascalientes    FederalEntity = "AS"
	BajaCalifornia    FederalEntity = "BC"
	BajaCaliforniaSur FederalEntity = "BS"
	Campeche          FederalEntity = "CC"
	Coahuila          FederalEntity = "CL"
	Colima            FederalEntity = "CM"
	Chiapas           FederalEntity = "CS"
	Chihuahua         FederalEntity = "CH"
	DistritoFederal   FederalEntity = "DF"
	Durango           FederalEntity = "DG"
	Guanajuato        FederalEntity = "GT"
	Guerrero          FederalEntity = "GR"
	Hidalgo           FederalEntity = "HG"
	Jalisco           FederalEntity = "JC"
	EstadoDeMexico    FederalEntity = "MC"
	Michoacan         FederalEntity = "MN"
	Morelos           FederalEntity = "MS"
	Nayarit           FederalEntity = "NT"
	NuevoLeon         FederalEntity = "NL"
	Oaxaca            FederalEntity = "OC"
	Puebla            FederalEntity = "PL"
	Queretaro         FederalEntity = "QT"
	QuintanaRoo       FederalEntity = "QR"
	SanLuisPotosi     FederalEntity = "SP"
	Sinaloa           FederalEntity = "SL"
	Sonora            FederalEntity = "SR"
	Tabasco           FederalEntity = "TC"
	Tamaulipas        FederalEntity = "TS"
	Tlaxcala          FederalEntity = "TL"
	Veracruz          FederalEntity = "VZ"
	Yucatan           FederalEntity = "YN"
	Zacatecas         FederalEntity = "ZS"
	BornAbroad        FederalEntity = "NE"
)

// EntityInfo pairs a catalog code with its display name.
type EntityInfo struct {
	Code FederalEntity
	Name string
}

// catalog is the single source of truth for federal entities, in registry order.
var catalog = []EntityInfo{
	{Aguascalientes, "Aguascalientes"},
	{BajaCalifornia, "Baja California"},
	{BajaCaliforniaSur, "Baja California Sur"},
	{Campeche, "Campeche"},
	{Coahuila, "Coahuila"},
	{Colima, "Colima"},
	{Chiapas, "Chiapas"},
	{Chihuahua, "Chihuahua"},
	{DistritoFederal, "Distrito Federal"},
	{Durango, "Durango"},
	{Guanajuato, "Guanajuato"},
	{Guerrero, "Guerrero"},
	{Hidalgo, "Hidalgo"},
	{Jalisco, "Jalisco"},
	{EstadoDeMexico, "México"},
	{Michoacan, "Michoacán"},
	{Morelos, "Morelos"},
	{Nayarit, "Nayarit"},
	{NuevoLeon, "Nuevo León"},
	{Oaxaca, "Oaxaca"},
	{Puebla, "Puebla"},
	{Queretaro, "Querétaro"},
	{QuintanaRoo, "Quintana Roo"},
	{SanLuisPotosi, "San Luis Potosí"},
	{Sinaloa, "Sinaloa"},
	{Sonora, "Sonora"},
	{Tabasco, "Tabasco"},
	{Tamaulipas, "Tamaulipas"},
	{Tlaxcala, "Tlaxcala"},
	{Veracruz, "Veracruz"},
	{Yucatan, "Yucatán"},
	{Zacatecas, "Zacatecas"},
	{BornAbroad, "Nacido en el extranjero"},
}

var entityNames = func() map[FederalEntity]string {
	m := make(map[FederalEntity]string, len(catalog))
	for _, e := range catalog {
		m[e.Code] = e.Name
	}
	return m
}()

// ParseFederalEntity validates a two-letter code against the catalog. Input
// is trimmed and upper-cased first.
func ParseFederalEntity(s string) (FederalEntity, error) {
	e := FederalEntity(strings.ToUpper(strings.TrimSpace(s)))
	if !e.IsValid() {
		return "", invalidInput("entity", "unknown federal entity "+quote(s))
	}
	return e, nil
}

// IsValid reports whether e is in the catalog.
func (e FederalEntity) IsValid() bool {
	_, ok := entityNames[e]
	return ok
}

// Name returns the display name, or "" for codes outside the catalog.
func (e FederalEntity) Name() string {
	return entityNames[e]
}

func (e FederalEntity) String() string {
	return string(e)
}

// Entities returns a copy of the catalog in registry order.
func Entities() []EntityInfo {
	return append([]EntityInfo(nil), catalog...)
}
