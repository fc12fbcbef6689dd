// Package curp computes and checks the first 16 characters of a Mexican CURP
// (Clave Única de Registro de Población).
//
// # Layout
//
//	[0:4)   identity letters     paternal initial + first vowel, maternal initial, given-name initial
//	[4:10)  birth date           YYMMDD
//	[10]    sex                  H (male) / M (female)
//	[11:13) federal entity       two-letter catalog code, NE for born abroad
//	[13:16) differentiator       first internal consonant of paternal, maternal, given name
//
// The homoclave (positions 17 and 18) is issued by the registry and is never
// computed here.
//
// # Pipeline
//
// Every name field goes through the same stages:
//
//	Normalize → SelectGivenNameToken (given names only) → letter extraction → FilterOffensive (identity only)
//
// # Domain Purity
//
// The package performs no I/O, takes no context.Context and keeps no mutable
// state. The lookup tables (filler words, honorifics, offensive words, federal
// entities) are built at package init and only read afterwards, so every
// exported function is safe for concurrent use.
package curp
