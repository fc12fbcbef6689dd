package curp

// offensiveWords is the registry's list of identity prefixes that must not be
// issued verbatim.
var offensiveWords = map[string]struct{}{
	"BACA": {}, "BAKA": {}, "BUEI": {}, "BUEY": {},
	"CACA": {}, "CACO": {}, "CAGA": {}, "CAGO": {}, "CAKA": {}, "CAKO": {}, "COGE": {},
	"COGI": {}, "COJA": {}, "COJE": {}, "COJI": {}, "COJO": {}, "COLA": {}, "CULO": {},
	"FALO": {}, "FETO": {},
	"GETA": {}, "GUEI": {}, "GUEY": {},
	"JETA": {}, "JOTO": {},
	"KACA": {}, "KACO": {}, "KAGA": {}, "KAGO": {}, "KAKA": {}, "KAKO": {}, "KOGE": {},
	"KOGI": {}, "KOJA": {}, "KOJE": {}, "KOJI": {}, "KOJO": {}, "KOLA": {}, "KULO": {},
	"LILO": {}, "LOCA": {}, "LOCO": {}, "LOKA": {}, "LOKO": {},
	"MAME": {}, "MAMO": {}, "MEAR": {}, "MEAS": {}, "MEON": {}, "MIAR": {}, "MION": {},
	"MOCO": {}, "MOKO": {}, "MULA": {}, "MULO": {},
	"NACA": {}, "NACO": {},
	"PEDA": {}, "PEDO": {}, "PENE": {}, "PIPI": {}, "PITO": {}, "POPO": {}, "PUTA": {}, "PUTO": {},
	"QULO": {},
	"RATA": {}, "ROBA": {}, "ROBE": {}, "ROBO": {}, "RUIN": {},
	"SENO": {},
	"TETA": {},
	"VACA": {}, "VAGA": {}, "VAGO": {}, "VAKA": {}, "VUEI": {}, "VUEY": {},
	"WUEI": {}, "WUEY": {},
}

// IsOffensive reports whether prefix exactly matches a flagged word.
func IsOffensive(prefix string) bool {
	_, ok := offensiveWords[prefix]
	return ok
}

// FilterOffensive replaces the second character of a flagged identity prefix
// with 'X' (ROBO becomes RXBO). Other prefixes are returned unchanged.
func FilterOffensive(prefix string) string {
	if !IsOffensive(prefix) {
		return prefix
	}
	return prefix[:1] + "X" + prefix[2:]
}
