package division

import "github.com/rotisserie/eris"

// TypeCode is a Statistics Canada census division or subdivision type code, e.g. "CY".
type TypeCode string

// typeSynonyms folds deprecated codes into their replacements.
var typeSynonyms = map[TypeCode]TypeCode{
	"TV": "T",  // Town / Ville
	"C":  "CY", // City / Cité
}

// Fold returns the canonical code for deprecated synonyms and c otherwise.
func (c TypeCode) Fold() TypeCode {
	if folded, ok := typeSynonyms[c]; ok {
		return folded
	}
	return c
}

// TypeCodes is the closed set of codes valid for a kind.
type TypeCodes map[TypeCode]struct{}

// Contains reports whether c is a member of the set.
func (s TypeCodes) Contains(c TypeCode) bool {
	_, ok := s[c]
	return ok
}

func newTypeCodes(codes ...TypeCode) TypeCodes {
	s := make(TypeCodes, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// censusDivisionTypes are the 2016 census division type codes.
var censusDivisionTypes = newTypeCodes(
	"CDR", "CT", "CTY", "DIS", "DM", "MRC", "REG", "RD", "RM", "TÉ", "TER", "UC",
)

// censusSubdivisionTypes are the 2016 census subdivision type codes.
var censusSubdivisionTypes = newTypeCodes(
	"C", "CC", "CG", "CN", "COM", "CT", "CU", "CV", "CY", "DM", "HAM", "ID", "IGD", "IM",
	"IRI", "LGD", "LOT", "M", "MD", "MÉ", "MU", "NH", "NL", "NO", "NV", "P", "PE", "RCR",
	"RDA", "RGM", "RM", "RV", "S-É", "SA", "SC", "SÉ", "SET", "SG", "SM", "SNO", "SV",
	"T", "TC", "TI", "TK", "TL", "TP", "TV", "V", "VC", "VK", "VL", "VN",
)

// TypeCodesFor returns the closed code set of a kind.
func TypeCodesFor(kind Kind) TypeCodes {
	switch kind {
	case CensusDivision:
		return censusDivisionTypes
	case CensusSubdivision:
		return censusSubdivisionTypes
	default:
		return nil
	}
}

// TypeTable is the trusted identifier → type code lookup for one kind.
type TypeTable map[Identifier]TypeCode

// TypeOf returns the folded type code of id. A missing identifier is an error:
// the table is expected to cover every reference entry.
func (t TypeTable) TypeOf(id Identifier) (TypeCode, error) {
	c, ok := t[id]
	if !ok {
		return "", eris.Errorf("division: no type for %s", id)
	}
	return c.Fold(), nil
}
