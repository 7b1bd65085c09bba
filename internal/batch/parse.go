package batch

import (
	"strings"

	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
	pstrings "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/strings"
)

func isSeparator(r rune) bool {
	switch r {
	case ',', ';', '\n', '\r', '\t', ' ':
		return true
	}
	return false
}

// ParseEntityIDs reads CNPJs/CPFs pasted as free text: one per line or
// separated by commas or semicolons, with or without punctuation. Duplicates
// are dropped keeping first-seen order; tokens that are not a valid id are
// returned in invalid.
func ParseEntityIDs(text string) (ids []domain.EntityID, invalid []string) {
	for _, tok := range pstrings.DedupeAndTrim(strings.FieldsFunc(text, isSeparator)) {
		id, err := domain.ParseEntityID(tok)
		if err != nil {
			invalid = append(invalid, tok)
			continue
		}
		ids = append(ids, id)
	}
	// "11.222.333/0001-81" and "11222333000181" are the same id.
	ids = pstrings.DedupeFunc(ids, func(id domain.EntityID) domain.EntityID { return id })
	return ids, invalid
}
