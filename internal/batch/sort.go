package batch

import (
	"sort"
	"strings"
)

// SortColumn names a sortable column of the batch table.
type SortColumn string

const (
	SortByID        SortColumn = "cnpj"
	SortByLegalName SortColumn = "razao_social"
	SortByRisk      SortColumn = "risk"
	SortByStatus    SortColumn = "status"
)

// ParseSortColumn returns ok=false for unknown columns.
func ParseSortColumn(s string) (SortColumn, bool) {
	switch c := SortColumn(strings.ToLower(strings.TrimSpace(s))); c {
	case SortByID, SortByLegalName, SortByRisk, SortByStatus:
		return c, true
	}
	return "", false
}

// Sort orders items in place. Ties keep their relative order. Risk sorts by
// severity; items without a verdict sort first ascending.
func Sort(items []Item, col SortColumn, desc bool) {
	less := lessFunc(col)
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func lessFunc(col SortColumn) func(a, b Item) bool {
	switch col {
	case SortByLegalName:
		return func(a, b Item) bool { return strings.ToLower(legalName(a)) < strings.ToLower(legalName(b)) }
	case SortByRisk:
		return func(a, b Item) bool { return riskRank(a) < riskRank(b) }
	case SortByStatus:
		return func(a, b Item) bool { return a.Status < b.Status }
	default:
		return func(a, b Item) bool { return a.ID < b.ID }
	}
}

func legalName(it Item) string {
	if it.Company == nil {
		return ""
	}
	return it.Company.LegalName
}

func riskRank(it Item) int {
	if it.Result == nil {
		return -2
	}
	return it.Result.RiskLevel.Severity()
}
