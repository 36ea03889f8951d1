package persistence

import "strings"

// List endpoints pass order_by straight from the query string, so every
// column is checked against a per-table whitelist before it reaches SQL.

func sortable(columns ...string) map[string]bool {
	allowed := map[string]bool{"id": true, "created_at": true, "updated_at": true}
	for _, c := range columns {
		allowed[c] = true
	}
	return allowed
}

var (
	CommonSortFields  = sortable()
	CatalogSortFields = sortable("code", "name", "g_no")
	StockSortFields   = sortable("item_id", "quantity")
	VoucherSortFields = sortable("iv_number", "issue_date", "lar_number", "return_date")
	LoanSortFields    = sortable("loan_date", "due_date", "status")
)

// ValidateSortOrder returns ASC for any spelling of asc and DESC otherwise
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns field when allowed lists it and defaultField otherwise.
// Matching is case sensitive.
func ValidateSortField(field string, allowed map[string]bool, defaultField string) string {
	if f := strings.TrimSpace(field); allowed[f] {
		return f
	}
	return defaultField
}
