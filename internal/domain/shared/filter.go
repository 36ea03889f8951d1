package shared

// Filter is the list query every repository FindAll accepts. Filters holds
// exact-match criteria keyed by column (ledger_id, district_id, tier, item_id).
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// DefaultFilter is page 1 of 20, newest first
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: 20, OrderBy: "created_at", OrderDir: "desc", Filters: map[string]any{}}
}

// WithFilter returns a copy with one more criterion. The receiver's map is not shared.
func (f Filter) WithFilter(key string, value any) Filter {
	criteria := make(map[string]any, len(f.Filters)+1)
	for k, v := range f.Filters {
		criteria[k] = v
	}
	criteria[key] = value
	f.Filters = criteria
	return f
}

func (f Filter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
