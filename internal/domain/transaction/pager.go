package transaction

// PageSize is the number of rows shown per transaction-history page
const PageSize = 10

// Page is one slice of a transaction list
type Page struct {
	Items      []Transaction `json:"items"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
}

// Paginate returns the 1-based page of items. Pages below 1 are treated as 1;
// pages past the end come back empty rather than as an error.
func Paginate(items []Transaction, page int) Page {
	if page < 1 {
		page = 1
	}

	totalPages := (len(items) + PageSize - 1) / PageSize

	if page > totalPages {
		return Page{Items: []Transaction{}, Page: page, TotalPages: totalPages}
	}

	start := (page - 1) * PageSize
	end := min(start+PageSize, len(items))

	return Page{
		Items:      items[start:end],
		Page:       page,
		TotalPages: totalPages,
	}
}
