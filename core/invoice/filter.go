package invoice

import "strings"

// Filter keeps the invoices matching both the status facet and the search query, in their original order.
// A non-empty query matches the student name (case-insensitive), the amount as a string or the raw due date.
func Filter(invoices []Invoice, filter QueryFilter) []Invoice {
	filtered := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if filter.Status.Matches(inv.Status) && matchesSearch(inv, filter.Search) {
			filtered = append(filtered, inv)
		}
	}
	return filtered
}

func matchesSearch(inv Invoice, query string) bool {
	if query == "" {
		return true
	}
	if inv.Student != nil && strings.Contains(strings.ToLower(inv.Student.Name), strings.ToLower(query)) {
		return true
	}
	return strings.Contains(inv.Amount.String(), query) || strings.Contains(inv.DueDate, query)
}
