package loan

import (
	"strings"

	"github.com/librishare/librishare/pkg/date"
	"github.com/librishare/librishare/pkg/models"
)

// Tab selects which slice of the loan list a view shows.
type Tab string

const (
	TabActive   Tab = "active"
	TabOverdue  Tab = "overdue"
	TabReturned Tab = "returned"
	TabAll      Tab = "all"
)

// ParseTab maps user input to a Tab, defaulting to "all" for anything
// unrecognized.
func ParseTab(s string) Tab {
	switch Tab(strings.ToLower(s)) {
	case TabActive, TabOverdue, TabReturned:
		return Tab(strings.ToLower(s))
	default:
		return TabAll
	}
}

// Filter narrows loans by free-text query and tab. The query matches
// case-insensitively against borrower name or book title; an empty query
// matches everything. Text and tab filters are independent, so the result
// is the same regardless of application order.
func Filter(loans []models.Loan, query string, tab Tab, today date.Date) []models.Loan {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]models.Loan, 0, len(loans))
	for _, l := range loans {
		if !matchesQuery(l, q) {
			continue
		}
		if !matchesTab(l, tab, today) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func matchesQuery(l models.Loan, q string) bool {
	if q == "" {
		return true
	}
	borrower := strings.ToLower(l.BorrowerName)
	title := strings.ToLower(l.BookTitle)
	return strings.Contains(borrower, q) || strings.Contains(title, q)
}

func matchesTab(l models.Loan, tab Tab, today date.Date) bool {
	switch tab {
	case TabActive:
		return Classify(l, today) == ClassActive
	case TabOverdue:
		return Classify(l, today) == ClassOverdue
	case TabReturned:
		return l.Status == models.LoanStatusReturned
	default:
		return true
	}
}
