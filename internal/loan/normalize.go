package loan

import (
	"strings"

	"github.com/librishare/librishare/pkg/models"
)

const placeholderCover = "/placeholder.svg"

// Normalize fills in fields the backend may omit so downstream filtering and
// rendering never re-check for absence. Applied once when loans arrive.
func Normalize(loans []models.Loan) []models.Loan {
	out := make([]models.Loan, len(loans))
	for i, l := range loans {
		l.BorrowerName = strings.TrimSpace(l.BorrowerName)
		l.BookTitle = strings.TrimSpace(l.BookTitle)
		if l.BookTitle == "" {
			l.BookTitle = "Unknown title"
		}
		if l.BookCoverURL == "" {
			l.BookCoverURL = placeholderCover
		}
		if l.Status == "" {
			l.Status = models.LoanStatusActive
		}
		out[i] = l
	}
	return out
}
