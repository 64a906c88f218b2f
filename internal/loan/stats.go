package loan

import (
	"github.com/librishare/librishare/pkg/date"
	"github.com/librishare/librishare/pkg/models"
)

// Summary backs the loan screen's summary cards and tab labels.
type Summary struct {
	Active   int `json:"active"`
	Overdue  int `json:"overdue"`
	Returned int `json:"returned"`
	Total    int `json:"total"`
}

// Tally counts loans per classification in a single pass. Callers must pass
// the same `today` they give Filter so counts and list contents agree even
// across a day boundary.
func Tally(loans []models.Loan, today date.Date) Summary {
	var s Summary
	for _, l := range loans {
		switch Classify(l, today) {
		case ClassOverdue:
			s.Overdue++
		case ClassReturned:
			s.Returned++
		default:
			s.Active++
		}
	}
	s.Total = len(loans)
	return s
}
