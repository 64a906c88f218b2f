package loan

import (
	"github.com/librishare/librishare/pkg/date"
	"github.com/librishare/librishare/pkg/models"
)

// Classification is the derived display state of a loan. RETURNED and ACTIVE
// mirror the stored status; OVERDUE exists only here.
type Classification string

const (
	ClassActive   Classification = "ACTIVE"
	ClassOverdue  Classification = "OVERDUE"
	ClassReturned Classification = "RETURNED"
)

// Classify decides the display state of a loan on the given calendar day.
// A returned loan is RETURNED no matter what its due date says. An active
// loan is OVERDUE only when its due date's calendar day is strictly before
// today, so a loan due today is still ACTIVE.
func Classify(l models.Loan, today date.Date) Classification {
	if l.Status == models.LoanStatusReturned {
		return ClassReturned
	}
	if !l.DueDate.IsZero() && l.DueDate.Before(today) {
		return ClassOverdue
	}
	return ClassActive
}
