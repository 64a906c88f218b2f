package loan_test

import (
	"testing"

	"github.com/librishare/librishare/internal/loan"
	"github.com/librishare/librishare/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLoans() []models.Loan {
	returnDate := today.AddDays(-3)
	return []models.Loan{
		{ID: 1, BookTitle: "Dune", BorrowerName: "Ana Fontana", DueDate: today.AddDays(7), Status: models.LoanStatusActive},
		{ID: 2, BookTitle: "Neuromancer", BorrowerName: "Bob", DueDate: today.AddDays(-2), Status: models.LoanStatusActive},
		{ID: 3, BookTitle: "Hyperion", BorrowerName: "Carol", DueDate: today.AddDays(-10), Status: models.LoanStatusReturned, ReturnDate: &returnDate},
		{ID: 4, BookTitle: "Anathem", BorrowerName: "Dave", DueDate: today, Status: models.LoanStatusActive},
	}
}

func ids(loans []models.Loan) []int64 {
	out := make([]int64, len(loans))
	for i, l := range loans {
		out[i] = l.ID
	}
	return out
}

func TestParseTab(t *testing.T) {
	assert.Equal(t, loan.TabActive, loan.ParseTab("active"))
	assert.Equal(t, loan.TabOverdue, loan.ParseTab("OVERDUE"))
	assert.Equal(t, loan.TabReturned, loan.ParseTab("returned"))
	assert.Equal(t, loan.TabAll, loan.ParseTab("all"))
	assert.Equal(t, loan.TabAll, loan.ParseTab(""))
	assert.Equal(t, loan.TabAll, loan.ParseTab("bogus"))
}

func TestFilter_TabsPartitionTheList(t *testing.T) {
	loans := sampleLoans()

	assert.Equal(t, []int64{1, 4}, ids(loan.Filter(loans, "", loan.TabActive, today)))
	assert.Equal(t, []int64{2}, ids(loan.Filter(loans, "", loan.TabOverdue, today)))
	assert.Equal(t, []int64{3}, ids(loan.Filter(loans, "", loan.TabReturned, today)))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(loan.Filter(loans, "", loan.TabAll, today)))
}

func TestFilter_QueryMatchesBorrowerOrTitle(t *testing.T) {
	loans := sampleLoans()

	// Substring of a borrower name, any case.
	assert.Equal(t, []int64{1}, ids(loan.Filter(loans, "fontana", loan.TabAll, today)))
	assert.Equal(t, []int64{1}, ids(loan.Filter(loans, "FONT", loan.TabAll, today)))

	// "ana" hits borrower "Ana Fontana" and title "Anathem".
	assert.Equal(t, []int64{1, 4}, ids(loan.Filter(loans, "ana", loan.TabAll, today)))

	// Title-only match.
	assert.Equal(t, []int64{2}, ids(loan.Filter(loans, "neuro", loan.TabAll, today)))

	assert.Empty(t, loan.Filter(loans, "zzz", loan.TabAll, today))
}

func TestFilter_QueryAndTabAreIndependent(t *testing.T) {
	loans := sampleLoans()

	// Tab-first and text-first must agree, so filtering the active tab with
	// a query equals querying everything and then keeping active loans.
	got := loan.Filter(loans, "ana", loan.TabActive, today)

	textFirst := loan.Filter(loan.Filter(loans, "ana", loan.TabAll, today), "", loan.TabActive, today)
	tabFirst := loan.Filter(loan.Filter(loans, "", loan.TabActive, today), "ana", loan.TabAll, today)

	assert.Equal(t, ids(textFirst), ids(got))
	assert.Equal(t, ids(tabFirst), ids(got))
}

func TestFilter_PreservesInputOrder(t *testing.T) {
	loans := sampleLoans()
	got := loan.Filter(loans, "", loan.TabAll, today)
	require.Len(t, got, len(loans))
	assert.Equal(t, ids(loans), ids(got))
}

func TestFilter_TrimsQueryWhitespace(t *testing.T) {
	loans := sampleLoans()
	assert.Equal(t, []int64{2}, ids(loan.Filter(loans, "  bob  ", loan.TabAll, today)))
}
