package models

import (
	"time"

	"github.com/librishare/librishare/pkg/date"
)

// Loan statuses as stored and served by the backend. Overdue is never
// stored; it is derived from the due date at display time.
const (
	LoanStatusActive   = "ACTIVE"
	LoanStatusReturned = "RETURNED"
)

type Loan struct {
	ID            int64      `json:"id" db:"id"`
	BookID        int64      `json:"bookId" db:"book_id"`
	BookTitle     string     `json:"bookTitle"`
	BookAuthor    string     `json:"bookAuthor,omitempty"`
	BookCoverURL  string     `json:"bookCoverUrl,omitempty"`
	BorrowerName  string     `json:"borrowerName" db:"borrower_name"`
	BorrowerEmail string     `json:"borrowerEmail,omitempty" db:"borrower_email"`
	LoanDate      date.Date  `json:"loanDate" db:"loan_date"`
	DueDate       date.Date  `json:"dueDate" db:"due_date"`
	ReturnDate    *date.Date `json:"returnDate,omitempty" db:"return_date"`
	Status        string     `json:"status" db:"status"`
	Notes         string     `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time  `json:"createdAt,omitempty" db:"created_at"`
}

type CreateLoanRequest struct {
	BookID        int64  `json:"bookId" binding:"required"`
	BorrowerName  string `json:"borrowerName" binding:"required"`
	BorrowerEmail string `json:"borrowerEmail" binding:"omitempty,email"`
	DueDate       string `json:"dueDate"` // YYYY-MM-DD, backend default when empty
	Notes         string `json:"notes"`
}
