package loan

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/librishare/librishare/internal/feed"
	"github.com/librishare/librishare/pkg/database"
	"github.com/librishare/librishare/pkg/date"
	"github.com/librishare/librishare/pkg/logger"
	"github.com/librishare/librishare/pkg/metrics"
	"github.com/librishare/librishare/pkg/models"
)

// DefaultLoanDays is how far out the due date lands when the request omits one.
const DefaultLoanDays = 14

// Handler handles loan-related operations
type Handler struct {
	feed *feed.Service
	log  *logger.Logger
}

// NewHandler creates a new loan handler
func NewHandler(fs *feed.Service) *Handler {
	return &Handler{
		feed: fs,
		log:  logger.WithContext("component", "loan_handler"),
	}
}

const loanColumns = `
    SELECT l.id, l.book_id, b.title, b.author, b.cover_image_url,
           l.borrower_name, l.borrower_email, l.loan_date, l.due_date, l.return_date,
           l.status, l.notes, l.created_at
    FROM loans l
    JOIN books b ON l.book_id = b.id`

// ListLoans returns every loan for a user, newest first, with catalog data
// embedded so the client renders without extra fetches.
func (h *Handler) ListLoans(c *gin.Context) {
	userID := c.Param("id")

	rows, err := database.DB.Query(loanColumns+` WHERE l.user_id = ? ORDER BY l.created_at DESC, l.id DESC`, userID)
	if err != nil {
		h.log.Error("loan_list_query_failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	loans := []models.Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			h.log.Warn("loan_scan_failed", "error", err.Error())
			continue
		}
		loans = append(loans, l)
	}

	c.JSON(http.StatusOK, loans)
}

// CreateLoan registers a new loan for a book the user owns. Loans start
// ACTIVE; a missing due date defaults to two weeks out.
func (h *Handler) CreateLoan(c *gin.Context) {
	userID := c.Param("id")

	var req models.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The book must be in the lender's library, not just the catalog
	var owned bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM library_entries WHERE user_id = ? AND book_id = ?)`
	if err := database.DB.QueryRow(checkQuery, userID, req.BookID).Scan(&owned); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !owned {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not in your library"})
		return
	}

	today := date.Today()
	dueDate := today.AddDays(DefaultLoanDays)
	if req.DueDate != "" {
		parsed, err := date.Parse(req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due date, expected YYYY-MM-DD"})
			return
		}
		dueDate = parsed
	}

	query := `INSERT INTO loans (user_id, book_id, borrower_name, borrower_email, loan_date, due_date, status, notes)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := database.DB.Exec(
		query,
		userID,
		req.BookID,
		req.BorrowerName,
		req.BorrowerEmail,
		today.String(),
		dueDate.String(),
		models.LoanStatusActive,
		req.Notes,
	)
	if err != nil {
		h.log.Error("loan_insert_failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create loan"})
		return
	}

	loanID, _ := res.LastInsertId()
	created, err := h.getLoan(userID, loanID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load created loan"})
		return
	}

	metrics.IncrementLoanCreates()
	h.feed.Record(userID, feed.TypeLoanCreated, req.BookID, "lent to "+req.BorrowerName)
	h.log.Info("loan_created", "loan_id", loanID, "user_id", userID, "due_date", dueDate.String())

	c.JSON(http.StatusCreated, created)
}

// ReturnLoan flips an ACTIVE loan to RETURNED and stamps the return date.
func (h *Handler) ReturnLoan(c *gin.Context) {
	userID := c.Param("id")

	loanID, err := strconv.ParseInt(c.Param("loanId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loan ID"})
		return
	}

	var status string
	var bookID int64
	err = database.DB.QueryRow(`SELECT status, book_id FROM loans WHERE id = ? AND user_id = ?`, loanID, userID).
		Scan(&status, &bookID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if status == models.LoanStatusReturned {
		c.JSON(http.StatusConflict, gin.H{"error": "Loan already returned"})
		return
	}

	today := date.Today()
	_, err = database.DB.Exec(
		`UPDATE loans SET status = ?, return_date = ? WHERE id = ? AND user_id = ?`,
		models.LoanStatusReturned, today.String(), loanID, userID,
	)
	if err != nil {
		h.log.Error("loan_return_failed", "loan_id", loanID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to return loan"})
		return
	}

	returned, err := h.getLoan(userID, loanID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load loan"})
		return
	}

	metrics.IncrementLoanReturns()
	h.feed.Record(userID, feed.TypeLoanReturned, bookID, "")
	h.log.Info("loan_returned", "loan_id", loanID, "user_id", userID)

	c.JSON(http.StatusOK, returned)
}

func (h *Handler) getLoan(userID string, loanID int64) (models.Loan, error) {
	row := database.DB.QueryRow(loanColumns+` WHERE l.id = ? AND l.user_id = ?`, loanID, userID)
	return scanLoan(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLoan(row rowScanner) (models.Loan, error) {
	var l models.Loan
	var borrowerEmail, coverURL, notes sql.NullString
	var returnDate sql.NullString

	err := row.Scan(
		&l.ID,
		&l.BookID,
		&l.BookTitle,
		&l.BookAuthor,
		&coverURL,
		&l.BorrowerName,
		&borrowerEmail,
		&l.LoanDate,
		&l.DueDate,
		&returnDate,
		&l.Status,
		&notes,
		&l.CreatedAt,
	)
	if err != nil {
		return models.Loan{}, err
	}

	l.BorrowerEmail = borrowerEmail.String
	l.BookCoverURL = coverURL.String
	l.Notes = notes.String
	if returnDate.Valid && returnDate.String != "" {
		parsed, err := date.Parse(returnDate.String)
		if err == nil {
			l.ReturnDate = &parsed
		}
	}
	return l, nil
}
