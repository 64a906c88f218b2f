package library

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/librishare/librishare/internal/feed"
	"github.com/librishare/librishare/pkg/database"
	"github.com/librishare/librishare/pkg/logger"
	"github.com/librishare/librishare/pkg/models"
)

// Handler handles library-entry operations
type Handler struct {
	feed *feed.Service
	log  *logger.Logger
}

// NewHandler creates a new library handler
func NewHandler(fs *feed.Service) *Handler {
	return &Handler{
		feed: fs,
		log:  logger.WithContext("component", "library_handler"),
	}
}

const entryColumns = `
    SELECT e.id, e.book_id, b.title, b.author, b.cover_image_url, b.pages,
           e.status, e.rating, e.review, e.current_page, e.updated_at
    FROM library_entries e
    JOIN books b ON e.book_id = b.id`

// GetLibrary lists the user's library entries with catalog data embedded.
func (h *Handler) GetLibrary(c *gin.Context) {
	userID := c.Param("id")

	rows, err := database.DB.Query(entryColumns+` WHERE e.user_id = ? ORDER BY e.updated_at DESC`, userID)
	if err != nil {
		h.log.Error("library_query_failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	entries := []models.LibraryEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			h.log.Warn("library_scan_failed", "error", err.Error())
			continue
		}
		entries = append(entries, e)
	}

	c.JSON(http.StatusOK, entries)
}

// AddToLibrary creates a library entry for a catalog book.
func (h *Handler) AddToLibrary(c *gin.Context) {
	userID := c.Param("id")

	var req models.AddToLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var bookExists bool
	if err := database.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM books WHERE id = ?)`, req.BookID).Scan(&bookExists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !bookExists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusToRead
	}

	query := `INSERT INTO library_entries (user_id, book_id, status) VALUES (?, ?, ?)`
	res, err := database.DB.Exec(query, userID, req.BookID, status)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			c.JSON(http.StatusConflict, gin.H{"error": "Book already in library"})
			return
		}
		h.log.Error("library_insert_failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add book to library"})
		return
	}

	entryID, _ := res.LastInsertId()
	entry, err := h.getEntry(userID, entryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load created entry"})
		return
	}

	h.feed.Record(userID, feed.TypeBookAdded, req.BookID, "")
	h.log.Info("library_entry_added", "user_id", userID, "book_id", req.BookID, "status", status)

	c.JSON(http.StatusCreated, entry)
}

// UpdateStatus moves an entry between reading states.
func (h *Handler) UpdateStatus(c *gin.Context) {
	userID := c.Param("id")
	entryID := c.Param("entryId")

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := database.DB.Exec(
		`UPDATE library_entries SET status = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		req.Status, time.Now(), entryID, userID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	var bookID int64
	_ = database.DB.QueryRow(`SELECT book_id FROM library_entries WHERE id = ?`, entryID).Scan(&bookID)
	h.feed.Record(userID, feed.TypeStatusChanged, bookID, req.Status)

	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully"})
}

// UpdateProgress records the current page. Reaching the book's final page
// flips the entry to READ; progress from zero on a to-read book flips it
// to READING.
func (h *Handler) UpdateProgress(c *gin.Context) {
	userID := c.Param("id")
	entryID := c.Param("entryId")

	var req models.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	currentPage := *req.CurrentPage

	var status string
	var totalPages int
	err := database.DB.QueryRow(`
        SELECT e.status, b.pages FROM library_entries e
        JOIN books b ON e.book_id = b.id
        WHERE e.id = ? AND e.user_id = ?`, entryID, userID).Scan(&status, &totalPages)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if totalPages > 0 && currentPage > totalPages {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Current page exceeds total pages (%d)", totalPages)})
		return
	}

	newStatus := status
	if totalPages > 0 && currentPage >= totalPages {
		newStatus = models.StatusRead
	} else if currentPage > 0 && (status == models.StatusToRead || status == models.StatusWantToRead) {
		newStatus = models.StatusReading
	}

	_, err = database.DB.Exec(
		`UPDATE library_entries SET current_page = ?, status = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		currentPage, newStatus, time.Now(), entryID, userID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Progress updated successfully",
		"currentPage": currentPage,
		"status":      newStatus,
	})
}

// RateEntry stores a 1-5 rating and optional review text.
func (h *Handler) RateEntry(c *gin.Context) {
	userID := c.Param("id")
	entryID := c.Param("entryId")

	var req models.RateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := database.DB.Exec(
		`UPDATE library_entries SET rating = ?, review = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		*req.Rating, req.Review, time.Now(), entryID, userID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save rating"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	var bookID int64
	_ = database.DB.QueryRow(`SELECT book_id FROM library_entries WHERE id = ?`, entryID).Scan(&bookID)
	h.feed.Record(userID, feed.TypeBookRated, bookID, fmt.Sprintf("%d stars", *req.Rating))

	c.JSON(http.StatusOK, gin.H{"message": "Rating saved successfully"})
}

// RemoveFromLibrary deletes an entry by explicit user action.
func (h *Handler) RemoveFromLibrary(c *gin.Context) {
	userID := c.Param("id")
	entryID := c.Param("entryId")

	result, err := database.DB.Exec(`DELETE FROM library_entries WHERE id = ? AND user_id = ?`, entryID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove entry"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Book removed from library successfully"})
}

// GetStats serves the dashboard summary counts.
func (h *Handler) GetStats(c *gin.Context) {
	userID := c.Param("id")

	rows, err := database.DB.Query(`SELECT status, COUNT(*) FROM library_entries WHERE user_id = ? GROUP BY status`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	var stats models.LibraryStats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			continue
		}
		stats.TotalBooks += count
		switch status {
		case models.StatusRead:
			stats.BooksRead += count
		case models.StatusReading:
			stats.BooksReading += count
		case models.StatusToRead, models.StatusWantToRead:
			stats.BooksToRead += count
		}
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) getEntry(userID string, entryID int64) (models.LibraryEntry, error) {
	row := database.DB.QueryRow(entryColumns+` WHERE e.id = ? AND e.user_id = ?`, entryID, userID)
	return scanEntry(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (models.LibraryEntry, error) {
	var e models.LibraryEntry
	var rating sql.NullInt64
	var review, coverURL sql.NullString

	err := row.Scan(
		&e.ID,
		&e.BookID,
		&e.Title,
		&e.Author,
		&coverURL,
		&e.TotalPages,
		&e.Status,
		&rating,
		&review,
		&e.CurrentPage,
		&e.UpdatedAt,
	)
	if err != nil {
		return models.LibraryEntry{}, err
	}

	e.CoverImageURL = coverURL.String
	e.Review = review.String
	if rating.Valid {
		r := int(rating.Int64)
		e.Rating = &r
	}
	return e, nil
}
