package book

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/librishare/librishare/pkg/database"
	"github.com/librishare/librishare/pkg/logger"
	"github.com/librishare/librishare/pkg/models"
)

// Handler handles catalog operations
type Handler struct {
	log *logger.Logger
}

// NewHandler creates a new catalog handler
func NewHandler() *Handler {
	return &Handler{
		log: logger.WithContext("component", "book_handler"),
	}
}

const bookColumns = `SELECT id, title, author, publisher, publication_year, isbn, pages,
       cover_image_url, synopsis, price, purchase_url, created_at FROM books`

// SearchBooks lists catalog books, optionally filtered by a free-text query
// over title, author and ISBN.
func (h *Handler) SearchBooks(c *gin.Context) {
	var req models.SearchBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Limit == 0 {
		req.Limit = 50
	}

	query := bookColumns + ` WHERE 1=1`
	args := []interface{}{}

	if req.Query != "" {
		query += ` AND (title LIKE ? OR author LIKE ? OR isbn LIKE ?)`
		pattern := "%" + req.Query + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if req.Author != "" {
		query += ` AND author LIKE ?`
		args = append(args, "%"+req.Author+"%")
	}

	query += ` ORDER BY title LIMIT ? OFFSET ?`
	args = append(args, req.Limit, req.Offset)

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		h.log.Error("book_search_failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			continue
		}
		books = append(books, b)
	}

	c.JSON(http.StatusOK, gin.H{
		"books": books,
		"total": len(books),
	})
}

// GetBookByID gets a specific catalog book
func (h *Handler) GetBookByID(c *gin.Context) {
	bookID := c.Param("id")

	row := database.DB.QueryRow(bookColumns+` WHERE id = ?`, bookID)
	b, err := scanBook(row)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, b)
}

// CreateBook adds a book to the shared catalog (the manual-add flow).
func (h *Handler) CreateBook(c *gin.Context) {
	var req models.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := `INSERT INTO books (title, author, publisher, publication_year, isbn, pages, cover_image_url, synopsis, price, purchase_url)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := database.DB.Exec(
		query,
		req.Title,
		req.Author,
		req.Publisher,
		req.PublicationYear,
		req.ISBN,
		req.Pages,
		req.CoverImageURL,
		req.Synopsis,
		req.Price,
		req.PurchaseURL,
	)
	if err != nil {
		h.log.Error("book_insert_failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create book"})
		return
	}

	bookID, _ := res.LastInsertId()
	row := database.DB.QueryRow(bookColumns+` WHERE id = ?`, bookID)
	created, err := scanBook(row)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load created book"})
		return
	}

	h.log.Info("book_created", "book_id", bookID, "title", req.Title)
	c.JSON(http.StatusCreated, created)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBook(row rowScanner) (models.Book, error) {
	var b models.Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Publisher,
		&b.PublicationYear,
		&b.ISBN,
		&b.Pages,
		&b.CoverImageURL,
		&b.Synopsis,
		&b.Price,
		&b.PurchaseURL,
		&b.CreatedAt,
	)
	return b, err
}
