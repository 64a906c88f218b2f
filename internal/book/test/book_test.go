package book_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/librishare/librishare/internal/book"
	"github.com/librishare/librishare/pkg/database"
	"github.com/librishare/librishare/pkg/logger"
	"github.com/librishare/librishare/pkg/models"
)

func setupBookTest(t *testing.T) (*gin.Engine, func()) {
	tmpDir := t.TempDir()
	if err := database.InitDatabase(tmpDir + "/test.db"); err != nil {
		t.Fatalf("init db: %v", err)
	}

	logger.Init(logger.ERROR, false, nil)

	seed := []string{
		`INSERT INTO books (title, author, isbn, pages) VALUES ('Dune', 'Frank Herbert', '9780441013593', 412)`,
		`INSERT INTO books (title, author, isbn, pages) VALUES ('Dune Messiah', 'Frank Herbert', '9780593098233', 256)`,
		`INSERT INTO books (title, author, isbn, pages) VALUES ('Neuromancer', 'William Gibson', '9780441569595', 271)`,
	}
	for _, q := range seed {
		if _, err := database.DB.Exec(q); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	handler := book.NewHandler()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/books", handler.SearchBooks)
	router.GET("/books/:id", handler.GetBookByID)
	router.POST("/books", handler.CreateBook)

	return router, func() { database.Close() }
}

func search(t *testing.T, router *gin.Engine, query string) []models.Book {
	t.Helper()

	req := httptest.NewRequest("GET", "/books"+query, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		Books []models.Book `json:"books"`
		Total int           `json:"total"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return result.Books
}

func TestSearchBooks_NoFilterListsAll(t *testing.T) {
	router, cleanup := setupBookTest(t)
	defer cleanup()

	books := search(t, router, "")
	if len(books) != 3 {
		t.Fatalf("expected 3 books, got %d", len(books))
	}
	// Alphabetical by title.
	if books[0].Title != "Dune" || books[2].Title != "Neuromancer" {
		t.Errorf("unexpected order: %s ... %s", books[0].Title, books[2].Title)
	}
}

func TestSearchBooks_QueryMatchesTitleAuthorISBN(t *testing.T) {
	router, cleanup := setupBookTest(t)
	defer cleanup()

	if got := search(t, router, "?q=Dune"); len(got) != 2 {
		t.Errorf("title query: expected 2, got %d", len(got))
	}
	if got := search(t, router, "?q=Gibson"); len(got) != 1 {
		t.Errorf("author query: expected 1, got %d", len(got))
	}
	if got := search(t, router, "?q=9780441569595"); len(got) != 1 {
		t.Errorf("isbn query: expected 1, got %d", len(got))
	}
	if got := search(t, router, "?q=nothing-matches"); len(got) != 0 {
		t.Errorf("miss: expected 0, got %d", len(got))
	}
}

func TestSearchBooks_AuthorFilterAndLimit(t *testing.T) {
	router, cleanup := setupBookTest(t)
	defer cleanup()

	if got := search(t, router, "?author=Herbert"); len(got) != 2 {
		t.Errorf("author filter: expected 2, got %d", len(got))
	}
	if got := search(t, router, "?limit=1"); len(got) != 1 {
		t.Errorf("limit: expected 1, got %d", len(got))
	}
}

func TestGetBookByID(t *testing.T) {
	router, cleanup := setupBookTest(t)
	defer cleanup()

	req := httptest.NewRequest("GET", "/books/1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != 200 {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var b models.Book
	json.Unmarshal(resp.Body.Bytes(), &b)
	if b.Title != "Dune" {
		t.Errorf("expected Dune, got %q", b.Title)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest("GET", "/books/999", nil))
	if resp.Code != 404 {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestCreateBook(t *testing.T) {
	router, cleanup := setupBookTest(t)
	defer cleanup()

	body := `{"title": "Hyperion", "author": "Dan Simmons", "pages": 482, "publicationYear": 1989}`
	req := httptest.NewRequest("POST", "/books", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created models.Book
	json.Unmarshal(resp.Body.Bytes(), &created)
	if created.ID == 0 {
		t.Error("expected assigned id")
	}
	if created.PublicationYear != 1989 {
		t.Errorf("expected publication year stored, got %d", created.PublicationYear)
	}

	// Title is required.
	req = httptest.NewRequest("POST", "/books", bytes.NewBufferString(`{"author": "Anonymous"}`))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != 400 {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
