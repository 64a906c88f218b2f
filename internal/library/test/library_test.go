package library_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/librishare/librishare/internal/feed"
	"github.com/librishare/librishare/internal/library"
	"github.com/librishare/librishare/pkg/database"
	"github.com/librishare/librishare/pkg/logger"
	"github.com/librishare/librishare/pkg/models"
)

const testUserID = "user-1"

func setupLibraryTest(t *testing.T) (*gin.Engine, func()) {
	tmpDir := t.TempDir()
	if err := database.InitDatabase(tmpDir + "/test.db"); err != nil {
		t.Fatalf("init db: %v", err)
	}

	logger.Init(logger.ERROR, false, nil)

	seed := []string{
		`INSERT INTO users (id, username, email, password_hash) VALUES ('user-1', 'ana', 'ana@example.com', 'x')`,
		`INSERT INTO books (id, title, author, pages) VALUES (1, 'Dune', 'Frank Herbert', 412)`,
		`INSERT INTO books (id, title, author, pages) VALUES (2, 'Hyperion', 'Dan Simmons', 482)`,
	}
	for _, q := range seed {
		if _, err := database.DB.Exec(q); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	handler := library.NewHandler(feed.NewService(nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/users/:id/library", handler.GetLibrary)
	router.POST("/users/:id/library", handler.AddToLibrary)
	router.GET("/users/:id/library/stats", handler.GetStats)
	router.PATCH("/users/:id/library/:entryId/status", handler.UpdateStatus)
	router.PATCH("/users/:id/library/:entryId/progress", handler.UpdateProgress)
	router.PATCH("/users/:id/library/:entryId/rating", handler.RateEntry)
	router.DELETE("/users/:id/library/:entryId", handler.RemoveFromLibrary)

	return router, func() { database.Close() }
}

func addEntry(t *testing.T, router *gin.Engine, body string) models.LibraryEntry {
	t.Helper()

	req := httptest.NewRequest("POST", "/users/"+testUserID+"/library", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var entry models.LibraryEntry
	if err := json.Unmarshal(resp.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	return entry
}

func doPatch(t *testing.T, router *gin.Engine, url, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("PATCH", url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAddToLibrary_DefaultsToRead(t *testing.T) {
	router, cleanup := setupLibraryTest(t)
	defer cleanup()

	entry := addEntry(t, router, `{"bookId": 1}`)

	if entry.Status != models.StatusToRead {
		t.Errorf("expected TO_READ, got %s", entry.Status)
	}
	if entry.Title != "Dune" {
		t.Errorf("expected embedded title, got %q", entry.Title)
	}
}

func TestAddToLibrary_DuplicateConflicts(t *testing.T) {
	router, cleanup := setupLibraryTest(t)
	defer cleanup()

	addEntry(t, router, `{"bookId": 1}`)

	req := httptest.NewRequest("POST", "/users/"+testUserID+"/library", bytes.NewBufferString(`{"bookId": 1}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != 409 {
		t.Fatalf("expected 409, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAddToLibrary_UnknownBook(t *testing.T) {
	router, cleanup := setupLibraryTest(t)
	defer cleanup()

	req := httptest.NewRequest("POST", "/users/"+testUserID+"/library", bytes.NewBufferString(`{"bookId": 99}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != 404 {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestUpdateStatus(t *testing.T) {
	router, cleanup := setupLibraryTest(t)
	defer cleanup()

	entry := addEntry(t, router, `{"bookId": 1}`)

	url := fmt.Sprintf("/users/%s/library/%d/status", testUserID, entry.ID)
	resp := doPatch(t, router, url, `{"status": "READING"}`)
	if resp.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doPatch(t, router, "/users/"+testUserID+"/library/9999/status", `{"status": "READ"}`)
	if resp.Code != 404 {
		t.Fatalf("expected 404 for unknown entry, got %d", resp.Code)
	}
}

func TestUpdateProgress_AutoStatusTransitions(t *testing.T) {
	router, cleanup := setupLibraryTest(t)
	defer cleanup()

	entry := addEntry(t, router, `{"bookId": 1}`)
	url := fmt.Sprintf("/users/%s/library/%d/progress", testUserID, entry.ID)

	// First progress on a to-read book flips it to READING.
	resp := doPatch(t, router, url, `{"currentPage": 50}`)
	if resp.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var result struct {
		Status      string `json:"status"`
		CurrentPage int    `json:"currentPage"`
	}
	json.Unmarshal(resp.Body.Bytes(), &result)
	if result.Status != models.StatusReading {
		t.Errorf("expected READING, got %s", result.Status)
	}

	// Reaching the last page flips to READ.
	resp = doPatch(t, router, url, `{"currentPage": 412}`)
	json.Unmarshal(resp.Body.Bytes(), &result)
	if result.Status != models.StatusRead {
		t.Errorf("expected READ, got %s", result.Status)
	}
}

func TestUpdateProgress_PageBeyondBookRejected(t *testing.T) {
	router, cleanup := setupLibraryTest(t)
	defer cleanup()

	entry := addEntry(t, router, `{"bookId": 1}`)
	url := fmt.Sprintf("/users/%s/library/%d/progress", testUserID, entry.ID)

	resp := doPatch(t, router, url, `{"currentPage": 500}`)
	if resp.Code != 400 {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRateEntry(t *testing.T) {
	router, cleanup := setupLibraryTest(t)
	defer cleanup()

	entry := addEntry(t, router, `{"bookId": 1}`)
	url := fmt.Sprintf("/users/%s/library/%d/rating", testUserID, entry.ID)

	resp := doPatch(t, router, url, `{"rating": 5, "review": "A classic."}`)
	if resp.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// Out-of-range rating fails binding.
	resp = doPatch(t, router, url, `{"rating": 6}`)
	if resp.Code != 400 {
		t.Fatalf("expected 400 for rating 6, got %d", resp.Code)
	}

	// The stored rating and review come back on the list.
	req := httptest.NewRequest("GET", "/users/"+testUserID+"/library", nil)
	listResp := httptest.NewRecorder()
	router.ServeHTTP(listResp, req)

	var entries []models.LibraryEntry
	json.Unmarshal(listResp.Body.Bytes(), &entries)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Rating == nil || *entries[0].Rating != 5 {
		t.Errorf("expected rating 5, got %v", entries[0].Rating)
	}
	if entries[0].Review != "A classic." {
		t.Errorf("expected review to round-trip, got %q", entries[0].Review)
	}
}

func TestRemoveFromLibrary(t *testing.T) {
	router, cleanup := setupLibraryTest(t)
	defer cleanup()

	entry := addEntry(t, router, `{"bookId": 1}`)

	url := fmt.Sprintf("/users/%s/library/%d", testUserID, entry.ID)
	req := httptest.NewRequest("DELETE", url, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != 200 {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest("DELETE", url, nil))
	if resp.Code != 404 {
		t.Fatalf("expected 404 on second delete, got %d", resp.Code)
	}
}

func TestGetStats_GroupsWantToReadWithToRead(t *testing.T) {
	router, cleanup := setupLibraryTest(t)
	defer cleanup()

	addEntry(t, router, `{"bookId": 1, "status": "READ"}`)
	addEntry(t, router, `{"bookId": 2, "status": "WANT_TO_READ"}`)

	req := httptest.NewRequest("GET", "/users/"+testUserID+"/library/stats", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != 200 {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var stats models.LibraryStats
	json.Unmarshal(resp.Body.Bytes(), &stats)
	if stats.TotalBooks != 2 {
		t.Errorf("expected 2 total, got %d", stats.TotalBooks)
	}
	if stats.BooksRead != 1 {
		t.Errorf("expected 1 read, got %d", stats.BooksRead)
	}
	if stats.BooksToRead != 1 {
		t.Errorf("expected WANT_TO_READ counted as to-read, got %d", stats.BooksToRead)
	}
}
