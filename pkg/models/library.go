package models

import "time"

// Reading statuses for a library entry.
const (
	StatusWantToRead = "WANT_TO_READ"
	StatusToRead     = "TO_READ"
	StatusReading    = "READING"
	StatusRead       = "READ"
)

// LibraryEntry is a user's personal record of a catalog book: reading
// status, rating, review and page progress. Book fields are embedded so
// list views render without a second fetch.
type LibraryEntry struct {
	ID            int64     `json:"id" db:"id"`
	BookID        int64     `json:"bookId" db:"book_id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	Status        string    `json:"status" db:"status"`
	Rating        *int      `json:"rating,omitempty" db:"rating"`
	Review        string    `json:"review,omitempty" db:"review"`
	CurrentPage   int       `json:"currentPage" db:"current_page"`
	TotalPages    int       `json:"totalPages"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

type AddToLibraryRequest struct {
	BookID int64  `json:"bookId" binding:"required"`
	Status string `json:"status" binding:"omitempty,oneof=WANT_TO_READ TO_READ READING READ"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=WANT_TO_READ TO_READ READING READ"`
}

type UpdateProgressRequest struct {
	CurrentPage *int `json:"currentPage" binding:"required,min=0"`
}

type RateEntryRequest struct {
	Rating *int   `json:"rating" binding:"required,min=1,max=5"`
	Review string `json:"review"`
}

// LibraryStats backs the dashboard summary cards.
type LibraryStats struct {
	TotalBooks   int `json:"totalBooks"`
	BooksRead    int `json:"booksRead"`
	BooksReading int `json:"booksReading"`
	BooksToRead  int `json:"booksToRead"`
}
