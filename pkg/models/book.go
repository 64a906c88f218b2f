package models

import "time"

// Book is catalog metadata shared across users' library entries by reference.
type Book struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	Publisher       string    `json:"publisher,omitempty" db:"publisher"`
	PublicationYear int       `json:"publicationYear,omitempty" db:"publication_year"`
	ISBN            string    `json:"isbn,omitempty" db:"isbn"`
	Pages           int       `json:"pages,omitempty" db:"pages"`
	CoverImageURL   string    `json:"coverImageUrl,omitempty" db:"cover_image_url"`
	Synopsis        string    `json:"synopsis,omitempty" db:"synopsis"`
	Price           float64   `json:"price,omitempty" db:"price"`
	PurchaseURL     string    `json:"purchaseUrl,omitempty" db:"purchase_url"`
	CreatedAt       time.Time `json:"createdAt,omitempty" db:"created_at"`
}

type CreateBookRequest struct {
	Title           string  `json:"title" binding:"required"`
	Author          string  `json:"author" binding:"required"`
	Publisher       string  `json:"publisher"`
	PublicationYear int     `json:"publicationYear"`
	ISBN            string  `json:"isbn"`
	Pages           int     `json:"pages" binding:"omitempty,min=1"`
	CoverImageURL   string  `json:"coverImageUrl"`
	Synopsis        string  `json:"synopsis"`
	Price           float64 `json:"price"`
	PurchaseURL     string  `json:"purchaseUrl"`
}

type SearchBooksRequest struct {
	Query  string `form:"q"`
	Author string `form:"author"`
	Limit  int    `form:"limit" binding:"min=0"`
	Offset int    `form:"offset" binding:"min=0"`
}
