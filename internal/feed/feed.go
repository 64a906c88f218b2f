package feed

import (
	"encoding/json"
	"time"

	"github.com/librishare/librishare/pkg/database"
	"github.com/librishare/librishare/pkg/logger"
)

// Activity types recorded by the other handlers.
const (
	TypeBookAdded     = "BOOK_ADDED"
	TypeStatusChanged = "STATUS_CHANGED"
	TypeBookRated     = "BOOK_RATED"
	TypeLoanCreated   = "LOAN_CREATED"
	TypeLoanReturned  = "LOAN_RETURNED"
)

type Activity struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Type      string    `json:"type"`
	BookID    int64     `json:"bookId,omitempty"`
	BookTitle string    `json:"bookTitle,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service records activity rows and pushes them to connected feed clients.
// Recording is best-effort: a failed insert never fails the action that
// triggered it.
type Service struct {
	hub *Hub
	log *logger.Logger
}

func NewService(hub *Hub) *Service {
	return &Service{
		hub: hub,
		log: logger.WithContext("component", "feed"),
	}
}

// Record stores an activity row and broadcasts it. bookID may be 0 for
// events without a book reference.
func (s *Service) Record(userID, activityType string, bookID int64, detail string) {
	res, err := database.DB.Exec(
		`INSERT INTO activity (user_id, type, book_id, detail) VALUES (?, ?, ?, ?)`,
		userID, activityType, nullableID(bookID), detail,
	)
	if err != nil {
		s.log.Warn("activity_insert_failed", "type", activityType, "error", err.Error())
		return
	}
	id, _ := res.LastInsertId()

	act := Activity{
		ID:        id,
		UserID:    userID,
		Type:      activityType,
		BookID:    bookID,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	s.fillNames(&act)

	if s.hub != nil {
		if data, err := json.Marshal(act); err == nil {
			s.hub.Broadcast(data)
		}
	}
}

// Recent returns the newest activity rows across all users, capped at limit.
func (s *Service) Recent(limit int) ([]Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `
        SELECT a.id, a.user_id, u.username, a.type, a.book_id, COALESCE(b.title, ''), a.detail, a.created_at
        FROM activity a
        JOIN users u ON a.user_id = u.id
        LEFT JOIN books b ON a.book_id = b.id
        ORDER BY a.created_at DESC, a.id DESC
        LIMIT ?`

	rows, err := database.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []Activity{}
	for rows.Next() {
		var act Activity
		var bookID *int64
		if err := rows.Scan(&act.ID, &act.UserID, &act.Username, &act.Type, &bookID, &act.BookTitle, &act.Detail, &act.CreatedAt); err != nil {
			s.log.Warn("activity_scan_failed", "error", err.Error())
			continue
		}
		if bookID != nil {
			act.BookID = *bookID
		}
		activities = append(activities, act)
	}
	return activities, nil
}

func (s *Service) fillNames(act *Activity) {
	_ = database.DB.QueryRow(`SELECT username FROM users WHERE id = ?`, act.UserID).Scan(&act.Username)
	if act.BookID != 0 {
		_ = database.DB.QueryRow(`SELECT title FROM books WHERE id = ?`, act.BookID).Scan(&act.BookTitle)
	}
}

func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
