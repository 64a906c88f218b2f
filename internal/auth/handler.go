package auth

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/librishare/librishare/pkg/database"
	"github.com/librishare/librishare/pkg/logger"
	"github.com/librishare/librishare/pkg/models"
	"github.com/librishare/librishare/pkg/utils"
)

type Handler struct {
	JWTSecret string
	log       *logger.Logger
}

func NewHandler(jwtSecret string) *Handler {
	return &Handler{
		JWTSecret: jwtSecret,
		log:       logger.WithContext("component", "auth_handler"),
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}
	if err := validatePasswordStrength(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := uuid.NewString()

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	query := `INSERT INTO users (id, username, email, password_hash) VALUES (?, ?, ?, ?)`
	_, err = database.DB.Exec(query, userID, req.Username, req.Email, hashedPassword)
	if err != nil {
		h.log.Warn("user_insert_failed", "error", err.Error())
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
			return
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := utils.GenerateJWT(userID, req.Username, h.JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	var createdAt time.Time
	_ = database.DB.QueryRow(`SELECT created_at FROM users WHERE id = ?`, userID).Scan(&createdAt)

	h.log.Info("user_registered", "user_id", userID, "username", req.Username)

	c.JSON(http.StatusCreated, models.AuthResponse{
		Token:     token,
		UserID:    userID,
		Username:  req.Username,
		Email:     req.Email,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: createdAt,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Username == "" && req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email is required"})
		return
	}

	var user models.User
	var err error
	if req.Username != "" {
		err = database.DB.QueryRow(`SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`, req.Username).
			Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	} else {
		err = database.DB.QueryRow(`SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`, req.Email).
			Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	}
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := utils.CheckPassword(user.PasswordHash, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Username, h.JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	h.log.Info("user_logged_in", "user_id", user.ID)

	c.JSON(http.StatusOK, models.AuthResponse{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: user.CreatedAt,
	})
}

// ChangePassword swaps the stored hash after verifying the current password.
func (h *Handler) ChangePassword(c *gin.Context) {
	userID := c.Param("id")

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validatePasswordStrength(req.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var currentHash string
	err := database.DB.QueryRow(`SELECT password_hash FROM users WHERE id = ?`, userID).Scan(&currentHash)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err := utils.CheckPassword(currentHash, req.CurrentPassword); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	newHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	if _, err := database.DB.Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, newHash, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	h.log.Info("password_changed", "user_id", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// GetProfile serves the public profile for a user id.
func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	query := `SELECT id, username, email, bio, created_at FROM users WHERE id = ?`
	err := database.DB.QueryRow(query, userID).Scan(&user.ID, &user.Username, &user.Email, &user.Bio, &user.CreatedAt)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func validatePasswordStrength(pw string) error {
	if len(pw) < 8 {
		return fmt.Errorf("password too weak: must be at least 8 characters with mixed case and numbers")
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !(lower && upper && digit) {
		return fmt.Errorf("password too weak: must be at least 8 characters with mixed case and numbers")
	}
	return nil
}
