package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/librishare/librishare/internal/auth"
	"github.com/librishare/librishare/pkg/database"
	"github.com/librishare/librishare/pkg/logger"
	"github.com/librishare/librishare/pkg/models"
)

const testSecret = "test-secret"

func setupAuthTest(t *testing.T) (*gin.Engine, func()) {
	tmpDir := t.TempDir()
	if err := database.InitDatabase(tmpDir + "/test.db"); err != nil {
		t.Fatalf("init db: %v", err)
	}

	logger.Init(logger.ERROR, false, nil)
	handler := auth.NewHandler(testSecret)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/users", handler.Register)
	router.POST("/users/login", handler.Login)
	router.GET("/users/:id", handler.GetProfile)

	protected := router.Group("/users/:id")
	protected.Use(auth.AuthMiddleware(testSecret))
	protected.Use(auth.RequireSelf())
	protected.PATCH("/password", handler.ChangePassword)
	protected.GET("/private", func(c *gin.Context) {
		c.JSON(200, gin.H{"userId": c.GetString("user_id")})
	})

	return router, func() { database.Close() }
}

func postJSON(t *testing.T, router *gin.Engine, url, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("POST", url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func register(t *testing.T, router *gin.Engine) models.AuthResponse {
	t.Helper()

	resp := postJSON(t, router, "/users", `{"username": "ana", "email": "ana@example.com", "password": "Sup3rSecret"}`)
	if resp.Code != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var authResp models.AuthResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &authResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return authResp
}

func TestRegister_ReturnsTokenAndUserID(t *testing.T) {
	router, cleanup := setupAuthTest(t)
	defer cleanup()

	authResp := register(t, router)

	if authResp.Token == "" {
		t.Error("expected a token")
	}
	if authResp.UserID == "" {
		t.Error("expected a user id")
	}
	if authResp.Username != "ana" {
		t.Errorf("expected username ana, got %s", authResp.Username)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	router, cleanup := setupAuthTest(t)
	defer cleanup()

	register(t, router)

	resp := postJSON(t, router, "/users", `{"username": "ana", "email": "other@example.com", "password": "Sup3rSecret"}`)
	if resp.Code != 409 {
		t.Fatalf("expected 409, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRegister_RejectsBadInput(t *testing.T) {
	router, cleanup := setupAuthTest(t)
	defer cleanup()

	cases := []struct {
		name string
		body string
	}{
		{"invalid email", `{"username": "bob", "email": "not-an-email", "password": "Sup3rSecret"}`},
		{"short password", `{"username": "bob", "email": "bob@example.com", "password": "Ab1"}`},
		{"no digits", `{"username": "bob", "email": "bob@example.com", "password": "OnlyLetters"}`},
		{"missing username", `{"email": "bob@example.com", "password": "Sup3rSecret"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, router, "/users", tc.body)
			if resp.Code != 400 {
				t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
			}
		})
	}
}

func TestLogin_WithUsernameOrEmail(t *testing.T) {
	router, cleanup := setupAuthTest(t)
	defer cleanup()

	register(t, router)

	resp := postJSON(t, router, "/users/login", `{"username": "ana", "password": "Sup3rSecret"}`)
	if resp.Code != 200 {
		t.Fatalf("login by username: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = postJSON(t, router, "/users/login", `{"email": "ana@example.com", "password": "Sup3rSecret"}`)
	if resp.Code != 200 {
		t.Fatalf("login by email: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestLogin_Failures(t *testing.T) {
	router, cleanup := setupAuthTest(t)
	defer cleanup()

	register(t, router)

	resp := postJSON(t, router, "/users/login", `{"username": "ana", "password": "WrongPass1"}`)
	if resp.Code != 401 {
		t.Fatalf("wrong password: expected 401, got %d", resp.Code)
	}

	resp = postJSON(t, router, "/users/login", `{"username": "nobody", "password": "Sup3rSecret"}`)
	if resp.Code != 401 {
		t.Fatalf("unknown account: expected 401, got %d", resp.Code)
	}
}

func TestGetProfile_PublicAndHidesPassword(t *testing.T) {
	router, cleanup := setupAuthTest(t)
	defer cleanup()

	authResp := register(t, router)

	req := httptest.NewRequest("GET", "/users/"+authResp.UserID, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != 200 {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if bytes.Contains(resp.Body.Bytes(), []byte("password")) {
		t.Error("profile response must not leak password data")
	}
}

func TestChangePassword(t *testing.T) {
	router, cleanup := setupAuthTest(t)
	defer cleanup()

	authResp := register(t, router)
	url := "/users/" + authResp.UserID + "/password"

	patch := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("PATCH", url, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+authResp.Token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	// Wrong current password.
	resp := patch(`{"currentPassword": "WrongPass1", "newPassword": "N3wSecretPw"}`)
	if resp.Code != 401 {
		t.Fatalf("wrong current password: expected 401, got %d", resp.Code)
	}

	// Weak new password.
	resp = patch(`{"currentPassword": "Sup3rSecret", "newPassword": "short"}`)
	if resp.Code != 400 {
		t.Fatalf("weak new password: expected 400, got %d", resp.Code)
	}

	// Success, then the new password logs in and the old one does not.
	resp = patch(`{"currentPassword": "Sup3rSecret", "newPassword": "N3wSecretPw"}`)
	if resp.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	loginResp := postJSON(t, router, "/users/login", `{"username": "ana", "password": "N3wSecretPw"}`)
	if loginResp.Code != 200 {
		t.Fatalf("new password login: expected 200, got %d", loginResp.Code)
	}
	loginResp = postJSON(t, router, "/users/login", `{"username": "ana", "password": "Sup3rSecret"}`)
	if loginResp.Code != 401 {
		t.Fatalf("old password login: expected 401, got %d", loginResp.Code)
	}
}

func TestAuthMiddleware_TokenScopesAccess(t *testing.T) {
	router, cleanup := setupAuthTest(t)
	defer cleanup()

	authResp := register(t, router)

	// No token.
	req := httptest.NewRequest("GET", "/users/"+authResp.UserID+"/private", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != 401 {
		t.Fatalf("missing token: expected 401, got %d", resp.Code)
	}

	// Garbage token.
	req = httptest.NewRequest("GET", "/users/"+authResp.UserID+"/private", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != 401 {
		t.Fatalf("bad token: expected 401, got %d", resp.Code)
	}

	// Valid token, own resource.
	req = httptest.NewRequest("GET", "/users/"+authResp.UserID+"/private", nil)
	req.Header.Set("Authorization", "Bearer "+authResp.Token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != 200 {
		t.Fatalf("own resource: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// Valid token, someone else's resource.
	req = httptest.NewRequest("GET", "/users/other-user/private", nil)
	req.Header.Set("Authorization", "Bearer "+authResp.Token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != 403 {
		t.Fatalf("foreign resource: expected 403, got %d", resp.Code)
	}
}
