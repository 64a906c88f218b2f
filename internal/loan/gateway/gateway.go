// Package gateway is the client-side boundary to the LibriShare REST API:
// it fetches loan and library lists and issues the two loan mutations.
// Mutations are fire-once with no retry; callers reload the full list after
// a success and keep last known-good state after a failure.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/librishare/librishare/internal/loan"
	"github.com/librishare/librishare/pkg/models"
)

// ErrValidation marks client-side rejections that never reach the network.
var ErrValidation = errors.New("validation failed")

// APIError carries the backend's message for a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error (%d)", e.StatusCode)
}

type Gateway struct {
	baseURL string
	userID  string
	token   string
	client  *http.Client
}

// New builds a gateway scoped to one user. The user id is explicit rather
// than read from ambient state so tests can run several simulated users.
func New(baseURL, userID, token string) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		token:   token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchLoans loads the user's full loan list, normalized so downstream
// filtering never checks for absent fields.
func (g *Gateway) FetchLoans(ctx context.Context) ([]models.Loan, error) {
	var loans []models.Loan
	url := fmt.Sprintf("%s/api/v1/users/%s/loans", g.baseURL, g.userID)
	if err := g.getJSON(ctx, url, &loans); err != nil {
		return nil, err
	}
	return loan.Normalize(loans), nil
}

// FetchLibrary loads the user's library entries, used to populate the
// "select a book to lend" list.
func (g *Gateway) FetchLibrary(ctx context.Context) ([]models.LibraryEntry, error) {
	var entries []models.LibraryEntry
	url := fmt.Sprintf("%s/api/v1/users/%s/library", g.baseURL, g.userID)
	if err := g.getJSON(ctx, url, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateLoan validates required fields locally, then posts the new loan.
// An empty borrower name is rejected before any request is sent.
func (g *Gateway) CreateLoan(ctx context.Context, req models.CreateLoanRequest) (*models.Loan, error) {
	if strings.TrimSpace(req.BorrowerName) == "" {
		return nil, fmt.Errorf("%w: borrower name is required", ErrValidation)
	}
	if req.BookID == 0 {
		return nil, fmt.Errorf("%w: select a book to lend", ErrValidation)
	}
	if req.DueDate != "" {
		if _, err := time.Parse("2006-01-02", req.DueDate); err != nil {
			return nil, fmt.Errorf("%w: due date must be YYYY-MM-DD", ErrValidation)
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v1/users/%s/loans", g.baseURL, g.userID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	g.authorize(httpReq)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, readAPIError(resp)
	}

	var created models.Loan
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode created loan: %w", err)
	}
	return &created, nil
}

// ReturnLoan marks a loan returned. On failure the caller keeps its current
// list; the loan stays ACTIVE until a later reload proves otherwise.
func (g *Gateway) ReturnLoan(ctx context.Context, loanID int64) (*models.Loan, error) {
	url := fmt.Sprintf("%s/api/v1/users/%s/loans/%d/return", g.baseURL, g.userID, loanID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, nil)
	if err != nil {
		return nil, err
	}
	g.authorize(httpReq)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}

	var returned models.Loan
	if err := json.NewDecoder(resp.Body).Decode(&returned); err != nil {
		return nil, fmt.Errorf("failed to decode returned loan: %w", err)
	}
	return &returned, nil
}

func (g *Gateway) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cache-Control", "no-cache")
	g.authorize(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (g *Gateway) authorize(req *http.Request) {
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var errResp map[string]string
	json.Unmarshal(body, &errResp)
	return &APIError{StatusCode: resp.StatusCode, Message: errResp["error"]}
}
