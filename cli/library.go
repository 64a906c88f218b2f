package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/librishare/librishare/internal/loan/gateway"
	"github.com/spf13/cobra"
)

var (
	libraryStatus string
	librarySearch string
	addBookID     int64
	addStatus     string
	progressPage  int
	ratingStars   int
	ratingReview  string
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Library management commands",
	Long:  `Browse and update your personal bookshelf.`,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your library",
	Long:  `List your library entries, optionally filtered by reading status or free text.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, userID, token, err := requireSession()
		if err != nil {
			return err
		}

		gw := gateway.New(serverURL, userID, token)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		entries, err := gw.FetchLibrary(ctx)
		if err != nil {
			printError(fmt.Sprintf("Failed to load library: %v", err))
			return err
		}

		query := strings.ToLower(librarySearch)
		shown := 0
		for _, e := range entries {
			if libraryStatus != "" && !strings.EqualFold(e.Status, libraryStatus) {
				continue
			}
			if query != "" &&
				!strings.Contains(strings.ToLower(e.Title), query) &&
				!strings.Contains(strings.ToLower(e.Author), query) {
				continue
			}
			shown++

			fmt.Printf("#%d  %s — %s\n", e.ID, e.Title, e.Author)
			fmt.Printf("     Book ID: %d  Status: %s", e.BookID, e.Status)
			if e.Rating != nil {
				fmt.Printf("  Rating: %s", strings.Repeat("★", *e.Rating))
			}
			fmt.Println()
			if e.TotalPages > 0 && e.CurrentPage > 0 {
				fmt.Printf("     Progress: %d/%d pages\n", e.CurrentPage, e.TotalPages)
			}
			fmt.Println()
		}

		if shown == 0 {
			fmt.Println("No books found. Add one with: librishare books search \"title\"")
			return nil
		}
		fmt.Printf("%d book(s) shown\n", shown)
		return nil
	},
}

var libraryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a catalog book to your library",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addBookID == 0 {
			return fmt.Errorf("book id is required (--book-id)")
		}

		serverURL, userID, token, err := requireSession()
		if err != nil {
			return err
		}

		reqBody := map[string]interface{}{"bookId": addBookID}
		if addStatus != "" {
			reqBody["status"] = strings.ToUpper(addStatus)
		}
		url := fmt.Sprintf("%s/api/v1/users/%s/library", serverURL, userID)

		status, body, err := doJSON(http.MethodPost, url, token, reqBody)
		if err != nil {
			printError("Failed to add book: Server connection error")
			return err
		}
		if status == http.StatusConflict {
			printError("You already have this book in your library")
			return fmt.Errorf("duplicate entry")
		}
		if status != http.StatusCreated {
			printError(fmt.Sprintf("Failed to add book: %s", errorMessage(body)))
			return fmt.Errorf("add failed")
		}

		printSuccess("Book added to your library!")
		return nil
	},
}

var libraryStatusCmd = &cobra.Command{
	Use:   "status <entry-id> <status>",
	Short: "Change an entry's reading status",
	Long:  `Change reading status. Statuses: WANT_TO_READ, TO_READ, READING, READ.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, userID, token, err := requireSession()
		if err != nil {
			return err
		}

		url := fmt.Sprintf("%s/api/v1/users/%s/library/%s/status", serverURL, userID, args[0])
		status, body, err := doJSON(http.MethodPatch, url, token, map[string]string{"status": strings.ToUpper(args[1])})
		if err != nil {
			printError("Failed to update status: Server connection error")
			return err
		}
		if status != http.StatusOK {
			printError(fmt.Sprintf("Failed to update status: %s", errorMessage(body)))
			return fmt.Errorf("status update failed")
		}

		printSuccess(fmt.Sprintf("Status changed to %s", strings.ToUpper(args[1])))
		return nil
	},
}

var libraryProgressCmd = &cobra.Command{
	Use:   "progress <entry-id>",
	Short: "Update reading progress",
	Long:  `Record the page you are on. Reaching the last page marks the book READ.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, userID, token, err := requireSession()
		if err != nil {
			return err
		}

		url := fmt.Sprintf("%s/api/v1/users/%s/library/%s/progress", serverURL, userID, args[0])
		status, body, err := doJSON(http.MethodPatch, url, token, map[string]int{"currentPage": progressPage})
		if err != nil {
			printError("Failed to update progress: Server connection error")
			return err
		}
		if status != http.StatusOK {
			printError(fmt.Sprintf("Failed to update progress: %s", errorMessage(body)))
			return fmt.Errorf("progress update failed")
		}

		var resp struct {
			Status      string `json:"status"`
			CurrentPage int    `json:"currentPage"`
		}
		json.Unmarshal(body, &resp)
		printSuccess(fmt.Sprintf("Progress saved: page %d (%s)", resp.CurrentPage, resp.Status))
		return nil
	},
}

var libraryRateCmd = &cobra.Command{
	Use:   "rate <entry-id>",
	Short: "Rate and review a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ratingStars < 1 || ratingStars > 5 {
			return fmt.Errorf("rating must be between 1 and 5 (--stars)")
		}

		serverURL, userID, token, err := requireSession()
		if err != nil {
			return err
		}

		url := fmt.Sprintf("%s/api/v1/users/%s/library/%s/rating", serverURL, userID, args[0])
		reqBody := map[string]interface{}{"rating": ratingStars, "review": ratingReview}
		status, body, err := doJSON(http.MethodPatch, url, token, reqBody)
		if err != nil {
			printError("Failed to save rating: Server connection error")
			return err
		}
		if status != http.StatusOK {
			printError(fmt.Sprintf("Failed to save rating: %s", errorMessage(body)))
			return fmt.Errorf("rating failed")
		}

		printSuccess(fmt.Sprintf("Rated %s", strings.Repeat("★", ratingStars)))
		return nil
	},
}

var libraryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library summary counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, userID, token, err := requireSession()
		if err != nil {
			return err
		}

		url := fmt.Sprintf("%s/api/v1/users/%s/library/stats", serverURL, userID)
		status, body, err := doJSON(http.MethodGet, url, token, nil)
		if err != nil {
			printError("Failed to load stats: Server connection error")
			return err
		}
		if status != http.StatusOK {
			printError(fmt.Sprintf("Failed to load stats: %s", errorMessage(body)))
			return fmt.Errorf("stats failed")
		}

		var stats struct {
			TotalBooks   int `json:"totalBooks"`
			BooksRead    int `json:"booksRead"`
			BooksReading int `json:"booksReading"`
			BooksToRead  int `json:"booksToRead"`
		}
		json.Unmarshal(body, &stats)

		fmt.Println("Your library:")
		fmt.Printf("  Total books: %d\n", stats.TotalBooks)
		fmt.Printf("  Read: %d\n", stats.BooksRead)
		fmt.Printf("  Reading now: %d\n", stats.BooksReading)
		fmt.Printf("  Want to read: %d\n", stats.BooksToRead)
		return nil
	},
}

// doJSON issues an authenticated JSON request and returns status and body.
func doJSON(method, url, token string, payload interface{}) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body, nil
}

func errorMessage(body []byte) string {
	var errResp map[string]string
	json.Unmarshal(body, &errResp)
	if errResp["error"] != "" {
		return errResp["error"]
	}
	return "unexpected server error"
}

func init() {
	libraryListCmd.Flags().StringVar(&libraryStatus, "status", "", "Filter by reading status")
	libraryListCmd.Flags().StringVarP(&librarySearch, "search", "s", "", "Filter by title or author")
	libraryAddCmd.Flags().Int64Var(&addBookID, "book-id", 0, "Catalog ID of the book (required)")
	libraryAddCmd.Flags().StringVar(&addStatus, "status", "", "Initial status (default TO_READ)")
	libraryProgressCmd.Flags().IntVarP(&progressPage, "page", "p", 0, "Current page")
	libraryRateCmd.Flags().IntVar(&ratingStars, "stars", 0, "Rating from 1 to 5 (required)")
	libraryRateCmd.Flags().StringVar(&ratingReview, "review", "", "Review text")

	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryAddCmd)
	libraryCmd.AddCommand(libraryStatusCmd)
	libraryCmd.AddCommand(libraryProgressCmd)
	libraryCmd.AddCommand(libraryRateCmd)
	libraryCmd.AddCommand(libraryStatsCmd)
}
