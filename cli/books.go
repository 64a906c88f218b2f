package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/librishare/librishare/cli/config"
	"github.com/librishare/librishare/pkg/models"
	"github.com/spf13/cobra"
)

var (
	searchAuthor string
	searchLimit  int
	newTitle     string
	newAuthor    string
	newISBN      string
	newPages     int
	newYear      int
	newCoverURL  string
	newSynopsis  string
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Book catalog commands",
	Long:  `Search the shared book catalog and contribute new titles.`,
}

var booksSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog",
	Long:  `Search books by title, author, or ISBN.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, err := config.GetServerURL()
		if err != nil {
			printError("Configuration not initialized")
			fmt.Println("Run: librishare init")
			return err
		}

		params := url.Values{}
		if len(args) > 0 {
			params.Set("q", args[0])
		}
		if searchAuthor != "" {
			params.Set("author", searchAuthor)
		}
		if searchLimit > 0 {
			params.Set("limit", strconv.Itoa(searchLimit))
		}

		status, body, err := doJSON(http.MethodGet, serverURL+"/api/v1/books?"+params.Encode(), "", nil)
		if err != nil {
			printError("Search failed: Server connection error")
			fmt.Println("Check server status: librishare system info")
			return err
		}
		if status != http.StatusOK {
			printError(fmt.Sprintf("Search failed: %s", errorMessage(body)))
			return fmt.Errorf("search failed")
		}

		var result struct {
			Books []models.Book `json:"books"`
			Total int           `json:"total"`
		}
		json.Unmarshal(body, &result)

		if len(result.Books) == 0 {
			fmt.Println("No books found.")
			fmt.Println("Add one with: librishare books add --title \"...\" --author \"...\"")
			return nil
		}

		for _, b := range result.Books {
			fmt.Printf("#%d  %s — %s\n", b.ID, b.Title, b.Author)
			if b.PublicationYear != 0 {
				fmt.Printf("     Published: %d", b.PublicationYear)
				if b.Publisher != "" {
					fmt.Printf(" (%s)", b.Publisher)
				}
				fmt.Println()
			}
			if b.ISBN != "" {
				fmt.Printf("     ISBN: %s\n", b.ISBN)
			}
			if b.Pages > 0 {
				fmt.Printf("     Pages: %d\n", b.Pages)
			}
			fmt.Println()
		}
		fmt.Printf("%d book(s) found\n", result.Total)
		return nil
	},
}

var booksGetCmd = &cobra.Command{
	Use:   "get <book-id>",
	Short: "Show catalog details for one book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, err := config.GetServerURL()
		if err != nil {
			printError("Configuration not initialized")
			fmt.Println("Run: librishare init")
			return err
		}

		status, body, err := doJSON(http.MethodGet, serverURL+"/api/v1/books/"+args[0], "", nil)
		if err != nil {
			printError("Lookup failed: Server connection error")
			return err
		}
		if status == http.StatusNotFound {
			printError("Book not found")
			return fmt.Errorf("book not found")
		}
		if status != http.StatusOK {
			printError(fmt.Sprintf("Lookup failed: %s", errorMessage(body)))
			return fmt.Errorf("lookup failed")
		}

		var b models.Book
		json.Unmarshal(body, &b)

		fmt.Printf("%s\n", b.Title)
		fmt.Printf("Author: %s\n", b.Author)
		if b.Publisher != "" {
			fmt.Printf("Publisher: %s\n", b.Publisher)
		}
		if b.PublicationYear != 0 {
			fmt.Printf("Published: %d\n", b.PublicationYear)
		}
		if b.ISBN != "" {
			fmt.Printf("ISBN: %s\n", b.ISBN)
		}
		if b.Pages > 0 {
			fmt.Printf("Pages: %d\n", b.Pages)
		}
		if b.Synopsis != "" {
			fmt.Printf("\n%s\n", b.Synopsis)
		}
		fmt.Printf("\nAdd to your shelf: librishare library add --book-id %d\n", b.ID)
		return nil
	},
}

var booksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a book to the shared catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		if newTitle == "" {
			return fmt.Errorf("title is required (--title)")
		}
		if newAuthor == "" {
			return fmt.Errorf("author is required (--author)")
		}

		serverURL, _, token, err := requireSession()
		if err != nil {
			return err
		}

		reqBody := models.CreateBookRequest{
			Title:           newTitle,
			Author:          newAuthor,
			ISBN:            newISBN,
			Pages:           newPages,
			PublicationYear: newYear,
			CoverImageURL:   newCoverURL,
			Synopsis:        newSynopsis,
		}
		status, body, err := doJSON(http.MethodPost, serverURL+"/api/v1/books", token, reqBody)
		if err != nil {
			printError("Failed to add book: Server connection error")
			return err
		}
		if status != http.StatusCreated {
			printError(fmt.Sprintf("Failed to add book: %s", errorMessage(body)))
			return fmt.Errorf("add failed")
		}

		var b models.Book
		json.Unmarshal(body, &b)

		printSuccess("Book added to the catalog!")
		fmt.Printf("Book ID: %d\n", b.ID)
		fmt.Printf("Add it to your shelf: librishare library add --book-id %d\n", b.ID)
		return nil
	},
}

func init() {
	booksSearchCmd.Flags().StringVarP(&searchAuthor, "author", "a", "", "Filter by author")
	booksSearchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "Maximum results")

	booksAddCmd.Flags().StringVar(&newTitle, "title", "", "Book title (required)")
	booksAddCmd.Flags().StringVar(&newAuthor, "author", "", "Author name (required)")
	booksAddCmd.Flags().StringVar(&newISBN, "isbn", "", "ISBN")
	booksAddCmd.Flags().IntVar(&newPages, "pages", 0, "Page count")
	booksAddCmd.Flags().IntVar(&newYear, "year", 0, "Publication year")
	booksAddCmd.Flags().StringVar(&newCoverURL, "cover-url", "", "Cover image URL")
	booksAddCmd.Flags().StringVar(&newSynopsis, "synopsis", "", "Synopsis text")

	booksCmd.AddCommand(booksSearchCmd)
	booksCmd.AddCommand(booksGetCmd)
	booksCmd.AddCommand(booksAddCmd)
}
