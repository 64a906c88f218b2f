package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/librishare/librishare/internal/loan"
	"github.com/librishare/librishare/internal/loan/gateway"
	"github.com/librishare/librishare/pkg/date"
	"github.com/librishare/librishare/pkg/models"
	"github.com/spf13/cobra"
)

var (
	loansTab      string
	loansSearch   string
	loanBookID    int64
	borrowerName  string
	borrowerEmail string
	loanDueDate   string
	loanNotes     string
)

var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "Loan management commands",
	Long:  `Track books lent to friends: list, create, and return loans.`,
}

var loansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your loans",
	Long:  `List loans with summary counts. Filter with --tab (active|overdue|returned|all) and --search.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, userID, token, err := requireSession()
		if err != nil {
			return err
		}

		gw := gateway.New(serverURL, userID, token)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		loans, err := gw.FetchLoans(ctx)
		if err != nil {
			printError(fmt.Sprintf("Failed to load loans: %v", err))
			return err
		}

		// One "today" for both counts and list so a day boundary crossed
		// mid-command cannot make them disagree
		today := date.Today()
		summary := loan.Tally(loans, today)
		tab := loan.ParseTab(loansTab)
		filtered := loan.Filter(loans, loansSearch, tab, today)

		fmt.Printf("Active: %d  |  Overdue: %d  |  Returned: %d  |  Total: %d\n",
			summary.Active, summary.Overdue, summary.Returned, summary.Total)
		fmt.Println()

		if len(filtered) == 0 {
			fmt.Printf("No loans found for tab %q", tab)
			if loansSearch != "" {
				fmt.Printf(" matching %q", loansSearch)
			}
			fmt.Println()
			return nil
		}

		for _, l := range filtered {
			class := loan.Classify(l, today)
			marker := " "
			if class == loan.ClassOverdue {
				marker = "!"
			}
			fmt.Printf("%s #%d  %s — lent to %s\n", marker, l.ID, l.BookTitle, l.BorrowerName)
			if l.BookAuthor != "" {
				fmt.Printf("     Author: %s\n", l.BookAuthor)
			}
			fmt.Printf("     Loaned: %s  Due: %s  Status: %s\n", l.LoanDate, l.DueDate, class)
			if l.ReturnDate != nil {
				fmt.Printf("     Returned: %s\n", *l.ReturnDate)
			}
			if l.Notes != "" {
				fmt.Printf("     Notes: %s\n", l.Notes)
			}
			fmt.Println()
		}

		if tab == loan.TabActive || tab == loan.TabAll {
			fmt.Println("To mark a loan returned:")
			fmt.Println("  librishare loans return <loan-id>")
		}
		return nil
	},
}

var loansNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Register a new loan",
	Long:  `Lend a book from your library to someone. Requires --book-id and --borrower.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, userID, token, err := requireSession()
		if err != nil {
			return err
		}

		gw := gateway.New(serverURL, userID, token)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		created, err := gw.CreateLoan(ctx, models.CreateLoanRequest{
			BookID:        loanBookID,
			BorrowerName:  borrowerName,
			BorrowerEmail: borrowerEmail,
			DueDate:       loanDueDate,
			Notes:         loanNotes,
		})
		if err != nil {
			if errors.Is(err, gateway.ErrValidation) {
				printError(fmt.Sprintf("Cannot create loan: %v", err))
				fmt.Println("Pick a book with: librishare library list")
			} else {
				printError(fmt.Sprintf("Failed to create loan: %v", err))
			}
			return err
		}

		printSuccess("Loan registered!")
		fmt.Printf("Loan ID: %d\n", created.ID)
		fmt.Printf("Book: %s\n", created.BookTitle)
		fmt.Printf("Borrower: %s\n", created.BorrowerName)
		fmt.Printf("Due: %s\n", created.DueDate)
		return nil
	},
}

var loansReturnCmd = &cobra.Command{
	Use:   "return <loan-id>",
	Short: "Mark a loan as returned",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loanID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			printError("Loan ID must be a number")
			return err
		}

		serverURL, userID, token, err := requireSession()
		if err != nil {
			return err
		}

		gw := gateway.New(serverURL, userID, token)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		returned, err := gw.ReturnLoan(ctx, loanID)
		if err != nil {
			printError(fmt.Sprintf("Failed to return loan: %v", err))
			fmt.Println("The loan is unchanged; retry when the server is reachable.")
			return err
		}

		printSuccess("Book returned!")
		fmt.Printf("Book: %s\n", returned.BookTitle)
		if returned.ReturnDate != nil {
			fmt.Printf("Returned on: %s\n", *returned.ReturnDate)
		}
		return nil
	},
}

func init() {
	loansListCmd.Flags().StringVarP(&loansTab, "tab", "t", "all", "Tab: active, overdue, returned, all")
	loansListCmd.Flags().StringVarP(&loansSearch, "search", "s", "", "Filter by borrower name or book title")

	loansNewCmd.Flags().Int64Var(&loanBookID, "book-id", 0, "Catalog ID of the book to lend (required)")
	loansNewCmd.Flags().StringVarP(&borrowerName, "borrower", "b", "", "Borrower's name (required)")
	loansNewCmd.Flags().StringVar(&borrowerEmail, "email", "", "Borrower's email")
	loansNewCmd.Flags().StringVar(&loanDueDate, "due", "", "Due date (YYYY-MM-DD, default two weeks out)")
	loansNewCmd.Flags().StringVar(&loanNotes, "notes", "", "Free-text notes")

	loansCmd.AddCommand(loansListCmd)
	loansCmd.AddCommand(loansNewCmd)
	loansCmd.AddCommand(loansReturnCmd)
}
