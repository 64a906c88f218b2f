package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/librishare/librishare/cli/config"
	"github.com/spf13/cobra"
)

var feedLimit int

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Community activity feed",
	Long:  `See what other readers are adding, rating, and lending.`,
}

type feedActivity struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Type      string    `json:"type"`
	BookTitle string    `json:"bookTitle"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"createdAt"`
}

var feedRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, err := config.GetServerURL()
		if err != nil {
			printError("Configuration not initialized")
			fmt.Println("Run: librishare init")
			return err
		}

		url := serverURL + "/api/v1/feed?limit=" + strconv.Itoa(feedLimit)
		status, body, err := doJSON(http.MethodGet, url, "", nil)
		if err != nil {
			printError("Failed to load feed: Server connection error")
			return err
		}
		if status != http.StatusOK {
			printError(fmt.Sprintf("Failed to load feed: %s", errorMessage(body)))
			return fmt.Errorf("feed failed")
		}

		var result struct {
			Activities []feedActivity `json:"activities"`
		}
		json.Unmarshal(body, &result)

		if len(result.Activities) == 0 {
			fmt.Println("No activity yet.")
			return nil
		}
		for _, act := range result.Activities {
			printActivity(act)
		}
		return nil
	},
}

var feedFollowCmd = &cobra.Command{
	Use:   "follow",
	Short: "Stream activity live",
	Long:  `Connect to the activity stream and print events as they happen. Ctrl+C to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wsURL, err := config.GetWebSocketURL()
		if err != nil {
			printError("Configuration not initialized")
			fmt.Println("Run: librishare init")
			return err
		}

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			printError(fmt.Sprintf("Failed to connect: %v", err))
			fmt.Println("Check server status: librishare system info")
			return err
		}
		defer conn.Close()

		printInfo("Connected. Waiting for activity... (Ctrl+C to stop)")

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)

		events := make(chan feedActivity)
		readErr := make(chan error, 1)
		go func() {
			for {
				var act feedActivity
				if err := conn.ReadJSON(&act); err != nil {
					readErr <- err
					return
				}
				events <- act
			}
		}()

		for {
			select {
			case act := <-events:
				printActivity(act)
			case err := <-readErr:
				printError(fmt.Sprintf("Connection lost: %v", err))
				return err
			case <-interrupt:
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				fmt.Println("\nDisconnected.")
				return nil
			}
		}
	},
}

func printActivity(act feedActivity) {
	when := act.CreatedAt.Local().Format("Jan 2 15:04")
	switch act.Type {
	case "BOOK_ADDED":
		fmt.Printf("[%s] %s added %q to their library\n", when, act.Username, act.BookTitle)
	case "STATUS_CHANGED":
		fmt.Printf("[%s] %s is now %s %q\n", when, act.Username, statusVerb(act.Detail), act.BookTitle)
	case "BOOK_RATED":
		fmt.Printf("[%s] %s rated %q: %s\n", when, act.Username, act.BookTitle, act.Detail)
	case "LOAN_CREATED":
		fmt.Printf("[%s] %s lent out %q\n", when, act.Username, act.BookTitle)
	case "LOAN_RETURNED":
		fmt.Printf("[%s] %s got %q back\n", when, act.Username, act.BookTitle)
	default:
		fmt.Printf("[%s] %s: %s %s\n", when, act.Username, act.Type, act.BookTitle)
	}
}

func statusVerb(status string) string {
	switch status {
	case "READING":
		return "reading"
	case "READ":
		return "done with"
	case "TO_READ", "WANT_TO_READ":
		return "planning to read"
	}
	return status
}

func init() {
	feedRecentCmd.Flags().IntVarP(&feedLimit, "limit", "l", 20, "Number of events to show")

	feedCmd.AddCommand(feedRecentCmd)
	feedCmd.AddCommand(feedFollowCmd)
}
