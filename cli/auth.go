package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/librishare/librishare/cli/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	username string
	email    string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Register, login, and logout commands for LibriShare authentication.`,
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	Long:  `Register a new LibriShare account with username and email.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if username == "" {
			return fmt.Errorf("username is required (--username)")
		}
		if email == "" {
			return fmt.Errorf("email is required (--email)")
		}

		fmt.Print("Password: ")
		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password := string(passwordBytes)

		fmt.Print("Confirm password: ")
		confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password confirmation: %w", err)
		}
		confirmPassword := string(confirmBytes)

		if password != confirmPassword {
			printError("Passwords do not match")
			return fmt.Errorf("passwords do not match")
		}

		serverURL, err := config.GetServerURL()
		if err != nil {
			printError("Configuration not initialized")
			fmt.Println("Run: librishare init")
			return err
		}

		reqBody := map[string]string{
			"username": username,
			"email":    email,
			"password": password,
		}
		jsonData, _ := json.Marshal(reqBody)

		res, err := http.Post(serverURL+"/api/v1/users", "application/json", bytes.NewBuffer(jsonData))
		if err != nil {
			printError("Registration failed: Server connection error")
			fmt.Println("Check server status: librishare system info")
			return err
		}
		defer res.Body.Close()

		body, _ := io.ReadAll(res.Body)

		if res.StatusCode != http.StatusCreated {
			var errRes map[string]string
			json.Unmarshal(body, &errRes)

			if strings.Contains(errRes["error"], "already exists") {
				printError(fmt.Sprintf("Registration failed: %s", errRes["error"]))
				fmt.Printf("Try: librishare auth login --username %s\n", username)
			} else if strings.Contains(errRes["error"], "Invalid email") {
				printError("Registration failed: Invalid email format")
				fmt.Println("Please provide a valid email address")
			} else if strings.Contains(errRes["error"], "weak") {
				printError("Registration failed: Password too weak")
				fmt.Println("Password must be at least 8 characters with mixed case and numbers")
			} else {
				printError(fmt.Sprintf("Registration failed: %s", errRes["error"]))
			}
			return fmt.Errorf("registration failed")
		}

		var authRes struct {
			Token     string    `json:"token"`
			UserID    string    `json:"userId"`
			Username  string    `json:"username"`
			Email     string    `json:"email"`
			CreatedAt time.Time `json:"createdAt"`
		}
		json.Unmarshal(body, &authRes)

		if err := config.UpdateUser(authRes.UserID, authRes.Username, authRes.Token); err != nil {
			fmt.Println("Warning: Failed to save session to config")
		}

		printSuccess("Account created successfully!")
		fmt.Printf("User ID: %s\n", authRes.UserID)
		fmt.Printf("Username: %s\n", authRes.Username)
		fmt.Printf("Email: %s\n", authRes.Email)
		fmt.Println("\nYou are now logged in!")
		fmt.Println("Try: librishare books search \"your favorite book\"")

		return nil
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to your account",
	Long:  `Login to your LibriShare account with username or email.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if username == "" && email == "" {
			return fmt.Errorf("username or email is required (--username or --email)")
		}

		fmt.Print("Password: ")
		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password := string(passwordBytes)

		serverURL, err := config.GetServerURL()
		if err != nil {
			printError("Configuration not initialized")
			fmt.Println("Run: librishare init")
			return err
		}

		reqBody := map[string]string{
			"password": password,
		}
		if username != "" {
			reqBody["username"] = username
		}
		if email != "" {
			reqBody["email"] = email
		}
		jsonData, _ := json.Marshal(reqBody)

		resp, err := http.Post(serverURL+"/api/v1/users/login", "application/json", bytes.NewBuffer(jsonData))
		if err != nil {
			printError("Login failed: Server connection error")
			fmt.Println("Check server status: librishare system info")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusOK {
			var errResp map[string]string
			json.Unmarshal(body, &errResp)

			if strings.Contains(errResp["error"], "Invalid credentials") {
				printError("Login failed: Invalid credentials")
				fmt.Println("Check your username and password")
			} else if strings.Contains(errResp["error"], "not found") {
				printError("Login failed: Account not found")
				fmt.Printf("Try: librishare auth register --username %s --email %s\n", username, email)
			} else {
				printError(fmt.Sprintf("Login failed: %s", errResp["error"]))
			}
			return fmt.Errorf("login failed")
		}

		var authResp struct {
			Token    string `json:"token"`
			UserID   string `json:"userId"`
			Username string `json:"username"`
		}
		json.Unmarshal(body, &authResp)

		if err := config.UpdateUser(authResp.UserID, authResp.Username, authResp.Token); err != nil {
			fmt.Println("Warning: Failed to save session to config")
		}

		printSuccess(fmt.Sprintf("Logged in as %s", authResp.Username))
		return nil
	},
}

var authChangePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change your password",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, userID, token, err := requireSession()
		if err != nil {
			return err
		}

		fmt.Print("Current password: ")
		currentBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		fmt.Print("New password: ")
		newBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		fmt.Print("Confirm new password: ")
		confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password confirmation: %w", err)
		}
		if string(newBytes) != string(confirmBytes) {
			printError("Passwords do not match")
			return fmt.Errorf("passwords do not match")
		}

		reqBody := map[string]string{
			"currentPassword": string(currentBytes),
			"newPassword":     string(newBytes),
		}
		jsonData, _ := json.Marshal(reqBody)

		req, err := http.NewRequest(http.MethodPatch, serverURL+"/api/v1/users/"+userID+"/password", bytes.NewBuffer(jsonData))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		client := http.Client{Timeout: 10 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			printError("Password change failed: Server connection error")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			var errResp map[string]string
			json.Unmarshal(body, &errResp)
			if strings.Contains(errResp["error"], "Invalid credentials") {
				printError("Password change failed: Current password is wrong")
			} else if strings.Contains(errResp["error"], "weak") {
				printError("Password change failed: New password too weak")
				fmt.Println("Password must be at least 8 characters with mixed case and numbers")
			} else {
				printError(fmt.Sprintf("Password change failed: %s", errResp["error"]))
			}
			return fmt.Errorf("password change failed")
		}

		printSuccess("Password updated")
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ClearUser(); err != nil {
			printError("Failed to clear session")
			return err
		}
		printSuccess("Logged out")
		return nil
	},
}

// requireSession loads the stored session or fails with a hint.
func requireSession() (serverURL, userID, token string, err error) {
	cfg, err := config.Load()
	if err != nil {
		printError("Configuration not initialized")
		fmt.Println("Run: librishare init")
		return "", "", "", err
	}
	if cfg.User.UserID == "" || cfg.User.Token == "" {
		printError("Not logged in")
		fmt.Println("Run: librishare auth login --username <name>")
		return "", "", "", fmt.Errorf("not logged in")
	}
	serverURL, err = config.GetServerURL()
	if err != nil {
		return "", "", "", err
	}
	return serverURL, cfg.User.UserID, cfg.User.Token, nil
}

func init() {
	authRegisterCmd.Flags().StringVarP(&username, "username", "u", "", "Username for the account")
	authRegisterCmd.Flags().StringVarP(&email, "email", "e", "", "Email for the account")
	authLoginCmd.Flags().StringVarP(&username, "username", "u", "", "Username for the account")
	authLoginCmd.Flags().StringVarP(&email, "email", "e", "", "Email for the account")

	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authChangePasswordCmd)
	authCmd.AddCommand(authLogoutCmd)
}
