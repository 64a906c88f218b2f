package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "librishare",
	Short:   "LibriShare personal library manager",
	Long:    `Catalog your books, track reading progress, and manage loans to friends from the terminal.`,
	Version: "1.0.0",
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(booksCmd)
	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(loansCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(systemCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
}

func printSuccess(msg string) {
	fmt.Printf("✓ %s\n", msg)
}

func printError(msg string) {
	fmt.Printf("✗ %s\n", msg)
}

func printInfo(msg string) {
	fmt.Printf("• %s\n", msg)
}
