package cli

import (
	"fmt"
	"strconv"

	"github.com/librishare/librishare/cli/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize LibriShare configuration",
	Long:  `Create the ~/.librishare config directory with default settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(); err != nil {
			printError(fmt.Sprintf("Initialization failed: %v", err))
			return err
		}

		configPath, _ := config.GetConfigPath()
		printSuccess("Configuration initialized!")
		fmt.Printf("Config file: %s\n", configPath)
		fmt.Println("\nNext steps:")
		fmt.Println("  librishare auth register --username <name> --email <email>")
		fmt.Println("  librishare books search \"title\"")
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
	Long:  `View and modify LibriShare CLI configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			printError("Configuration not initialized")
			fmt.Println("Run: librishare init")
			return err
		}

		fmt.Println("Configuration:")
		fmt.Println("--------------")
		fmt.Printf("Server Host: %s\n", cfg.Server.Host)
		fmt.Printf("HTTP Port: %d\n", cfg.Server.HTTPPort)
		fmt.Printf("Log Level: %s\n", cfg.Logging.Level)
		if cfg.User.Username != "" {
			fmt.Printf("Logged in as: %s (%s)\n", cfg.User.Username, cfg.User.UserID)
		} else {
			fmt.Println("Logged in as: (not logged in)")
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  `Set a configuration value. Keys: server.host, server.http_port, logging.level`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			printError("Configuration not initialized")
			fmt.Println("Run: librishare init")
			return err
		}

		key, value := args[0], args[1]
		switch key {
		case "server.host":
			cfg.Server.Host = value
		case "server.http_port":
			port, err := strconv.Atoi(value)
			if err != nil {
				printError("Port must be a number")
				return err
			}
			cfg.Server.HTTPPort = port
		case "logging.level":
			cfg.Logging.Level = value
		default:
			printError(fmt.Sprintf("Unknown config key: %s", key))
			return fmt.Errorf("unknown config key")
		}

		if err := config.Save(cfg); err != nil {
			printError(fmt.Sprintf("Failed to save config: %v", err))
			return err
		}
		printSuccess(fmt.Sprintf("Set %s = %s", key, value))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
