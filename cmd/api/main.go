package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/retailops/loadboard/cmd/api/commands"
)

// @title loadboard API
// @version 1.0
// @description Retail data-load task tracking

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a token from 'loadboard token issue'.

func main() {
	rootCmd := &cobra.Command{
		Use:   "loadboard",
		Short: "Retail data-load task board",
		Long:  `loadboard tracks recurring retail data-load jobs: the task API server, its schema migrations, and a terminal dashboard that talks to the API.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewTokenCommand())
	rootCmd.AddCommand(commands.NewDashboardCommand())
	rootCmd.AddCommand(commands.NewTaskCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
