package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khushik17/notesweb/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "notesweb-configure",
		Short: "Configuration tool for the Notes API",
		Long:  "CLI tool for configuring identity providers, CORS, rate limits and SMTP",
	}

	rootCmd.AddCommand(commands.NewOIDCCmd())
	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
