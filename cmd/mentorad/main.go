package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mentora-ai/mentora/internal/cli"
	"github.com/mentora-ai/mentora/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mentorad",
		Short: "Mentora daemon and CLI",
		Long:  "Mentora daemon for running the API server and managing experts and API keys",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ExpertCmd())
	rootCmd.AddCommand(admin.APIKeyCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
