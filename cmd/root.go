package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "subtrack",
	Short: "Subscription tracking client",
	Long:  "Command line client for the subscription tracking backend: browse the catalog, manage your subscriptions and inspect spending stats.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
