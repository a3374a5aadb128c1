// Package main provides the entry point for the profilescan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for profilescan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profilescan",
		Short: "Extract people profiles from a website",
		Long: `Profilescan crawls a website breadth-first, extracts visible text from
each page, and asks a chat-completion model to identify people profiles
(name plus description). The accumulated directory is saved as JSON and
printed when the crawl completes.

The extraction API key is read from the OPENAI_API_KEY environment variable.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
