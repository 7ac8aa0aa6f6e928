/*
Package main is the entry point of the browser-search CLI.

browser-search ranks open tabs, bookmarks and recent history for a query the
way a browser's quick switcher does.

Usage:

	browser-search [command]

Available Commands:

	serve       Run the HTTP search service
	search      Search once and print the ranked results as JSON
	options     Print the effective options
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "browser-search",
		Short: "Rank tabs, bookmarks and history for a search query",
		Long: `browser-search reads open tabs, the bookmark tree and recent history,
normalizes them into one snapshot and ranks them for free-text queries.

Prefix a term with # to match tags only, or with ~ to match bookmark folders only.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newOptionsCmd())
	return rootCmd
}
