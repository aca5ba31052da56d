package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dj2695/cuco/internal/errs"
	"github.com/dj2695/cuco/internal/ui"
)

var (
	// Version is set at build time
	Version = "dev"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cuco",
	Short: "Customization manager for AI coding assistants",
	Long: `cuco manages customization artifacts for AI coding assistants:
agents, prompts, instructions, skills, MCP server configs, and bundles.

Artifacts come from a bundled registry, configured git sources, or direct
GitHub URLs, and are tracked by content hash so 'cuco sync' can tell local
edits apart from upstream updates.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(bundleCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cuco %s\n", Version)
	},
}

// exitWithError prints an error and exits
func exitWithError(msg string) {
	fmt.Fprintln(os.Stderr, ui.Render(ui.Error, "Error: "+msg))
	os.Exit(1)
}

// exitWithErr prints an error, adding a follow-up hint for the well-known
// failure classes, then exits.
func exitWithErr(err error) {
	fmt.Fprintln(os.Stderr, ui.Render(ui.Error, "Error: "+err.Error()))
	switch {
	case errors.Is(err, errs.ErrSourceUnavailable):
		fmt.Fprintln(os.Stderr, ui.Render(ui.Muted, "Check your network connection and credentials, then retry."))
	case errors.Is(err, errs.ErrConflict):
		fmt.Fprintln(os.Stderr, ui.Render(ui.Muted, "Re-run with --force to overwrite local changes."))
	}
	os.Exit(1)
}
