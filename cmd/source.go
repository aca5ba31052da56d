package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dj2695/cuco/internal/config"
	"github.com/dj2695/cuco/internal/source"
	"github.com/dj2695/cuco/internal/ui"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage custom artifact sources",
	Long: `Manage the custom sources artifacts can be resolved from.

A source is either a git repository (cloned into the local cache and pulled
on use) or a local directory. Sources are searched when an artifact is not
in the bundled registry.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	Args:  cobra.NoArgs,
	Run:   runSourceList,
}

var sourceAddCmd = &cobra.Command{
	Use:   "add <name> <url|path>",
	Short: "Add or update a source",
	Long: `Add a custom source, or update its URL if the name is taken.

GitHub URLs register a git source; anything else is treated as a local
directory path.

Examples:
  cuco source add team https://github.com/acme/copilot-customizations
  cuco source add local ../shared-customizations`,
	Args: cobra.ExactArgs(2),
	Run:  runSourceAdd,
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a source",
	Args:  cobra.ExactArgs(1),
	Run:   runSourceRemove,
}

func init() {
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
}

func runSourceList(cmd *cobra.Command, args []string) {
	cfg := openConfig(currentProject())
	sources, err := cfg.Sources()
	if err != nil {
		exitWithErr(err)
	}

	if len(sources) == 0 {
		fmt.Println(ui.Render(ui.Muted, "No sources configured. Add one with 'cuco source add <name> <url>'."))
		return
	}

	fmt.Println()
	fmt.Println(ui.TableHeader("  NAME", "TYPE", "URL"))
	for _, src := range sources {
		fmt.Println(ui.TableRow("  "+src.Name, string(src.Kind), src.URL))
	}
	fmt.Println()
	fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("  Config: %s", cfg.Path())))
	fmt.Println()
}

func runSourceAdd(cmd *cobra.Command, args []string) {
	name, target := args[0], args[1]

	kind := config.SourceLocal
	if source.IsURL(target) {
		if _, err := source.ParseURL(target); err != nil {
			exitWithErr(err)
		}
		kind = config.SourceGit
		target = strings.TrimSuffix(target, "/")
	}

	cfg := openConfig(currentProject())
	updated, err := cfg.Add(config.Source{Name: name, Kind: kind, URL: target})
	if err != nil {
		exitWithErr(err)
	}

	verb := "Added"
	if updated {
		verb = "Updated"
	}
	fmt.Println(ui.SuccessLine(fmt.Sprintf("%s source %q (%s)", verb, name, kind)))
}

func runSourceRemove(cmd *cobra.Command, args []string) {
	cfg := openConfig(currentProject())
	removed, err := cfg.Remove(args[0])
	if err != nil {
		exitWithErr(err)
	}
	if !removed {
		exitWithError(fmt.Sprintf("source %q is not configured", args[0]))
	}
	fmt.Println(ui.SuccessLine(fmt.Sprintf("Removed source %q", args[0])))
}
