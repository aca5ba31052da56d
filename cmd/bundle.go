package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dj2695/cuco/internal/artifact"
	"github.com/dj2695/cuco/internal/bundle"
	"github.com/dj2695/cuco/internal/ui"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Manage customization bundles",
	Long: `Manage bundles: pre-assembled sets of agents, prompts, skills, and
instructions installed in one step.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var bundleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available bundles",
	Args:  cobra.NoArgs,
	Run:   runBundleList,
}

var bundleAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Install a bundle",
	Args:  cobra.ExactArgs(1),
	Run:   runBundleAdd,
}

func init() {
	bundleCmd.AddCommand(bundleListCmd)
	bundleCmd.AddCommand(bundleAddCmd)
}

func runBundleList(cmd *cobra.Command, args []string) {
	reg, _ := openRegistry()
	entries, err := reg.List(artifact.TypeBundle)
	if err != nil {
		exitWithErr(err)
	}
	if len(entries) == 0 {
		fmt.Println("No bundles available")
		return
	}

	fmt.Println()
	fmt.Println(ui.Render(ui.Title, "  Available bundles"))
	fmt.Println()
	for _, entry := range entries {
		fmt.Printf("  %s\n", ui.Render(ui.Highlight, entry.Name))
		if entry.Description != "" {
			fmt.Printf("    %s\n", ui.Render(ui.Muted, ui.Truncate(entry.Description, 72)))
		}
	}
	fmt.Println()
	fmt.Println(ui.Render(ui.Muted, "  Install with: cuco bundle add <name>"))
	fmt.Println()
}

func runBundleAdd(cmd *cobra.Command, args []string) {
	proj := requireInitialized()
	_, loc := openRegistry()
	cfg := openConfig(proj)

	installer := bundle.NewInstaller(proj, loc, cfg)
	installer.ConfirmOverwrite = func(path string) bool {
		return ui.Confirm(fmt.Sprintf("%s already exists. Overwrite?", proj.Engine.MainFile))
	}

	manifest, results, err := installer.Install(context.Background(), args[0])
	if err != nil {
		exitWithErr(err)
	}

	fmt.Println()
	fmt.Println(ui.Render(ui.Title, fmt.Sprintf("  Installing bundle %s v%s", manifest.Name, manifest.Version)))
	if manifest.Description != "" {
		fmt.Println(ui.Render(ui.Muted, "  "+manifest.Description))
	}
	fmt.Println()

	installed := 0
	for _, res := range results {
		name := res.Resource.Name
		if name == "" {
			name = res.Resource.Skill
		}
		if res.Err != nil {
			fmt.Println(ui.WarningLine(fmt.Sprintf("%s %q: %v", res.Type, name, res.Err)))
			continue
		}
		fmt.Println(ui.SuccessLine(fmt.Sprintf("Installed %s %q", res.Type, name)))
		installed++
	}

	fmt.Println()
	if installed == len(results) {
		fmt.Println(ui.SuccessLine(fmt.Sprintf("Bundle %q installed (%d/%d resources)", manifest.Name, installed, len(results))))
	} else {
		fmt.Println(ui.WarningLine(fmt.Sprintf("Bundle %q partially installed (%d/%d resources)", manifest.Name, installed, len(results))))
	}
	fmt.Println()
}
