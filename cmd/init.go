package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dj2695/cuco/internal/project"
	"github.com/dj2695/cuco/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the customization folder structure",
	Long: `Initialize the customization folder structure in the current directory.

Engines determine the target folder convention:
  github   .github/ with copilot-instructions.md (default)
  claude   .claude/ with instructions.md
  cuco     .cuco/ tool-agnostic layout with config.json

Examples:
  cuco init
  cuco init --engine claude`,
	Run: runInit,
}

var initEngine string

func init() {
	initCmd.Flags().StringVarP(&initEngine, "engine", "e", "github", "Integration engine (github, claude, cuco)")
}

func runInit(cmd *cobra.Command, args []string) {
	engine, ok := project.EngineByName(strings.ToLower(initEngine))
	if !ok {
		var names []string
		for _, e := range project.Engines {
			names = append(names, e.Name)
		}
		exitWithError(fmt.Sprintf("unknown engine %q (valid: %s)", initEngine, strings.Join(names, ", ")))
	}

	proj := currentProject()
	_, created, err := project.Init(proj.RootDir, engine)
	if err != nil {
		exitWithErr(err)
	}

	fmt.Println()
	if len(created) == 0 {
		fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("  %s/ already initialized, nothing to do", engine.Folder)))
		fmt.Println()
		return
	}

	for _, path := range created {
		fmt.Println(ui.Render(ui.Muted, "  Created "+path))
	}
	fmt.Println()
	fmt.Println(ui.SuccessLine(fmt.Sprintf("Initialized %s structure (%s)", engine.Folder, engine.Description)))
	fmt.Println()
	fmt.Println(ui.Render(ui.Muted, "  Next steps:"))
	fmt.Println(ui.Render(ui.Muted, "    1. Browse the registry with ") + ui.Render(ui.Code, "cuco list agents"))
	fmt.Println(ui.Render(ui.Muted, "    2. Install artifacts with ") + ui.Render(ui.Code, "cuco add <type> <name>"))
	fmt.Println(ui.Render(ui.Muted, "    3. Keep them current with ") + ui.Render(ui.Code, "cuco sync"))
	fmt.Println()
}
