package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dj2695/cuco/internal/artifact"
	"github.com/dj2695/cuco/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list <type>",
	Short: "List artifacts available in the registry",
	Long: `List artifacts of a given type available in the bundled registry.

Types: agents, prompts, instructions, skills, mcps, bundles

Examples:
  cuco list agents
  cuco list skills`,
	Args: cobra.ExactArgs(1),
	Run:  runList,
}

func runList(cmd *cobra.Command, args []string) {
	t, err := parsePluralType(args[0])
	if err != nil {
		exitWithError(err.Error())
	}

	reg, _ := openRegistry()
	entries, err := reg.List(t)
	if err != nil {
		exitWithErr(err)
	}

	if len(entries) == 0 {
		fmt.Printf("No %s found in registry.\n", t.Dir())
		return
	}

	fmt.Println()
	fmt.Println(ui.Render(ui.Title, fmt.Sprintf("  Available %s", t.Dir())))
	fmt.Println()
	for _, entry := range entries {
		fmt.Printf("  %s\n", ui.Render(ui.Highlight, entry.Name))
		if entry.Description != "" {
			fmt.Printf("    %s\n", ui.Render(ui.Muted, ui.Truncate(entry.Description, ui.TerminalWidth()-8)))
		}
	}
	fmt.Println()
	fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("  Total: %d", len(entries))))

	verb := fmt.Sprintf("cuco add %s <name>", t)
	if t == artifact.TypeBundle {
		verb = "cuco bundle add <name>"
	}
	fmt.Println(ui.Render(ui.Muted, "  Install with: ") + ui.Render(ui.Code, verb))
	fmt.Println()
}

// parsePluralType accepts the plural spellings used by list (and tolerates
// singular ones).
func parsePluralType(s string) (artifact.Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, dir := range pluralTypes() {
		if s == dir || s == string(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown artifact type %q (valid: agents, prompts, instructions, skills, mcps, bundles)", s)
}

func pluralTypes() map[artifact.Type]string {
	m := map[artifact.Type]string{}
	for _, t := range []artifact.Type{
		artifact.TypeAgent, artifact.TypePrompt, artifact.TypeInstructions,
		artifact.TypeSkill, artifact.TypeMCP, artifact.TypeBundle,
	} {
		m[t] = t.Dir()
	}
	return m
}
