package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dj2695/cuco/internal/artifact"
	"github.com/dj2695/cuco/internal/fsutil"
	"github.com/dj2695/cuco/internal/ui"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Create new artifacts from templates",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	Args:  cobra.NoArgs,
	Run:   runTemplateList,
}

var templateCreateCmd = &cobra.Command{
	Use:   "create <type> <name>",
	Short: "Create a new artifact from a template",
	Long: `Create a new artifact from a template, replacing {{NAME}} and {{name}}
placeholders with the given name.

Examples:
  cuco template create agent my-agent
  cuco template create skill my-skill --output ./skills/my-skill`,
	Args: cobra.ExactArgs(2),
	Run:  runTemplateCreate,
}

var templateOutput string

func init() {
	templateCreateCmd.Flags().StringVarP(&templateOutput, "output", "o", "", "Output path (defaults to the project's type directory)")
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateCreateCmd)
}

// templates maps the creatable types to their template file or directory.
var templates = map[artifact.Type]string{
	artifact.TypeAgent:  "agent-template.agent.md",
	artifact.TypePrompt: "prompt-template.prompt.md",
	artifact.TypeSkill:  "skill-template",
	artifact.TypeBundle: "bundle-template",
}

func runTemplateList(cmd *cobra.Command, args []string) {
	fmt.Println("Available templates:")
	fmt.Println("  agent       - Custom agent template (.agent.md)")
	fmt.Println("  prompt      - Reusable prompt template (.prompt.md)")
	fmt.Println("  skill       - Skill template (folder with SKILL.md)")
	fmt.Println("  bundle      - Bundle template with manifest")
}

func runTemplateCreate(cmd *cobra.Command, args []string) {
	t, err := artifact.ParseType(args[0])
	if err != nil {
		exitWithError(err.Error())
	}
	tmplName, ok := templates[t]
	if !ok {
		exitWithError(fmt.Sprintf("no template for type %q (valid: agent, prompt, skill, bundle)", t))
	}
	name := args[1]

	reg, _ := openRegistry()
	src := filepath.Join(reg.TemplatesDir(), tmplName)
	if !fsutil.Exists(src) {
		exitWithError(fmt.Sprintf("template %q is missing from the registry", tmplName))
	}

	dst := templateOutput
	if dst == "" {
		proj := requireInitialized()
		switch t {
		case artifact.TypeAgent:
			dst = filepath.Join(proj.TypeDir(t), name+".agent.md")
		case artifact.TypePrompt:
			dst = filepath.Join(proj.TypeDir(t), name+".prompt.md")
		default:
			dst = filepath.Join(proj.TypeDir(t), name)
		}
	}

	if fsutil.Exists(dst) {
		if !ui.Confirm(fmt.Sprintf("%q already exists. Overwrite?", dst)) {
			fmt.Println("Cancelled.")
			os.Exit(1)
		}
	}

	if err := fsutil.CopyPath(src, dst); err != nil {
		exitWithErr(err)
	}
	if err := fillPlaceholders(dst, name); err != nil {
		exitWithErr(err)
	}

	fmt.Println(ui.SuccessLine(fmt.Sprintf("Created %s template at %s", t, dst)))
	fmt.Println(ui.Render(ui.Muted, "  Edit the generated files to fit your use case."))
}

// fillPlaceholders replaces {{NAME}} and {{name}} in the created markdown
// and JSON files.
func fillPlaceholders(path, name string) error {
	replace := func(file string) error {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		content := strings.ReplaceAll(string(data), "{{NAME}}", name)
		content = strings.ReplaceAll(content, "{{name}}", name)
		return os.WriteFile(file, []byte(content), 0o644)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return replace(path)
	}
	return filepath.WalkDir(path, func(file string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		switch filepath.Ext(file) {
		case ".md", ".json":
			return replace(file)
		}
		return nil
	})
}
