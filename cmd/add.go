package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dj2695/cuco/internal/artifact"
	"github.com/dj2695/cuco/internal/errs"
	"github.com/dj2695/cuco/internal/fsutil"
	"github.com/dj2695/cuco/internal/hash"
	"github.com/dj2695/cuco/internal/mcp"
	"github.com/dj2695/cuco/internal/project"
	"github.com/dj2695/cuco/internal/registry"
	"github.com/dj2695/cuco/internal/resolver"
	"github.com/dj2695/cuco/internal/source"
	"github.com/dj2695/cuco/internal/tracking"
	"github.com/dj2695/cuco/internal/ui"
)

var addCmd = &cobra.Command{
	Use:   "add <type> <name|github-url>",
	Short: "Add an artifact to the project",
	Long: `Add an artifact to the project's customization folder.

The artifact is resolved from the bundled registry first, then from any
configured sources. GitHub URLs (github.com or raw.githubusercontent.com)
are fetched directly.

Types: agent, prompt, instructions, skill, mcp

Examples:
  cuco add agent code-reviewer
  cuco add skill tdd --source team
  cuco add skill https://github.com/anthropics/skills/skills/pdf
  cuco add mcp github`,
	Args: cobra.MinimumNArgs(1),
	Run:  runAdd,
}

var (
	addForce  bool
	addSource string
)

func init() {
	addCmd.Flags().BoolVarP(&addForce, "force", "f", false, "Overwrite an existing artifact without asking")
	addCmd.Flags().StringVarP(&addSource, "source", "s", "", "Resolve from a named source instead of the registry")
}

func runAdd(cmd *cobra.Command, args []string) {
	if args[0] == "mcp" {
		if len(args) < 2 {
			exitWithError("missing MCP server name\nUsage: cuco add mcp <name>")
		}
		runAddMCP(args[1])
		return
	}

	if len(args) < 2 {
		exitWithError("missing artifact name\nUsage: cuco add <type> <name|github-url>")
	}
	t, err := artifact.ParseType(args[0])
	if err != nil {
		exitWithError(err.Error())
	}
	if t == artifact.TypeBundle {
		exitWithError("bundles are installed with 'cuco bundle add <name>'")
	}
	if t == artifact.TypeMCP {
		runAddMCP(args[1])
		return
	}

	proj := requireInitialized()
	reg, loc := openRegistry()
	ctx := context.Background()

	ref := args[1]
	resolved, name := resolveForAdd(ctx, proj, reg, loc, t, ref)
	if resolved.Temp {
		defer os.Remove(resolved.Path)
	}

	dst := filepath.Join(proj.TypeDir(t), resolved.Filename)
	if resolved.IsDir {
		dst = filepath.Join(proj.TypeDir(t), name)
	}

	if fsutil.Exists(dst) && !addForce {
		if !ui.Confirm(fmt.Sprintf("%s %q already exists. Overwrite?", t, name)) {
			fmt.Println("Cancelled.")
			os.Exit(1)
		}
	}

	digest, err := hash.Path(resolved.Path)
	if err != nil {
		exitWithErr(err)
	}
	if err := fsutil.CopyPath(resolved.Path, dst); err != nil {
		exitWithErr(err)
	}
	if err := tracking.Open(proj).Upsert(t, name, digest, ""); err != nil {
		exitWithErr(err)
	}

	rel, _ := filepath.Rel(proj.RootDir, dst)
	fmt.Println(ui.SuccessLine(fmt.Sprintf("Added %s %q to %s", t, name, rel)))
}

// resolveForAdd locates the artifact: a GitHub URL is fetched directly, a
// --source flag pins one configured source, otherwise the registry is tried
// first and then every configured source in order.
func resolveForAdd(ctx context.Context, proj *project.Context, reg *registry.Registry, loc *resolver.Locator, t artifact.Type, ref string) (*resolver.Resolved, string) {
	if source.IsURL(ref) {
		resolved, err := loc.ResolveURL(ctx, ref, t)
		if err != nil {
			exitWithErr(err)
		}
		return resolved, resolved.Name
	}

	cfg := openConfig(proj)
	if addSource != "" {
		src, ok, err := cfg.Get(addSource)
		if err != nil {
			exitWithErr(err)
		}
		if !ok {
			exitWithError(fmt.Sprintf("source %q is not configured (see 'cuco source list')", addSource))
		}
		resolved, err := loc.ResolveSource(ctx, src, t, ref)
		if err != nil {
			exitWithErr(err)
		}
		return resolved, ref
	}

	resolved, err := loc.ResolveRegistry(t, ref)
	if err == nil {
		return resolved, ref
	}
	if !errors.Is(err, errs.ErrNotFound) {
		exitWithErr(err)
	}

	sources, err := cfg.Sources()
	if err != nil {
		exitWithErr(err)
	}
	for _, src := range sources {
		resolved, err := loc.ResolveSource(ctx, src, t, ref)
		if err == nil {
			fmt.Println(ui.InfoLine(fmt.Sprintf("Resolved from source %q", src.Name)))
			return resolved, ref
		}
		if !errors.Is(err, errs.ErrNotFound) {
			exitWithErr(err)
		}
	}

	msg := fmt.Sprintf("%s %q not found in the registry", t, ref)
	if entries, err := reg.List(t); err == nil && len(entries) > 0 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name)
		}
		msg += fmt.Sprintf("\nAvailable %s: %s", t.Dir(), strings.Join(names, ", "))
	}
	exitWithError(msg)
	return nil, ""
}

func runAddMCP(name string) {
	proj := requireInitialized()
	reg, _ := openRegistry()

	manager := mcp.NewManager(proj, reg.MCPFile())
	if !addForce {
		manager.ConfirmOverwrite = func(name string) bool {
			return ui.Confirm(fmt.Sprintf("MCP server %q already exists. Overwrite?", name))
		}
	} else {
		manager.ConfirmOverwrite = func(string) bool { return true }
	}

	result, err := manager.AddServer(name)
	if err != nil {
		exitWithErr(err)
	}
	if result.Skipped {
		fmt.Println("Cancelled.")
		os.Exit(1)
	}

	fmt.Println(ui.SuccessLine(fmt.Sprintf("Added MCP server %q to %s", name, mcp.ProjectFile)))
	if len(result.NewEnvVars) > 0 {
		fmt.Println(ui.WarningLine(fmt.Sprintf("Added to %s: %s", mcp.EnvFile, strings.Join(result.NewEnvVars, ", "))))
		fmt.Println(ui.Render(ui.Muted, "  Set values for these variables before using the server."))
	} else if len(result.EnvVars) > 0 {
		fmt.Println(ui.Render(ui.Muted, fmt.Sprintf("  Uses environment variables: %s (already in %s)",
			strings.Join(result.EnvVars, ", "), mcp.EnvFile)))
	}
}
