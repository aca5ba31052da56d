package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dj2695/cuco/internal/syncer"
	"github.com/dj2695/cuco/internal/tracking"
	"github.com/dj2695/cuco/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync [name]",
	Short: "Reconcile installed artifacts with the registry",
	Long: `Sync tracked artifacts with their registry versions.

Each artifact is classified by comparing three content hashes: the local
copy, the registry copy, and the hash recorded when the artifact was
installed. Clean upgrades are applied automatically; artifacts with local
edits prompt for a decision unless --force is given.

Examples:
  cuco sync
  cuco sync code-reviewer
  cuco sync --force`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSync,
}

var syncForce bool

func init() {
	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "Overwrite local changes without asking")
}

// promptPolicy asks the user what to do about each conflicted artifact.
// Outside a terminal it keeps the local version.
var promptPolicy = syncer.PolicyFunc(func(rec tracking.Record) syncer.Decision {
	fmt.Println()
	fmt.Println(ui.WarningLine(fmt.Sprintf("%s %q has local changes", rec.Type, rec.Name)))
	choice := ui.Choose("How should it be handled?",
		[]string{"overwrite", "keep", "abort"}, 1)
	switch choice {
	case 0:
		return syncer.DecisionOverwrite
	case 2:
		return syncer.DecisionAbort
	default:
		return syncer.DecisionSkip
	}
})

func runSync(cmd *cobra.Command, args []string) {
	proj := requireInitialized()
	_, loc := openRegistry()

	policy := syncer.Policy(promptPolicy)
	if syncForce {
		policy = syncer.ForceOverwrite
	}
	rec := syncer.New(proj, loc, policy)
	ctx := context.Background()

	if len(args) == 1 {
		syncOneByName(ctx, rec, args[0])
		return
	}

	summary, results, err := rec.SyncAll(ctx)
	for _, res := range results {
		printSyncResult(res)
	}
	if err != nil {
		if errors.Is(err, syncer.ErrAborted) {
			fmt.Println()
			fmt.Println(ui.Render(ui.Muted, "  Sync aborted."))
			return
		}
		exitWithErr(err)
	}

	fmt.Println()
	if summary.Total == 0 {
		fmt.Println(ui.Render(ui.Muted, "  No tracked artifacts. Nothing to sync."))
	} else {
		fmt.Println(ui.Render(ui.Info, fmt.Sprintf("  Synced %d/%d artifacts", summary.Synced, summary.Total)))
	}
	fmt.Println()
}

func syncOneByName(ctx context.Context, rec *syncer.Reconciler, name string) {
	matches, err := rec.Store.FindByName(name)
	if err != nil {
		exitWithErr(err)
	}
	if len(matches) == 0 {
		exitWithError(fmt.Sprintf("artifact %q is not tracked\nOnly artifacts added via 'cuco add' can be synced", name))
	}

	for _, match := range matches {
		printSyncResult(rec.SyncOne(ctx, match))
	}
}

func printSyncResult(res syncer.Result) {
	label := fmt.Sprintf("%s %q %s", res.Record.Type, res.Record.Name, res.Status)
	switch res.Status {
	case syncer.StatusUpdated:
		fmt.Println(ui.SuccessLine(label))
	case syncer.StatusUpToDate:
		fmt.Println(ui.Render(ui.Muted, "  ✓ "+label))
	case syncer.StatusSkipped:
		fmt.Println(ui.Render(ui.Muted, "  ↷ "+label))
	default:
		fmt.Println(ui.ErrorLine(fmt.Sprintf("%s: %v", label, res.Err)))
	}
}
