// Package syncer reconciles installed artifacts against their registry
// originals. Classification is a pure function over three digests; what to
// do about a conflict is delegated to a Policy so the reconciler itself
// never talks to a terminal.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/dj2695/cuco/internal/errs"
	"github.com/dj2695/cuco/internal/fsutil"
	"github.com/dj2695/cuco/internal/hash"
	"github.com/dj2695/cuco/internal/project"
	"github.com/dj2695/cuco/internal/resolver"
	"github.com/dj2695/cuco/internal/tracking"
)

// Outcome is the pure classification of one artifact's sync state.
type Outcome int

const (
	// OutcomeUpToDate: the registry content matches what was last
	// installed; nothing to do, local edits (if any) are preserved.
	OutcomeUpToDate Outcome = iota
	// OutcomeClean: the registry changed and the local copy is untouched
	// since install; safe to overwrite.
	OutcomeClean
	// OutcomeConflict: the registry changed and the local copy was edited;
	// overwriting loses work, so a Decision is required.
	OutcomeConflict
)

// Classify applies the reconciliation table to the three digests involved:
// the artifact as it sits in the project, the registry original, and the
// digest recorded at install time.
func Classify(currentHash, registryHash, recordedHash string) Outcome {
	switch {
	case registryHash == recordedHash:
		return OutcomeUpToDate
	case currentHash == recordedHash:
		return OutcomeClean
	default:
		return OutcomeConflict
	}
}

// Decision is a policy's answer to a conflict.
type Decision int

const (
	// DecisionSkip keeps the local edits and leaves provenance unchanged.
	DecisionSkip Decision = iota
	// DecisionOverwrite discards local edits in favor of the registry.
	DecisionOverwrite
	// DecisionAbort stops a batch sync at this artifact.
	DecisionAbort
)

// Policy decides what to do when an artifact is in conflict. Implementations
// range from constants (force, non-interactive) to a terminal prompt.
type Policy interface {
	Resolve(rec tracking.Record) Decision
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(rec tracking.Record) Decision

// Resolve calls f.
func (f PolicyFunc) Resolve(rec tracking.Record) Decision { return f(rec) }

// ForceOverwrite resolves every conflict by overwriting, as --force does.
var ForceOverwrite Policy = PolicyFunc(func(tracking.Record) Decision { return DecisionOverwrite })

// KeepLocal resolves every conflict by skipping; the non-interactive default.
var KeepLocal Policy = PolicyFunc(func(tracking.Record) Decision { return DecisionSkip })

// Status is the terminal state of one artifact's sync attempt.
type Status int

const (
	StatusUpToDate Status = iota
	StatusUpdated
	StatusSkipped
	StatusFailed
)

// String renders the status for CLI output.
func (s Status) String() string {
	switch s {
	case StatusUpToDate:
		return "up to date"
	case StatusUpdated:
		return "updated"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result reports one artifact's sync outcome.
type Result struct {
	Record tracking.Record
	Status Status
	// Err carries the failure for StatusFailed results.
	Err error
}

// Summary is the aggregate tally of a batch sync.
type Summary struct {
	// Synced counts artifacts left matching the registry after the run
	// (already up to date or just updated).
	Synced int
	Total  int
}

// ErrAborted is returned by SyncAll when the policy decided to stop.
var ErrAborted = errors.New("sync aborted")

// Reconciler drives sync for one project.
type Reconciler struct {
	Project *project.Context
	Store   *tracking.Store
	Locator *resolver.Locator
	Policy  Policy
}

// New returns a reconciler bound to the project's tracking store.
func New(proj *project.Context, loc *resolver.Locator, policy Policy) *Reconciler {
	return &Reconciler{
		Project: proj,
		Store:   tracking.Open(proj),
		Locator: loc,
		Policy:  policy,
	}
}

// SyncOne reconciles a single tracked artifact. Missing local content and
// missing registry content are both failures: the record says the artifact
// should exist on both sides.
func (r *Reconciler) SyncOne(ctx context.Context, rec tracking.Record) Result {
	local, ok := resolver.ResolveIn(r.Project.TypeDir(rec.Type), rec.Name)
	if !ok {
		return Result{Record: rec, Status: StatusFailed,
			Err: fmt.Errorf("%w: %s %q is tracked but missing from the project", errs.ErrNotFound, rec.Type, rec.Name)}
	}
	currentHash, err := hash.Path(local.Path)
	if err != nil {
		return Result{Record: rec, Status: StatusFailed, Err: err}
	}

	reg, err := r.Locator.ResolveRegistry(rec.Type, rec.Name)
	if err != nil {
		return Result{Record: rec, Status: StatusFailed, Err: err}
	}
	registryHash, err := hash.Path(reg.Path)
	if err != nil {
		return Result{Record: rec, Status: StatusFailed, Err: err}
	}

	switch Classify(currentHash, registryHash, rec.SourceHash) {
	case OutcomeUpToDate:
		return Result{Record: rec, Status: StatusUpToDate}
	case OutcomeClean:
		return r.overwrite(rec, local, reg, registryHash)
	default:
		switch r.Policy.Resolve(rec) {
		case DecisionOverwrite:
			return r.overwrite(rec, local, reg, registryHash)
		case DecisionAbort:
			return Result{Record: rec, Status: StatusFailed,
				Err: fmt.Errorf("%w: %s %q has local changes", errs.ErrConflict, rec.Type, rec.Name)}
		default:
			log.Debug("keeping local changes", "artifact", rec.Key())
			return Result{Record: rec, Status: StatusSkipped}
		}
	}
}

// overwrite replaces the local artifact with the registry content and
// re-records provenance with the new digest.
func (r *Reconciler) overwrite(rec tracking.Record, local, reg *resolver.Resolved, registryHash string) Result {
	dst := local.Path
	if local.IsDir != reg.IsDir || local.Filename != reg.Filename {
		// Shape or filename changed in the registry; install under the
		// registry's current name and drop the old copy.
		if err := os.RemoveAll(local.Path); err != nil {
			return Result{Record: rec, Status: StatusFailed, Err: err}
		}
		dst = filepath.Join(r.Project.TypeDir(rec.Type), reg.Filename)
	}
	if err := fsutil.CopyPath(reg.Path, dst); err != nil {
		return Result{Record: rec, Status: StatusFailed, Err: err}
	}
	if err := r.Store.Upsert(rec.Type, rec.Name, registryHash, rec.Version); err != nil {
		return Result{Record: rec, Status: StatusFailed, Err: err}
	}
	return Result{Record: rec, Status: StatusUpdated}
}

// SyncAll reconciles every tracked artifact in key order, continuing past
// individual failures. The returned error is non-nil only when the policy
// aborted the batch; per-artifact failures live in the results.
func (r *Reconciler) SyncAll(ctx context.Context) (Summary, []Result, error) {
	records, err := r.Store.All()
	if err != nil {
		return Summary{}, nil, err
	}

	var (
		summary = Summary{Total: len(records)}
		results = make([]Result, 0, len(records))
	)
	for _, rec := range records {
		res := r.SyncOne(ctx, rec)
		results = append(results, res)
		switch res.Status {
		case StatusUpToDate, StatusUpdated:
			summary.Synced++
		case StatusFailed:
			if errors.Is(res.Err, errs.ErrConflict) {
				return summary, results, ErrAborted
			}
			log.Warn("sync failed", "artifact", rec.Key(), "err", res.Err)
		}
	}
	return summary, results, nil
}
