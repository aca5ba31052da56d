package syncer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj2695/cuco/internal/artifact"
	"github.com/dj2695/cuco/internal/errs"
	"github.com/dj2695/cuco/internal/hash"
	"github.com/dj2695/cuco/internal/project"
	"github.com/dj2695/cuco/internal/resolver"
	"github.com/dj2695/cuco/internal/tracking"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name                        string
		current, registry, recorded string
		want                        Outcome
	}{
		{"registry unchanged, local clean", "h1", "h1", "h1", OutcomeUpToDate},
		{"registry unchanged, local edited", "h2", "h1", "h1", OutcomeUpToDate},
		{"registry changed, local clean", "h1", "h2", "h1", OutcomeClean},
		{"registry changed, local edited", "h2", "h3", "h1", OutcomeConflict},
		{"local matches new registry but not record", "h2", "h2", "h1", OutcomeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.current, tt.registry, tt.recorded))
		})
	}
}

// fixture wires a registry directory, an initialized project, and a
// reconciler over both.
type fixture struct {
	regDir string
	proj   *project.Context
	rec    *Reconciler
}

func newFixture(t *testing.T, policy Policy) *fixture {
	t.Helper()
	regDir := t.TempDir()
	proj, _, err := project.Init(t.TempDir(), project.Engines[0])
	require.NoError(t, err)

	return &fixture{
		regDir: regDir,
		proj:   proj,
		rec:    New(proj, &resolver.Locator{RegistryDir: regDir}, policy),
	}
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// install puts the same content in the registry and the project and records
// its digest, simulating a prior `add`.
func (f *fixture) install(t *testing.T, name, content string) string {
	t.Helper()
	regPath := write(t, f.regDir, filepath.Join("agents", name+".agent.md"), content)
	write(t, f.proj.TypeDir(artifact.TypeAgent), name+".agent.md", content)

	digest, err := hash.Path(regPath)
	require.NoError(t, err)
	require.NoError(t, f.rec.Store.Upsert(artifact.TypeAgent, name, digest, ""))
	return regPath
}

func (f *fixture) record(t *testing.T, name string) tracking.Record {
	t.Helper()
	rec, ok, err := f.rec.Store.Get(artifact.TypeAgent, name)
	require.NoError(t, err)
	require.True(t, ok)
	return rec
}

func (f *fixture) localContent(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.proj.TypeDir(artifact.TypeAgent), name+".agent.md"))
	require.NoError(t, err)
	return string(data)
}

func TestSyncOneUpToDate(t *testing.T) {
	f := newFixture(t, KeepLocal)
	f.install(t, "reviewer", "# Reviewer\n")

	res := f.rec.SyncOne(context.Background(), f.record(t, "reviewer"))
	assert.Equal(t, StatusUpToDate, res.Status)
	assert.Equal(t, "# Reviewer\n", f.localContent(t, "reviewer"))
}

func TestSyncOneUpToDateKeepsLocalEdits(t *testing.T) {
	f := newFixture(t, ForceOverwrite)
	f.install(t, "reviewer", "# Reviewer\n")
	write(t, f.proj.TypeDir(artifact.TypeAgent), "reviewer.agent.md", "# Mine\n")

	res := f.rec.SyncOne(context.Background(), f.record(t, "reviewer"))
	assert.Equal(t, StatusUpToDate, res.Status)
	assert.Equal(t, "# Mine\n", f.localContent(t, "reviewer"))
}

func TestSyncOneCleanOverwrite(t *testing.T) {
	f := newFixture(t, KeepLocal)
	regPath := f.install(t, "reviewer", "v1\n")
	require.NoError(t, os.WriteFile(regPath, []byte("v2\n"), 0o644))

	res := f.rec.SyncOne(context.Background(), f.record(t, "reviewer"))
	assert.Equal(t, StatusUpdated, res.Status)
	assert.Equal(t, "v2\n", f.localContent(t, "reviewer"))

	wantHash, err := hash.Path(regPath)
	require.NoError(t, err)
	assert.Equal(t, wantHash, f.record(t, "reviewer").SourceHash)
}

func TestSyncOneConflictSkipPreservesEverything(t *testing.T) {
	f := newFixture(t, KeepLocal)
	regPath := f.install(t, "reviewer", "v1\n")
	before := f.record(t, "reviewer")

	require.NoError(t, os.WriteFile(regPath, []byte("v2\n"), 0o644))
	write(t, f.proj.TypeDir(artifact.TypeAgent), "reviewer.agent.md", "edited\n")

	res := f.rec.SyncOne(context.Background(), before)
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Equal(t, "edited\n", f.localContent(t, "reviewer"))
	assert.Equal(t, before.SourceHash, f.record(t, "reviewer").SourceHash)
}

func TestSyncOneConflictForceOverwrites(t *testing.T) {
	f := newFixture(t, ForceOverwrite)
	regPath := f.install(t, "reviewer", "v1\n")
	require.NoError(t, os.WriteFile(regPath, []byte("v2\n"), 0o644))
	write(t, f.proj.TypeDir(artifact.TypeAgent), "reviewer.agent.md", "edited\n")

	res := f.rec.SyncOne(context.Background(), f.record(t, "reviewer"))
	assert.Equal(t, StatusUpdated, res.Status)
	assert.Equal(t, "v2\n", f.localContent(t, "reviewer"))
}

func TestSyncOneMissingLocal(t *testing.T) {
	f := newFixture(t, KeepLocal)
	f.install(t, "reviewer", "v1\n")
	require.NoError(t, os.Remove(filepath.Join(f.proj.TypeDir(artifact.TypeAgent), "reviewer.agent.md")))

	res := f.rec.SyncOne(context.Background(), f.record(t, "reviewer"))
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, errs.ErrNotFound)
}

func TestSyncOneMissingFromRegistry(t *testing.T) {
	f := newFixture(t, KeepLocal)
	regPath := f.install(t, "reviewer", "v1\n")
	require.NoError(t, os.Remove(regPath))

	res := f.rec.SyncOne(context.Background(), f.record(t, "reviewer"))
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, errs.ErrNotFound)
}

func TestSyncOneDirectoryArtifact(t *testing.T) {
	f := newFixture(t, KeepLocal)
	regSkill := filepath.Join(f.regDir, "skills", "tdd")
	write(t, regSkill, artifact.SkillFilename, "v1\n")
	write(t, filepath.Join(f.proj.TypeDir(artifact.TypeSkill), "tdd"), artifact.SkillFilename, "v1\n")

	digest, err := hash.Path(regSkill)
	require.NoError(t, err)
	require.NoError(t, f.rec.Store.Upsert(artifact.TypeSkill, "tdd", digest, ""))
	rec, ok, err := f.rec.Store.Get(artifact.TypeSkill, "tdd")
	require.NoError(t, err)
	require.True(t, ok)

	// Add a file upstream: clean local copy gets the new file on sync.
	write(t, regSkill, "resources/extra.md", "more\n")
	res := f.rec.SyncOne(context.Background(), rec)
	assert.Equal(t, StatusUpdated, res.Status)
	data, err := os.ReadFile(filepath.Join(f.proj.TypeDir(artifact.TypeSkill), "tdd", "resources", "extra.md"))
	require.NoError(t, err)
	assert.Equal(t, "more\n", string(data))
}

func TestSyncAllContinuesPastFailures(t *testing.T) {
	f := newFixture(t, KeepLocal)
	f.install(t, "alpha", "a1\n")
	f.install(t, "beta", "b1\n")
	f.install(t, "gamma", "c1\n")

	// beta vanishes locally; gamma's registry copy changes cleanly.
	require.NoError(t, os.Remove(filepath.Join(f.proj.TypeDir(artifact.TypeAgent), "beta.agent.md")))
	require.NoError(t, os.WriteFile(filepath.Join(f.regDir, "agents", "gamma.agent.md"), []byte("c2\n"), 0o644))

	summary, results, err := f.rec.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Synced)
	require.Len(t, results, 3)
	assert.Equal(t, StatusUpToDate, results[0].Status)
	assert.Equal(t, StatusFailed, results[1].Status)
	assert.Equal(t, StatusUpdated, results[2].Status)
}

func TestSyncAllAbortStopsBatch(t *testing.T) {
	abort := PolicyFunc(func(tracking.Record) Decision { return DecisionAbort })
	f := newFixture(t, abort)
	f.install(t, "alpha", "a1\n")
	f.install(t, "beta", "b1\n")

	// Conflict on alpha: registry and local both diverge from the record.
	require.NoError(t, os.WriteFile(filepath.Join(f.regDir, "agents", "alpha.agent.md"), []byte("a2\n"), 0o644))
	write(t, f.proj.TypeDir(artifact.TypeAgent), "alpha.agent.md", "edited\n")

	summary, results, err := f.rec.SyncAll(context.Background())
	assert.ErrorIs(t, err, ErrAborted)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, errs.ErrConflict)
	assert.Equal(t, 0, summary.Synced)
	assert.Equal(t, "edited\n", f.localContent(t, "alpha"))
}
