package bundle

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj2695/cuco/internal/artifact"
	"github.com/dj2695/cuco/internal/config"
	"github.com/dj2695/cuco/internal/errs"
	"github.com/dj2695/cuco/internal/project"
	"github.com/dj2695/cuco/internal/repocache"
	"github.com/dj2695/cuco/internal/resolver"
)

func TestResourceAliasesCanonicalize(t *testing.T) {
	var deps Dependencies
	require.NoError(t, json.Unmarshal([]byte(`{
		"agents": [{"type": "inline", "name": "a", "path": "agents/a.agent.md"}],
		"prompts": [{"type": "reference", "name": "p", "source": "prompts/p.prompt.md"}]
	}`), &deps))

	assert.Equal(t, KindBundled, deps.Agents[0].Kind)
	assert.Equal(t, KindRegistry, deps.Prompts[0].Kind)
}

func TestResourceUnknownKindRejected(t *testing.T) {
	var res Resource
	err := json.Unmarshal([]byte(`{"type": "carrier-pigeon", "name": "x"}`), &res)
	assert.ErrorIs(t, err, errs.ErrInvalidReference)
}

func TestLoadMissingManifest(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

type fixture struct {
	regDir string
	proj   *project.Context
	inst   *Installer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	regDir := t.TempDir()
	proj, _, err := project.Init(t.TempDir(), project.Engines[0])
	require.NoError(t, err)

	cache := repocache.NewAt(t.TempDir())
	loc := &resolver.Locator{RegistryDir: regDir, Cache: cache}
	cfg := config.OpenPath(filepath.Join(t.TempDir(), "config.json"))
	return &fixture{regDir: regDir, proj: proj, inst: NewInstaller(proj, loc, cfg)}
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (f *fixture) writeBundle(t *testing.T, name string, manifest Manifest) string {
	t.Helper()
	dir := filepath.Join(f.regDir, "bundles", name)
	data, err := json.MarshalIndent(manifest, "", "  ")
	require.NoError(t, err)
	write(t, dir, ManifestFilename, string(data))
	return dir
}

func TestInstallBundledAndRegistryResources(t *testing.T) {
	f := newFixture(t)
	dir := f.writeBundle(t, "starter", Manifest{
		Name:                "starter",
		Version:             "1.0.0",
		CopilotInstructions: &InstructionsRef{Type: "inline", Path: "copilot-instructions.md"},
		Dependencies: Dependencies{
			Agents: []Resource{
				{Kind: KindBundled, Name: "helper", Path: "agents/helper.agent.md"},
				{Kind: KindRegistry, Name: "reviewer", Source: "agents/reviewer.agent.md"},
			},
		},
	})
	write(t, dir, "copilot-instructions.md", "# Instructions\n")
	write(t, dir, "agents/helper.agent.md", "# Helper\n")
	write(t, f.regDir, "agents/reviewer.agent.md", "# Reviewer\n")

	manifest, results, err := f.inst.Install(context.Background(), "starter")
	require.NoError(t, err)
	assert.Equal(t, "starter", manifest.Name)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.NoError(t, res.Err)
	}

	agentsDir := f.proj.TypeDir(artifact.TypeAgent)
	for _, name := range []string{"helper.agent.md", "reviewer.agent.md"} {
		assert.FileExists(t, filepath.Join(agentsDir, name))
	}
	assert.FileExists(t, filepath.Join(f.proj.TargetDir, "copilot-instructions.md"))

	for _, name := range []string{"helper", "reviewer"} {
		rec, ok, err := f.inst.Store.Get(artifact.TypeAgent, name)
		require.NoError(t, err)
		require.True(t, ok, name)
		assert.NotEmpty(t, rec.SourceHash)
	}
}

func TestInstallKeepsExistingInstructionsWithoutConfirmation(t *testing.T) {
	f := newFixture(t)
	dir := f.writeBundle(t, "starter", Manifest{
		Name:                "starter",
		CopilotInstructions: &InstructionsRef{Type: "inline", Path: "copilot-instructions.md"},
	})
	write(t, dir, "copilot-instructions.md", "bundle version\n")
	existing := write(t, f.proj.TargetDir, "copilot-instructions.md", "mine\n")

	_, _, err := f.inst.Install(context.Background(), "starter")
	require.NoError(t, err)
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "mine\n", string(data))
}

func TestInstallOverwritesInstructionsWhenConfirmed(t *testing.T) {
	f := newFixture(t)
	f.inst.ConfirmOverwrite = func(string) bool { return true }
	dir := f.writeBundle(t, "starter", Manifest{
		Name:                "starter",
		CopilotInstructions: &InstructionsRef{Type: "inline", Path: "copilot-instructions.md"},
	})
	write(t, dir, "copilot-instructions.md", "bundle version\n")
	existing := write(t, f.proj.TargetDir, "copilot-instructions.md", "mine\n")

	_, _, err := f.inst.Install(context.Background(), "starter")
	require.NoError(t, err)
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "bundle version\n", string(data))
}

func TestInstallContinuesPastFailures(t *testing.T) {
	f := newFixture(t)
	dir := f.writeBundle(t, "partial", Manifest{
		Name: "partial",
		Dependencies: Dependencies{
			Prompts: []Resource{
				{Kind: KindBundled, Name: "missing", Path: "prompts/missing.prompt.md"},
				{Kind: KindBundled, Name: "commit", Path: "prompts/commit.prompt.md"},
			},
		},
	})
	write(t, dir, "prompts/commit.prompt.md", "# Commit\n")

	_, results, err := f.inst.Install(context.Background(), "partial")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, errs.ErrNotFound)
	assert.NoError(t, results[1].Err)
	assert.FileExists(t, filepath.Join(f.proj.TypeDir(artifact.TypePrompt), "commit.prompt.md"))
}

func TestInstallUnknownBundle(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.inst.Install(context.Background(), "nope")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestInstallCustomSourceResource(t *testing.T) {
	f := newFixture(t)
	srcDir := t.TempDir()
	write(t, srcDir, "custom_copilot/prompts/review.prompt.md", "# Review\n")
	_, err := f.inst.Config.Add(config.Source{Name: "team", Kind: config.SourceLocal, URL: srcDir})
	require.NoError(t, err)

	f.writeBundle(t, "team-kit", Manifest{
		Name: "team-kit",
		Dependencies: Dependencies{
			Prompts: []Resource{
				{Kind: KindCustom, Name: "review", SourceName: "team", Source: "prompts/review.prompt.md"},
			},
		},
	})

	_, results, err := f.inst.Install(context.Background(), "team-kit")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.FileExists(t, filepath.Join(f.proj.TypeDir(artifact.TypePrompt), "review.prompt.md"))
}

func TestInstallAgentSkillFromCachedRepo(t *testing.T) {
	f := newFixture(t)
	// A cached clone is reused even when pulling fails, so seeding the
	// cache directory stands in for the network.
	repoDir := f.inst.Locator.Cache.Dir("anthropics_skills")
	write(t, repoDir, ".git/HEAD", "ref: refs/heads/main\n")
	write(t, repoDir, "skills/tdd/"+artifact.SkillFilename, "# TDD\n")
	write(t, repoDir, "skills/tdd/resources/checklist.md", "steps\n")

	f.writeBundle(t, "skills-kit", Manifest{
		Name: "skills-kit",
		Dependencies: Dependencies{
			Skills: []Resource{{Kind: KindAgentSkills, Name: "tdd"}},
		},
	})

	_, results, err := f.inst.Install(context.Background(), "skills-kit")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	installed := filepath.Join(f.proj.TypeDir(artifact.TypeSkill), "tdd")
	assert.FileExists(t, filepath.Join(installed, artifact.SkillFilename))
	assert.FileExists(t, filepath.Join(installed, "resources", "checklist.md"))
	assert.NoDirExists(t, filepath.Join(installed, ".git"))
}

func TestInstallResourceValidation(t *testing.T) {
	f := newFixture(t)
	bundleDir := f.writeBundle(t, "empty", Manifest{Name: "empty"})

	tests := []struct {
		name string
		res  Resource
	}{
		{"bundled without path", Resource{Kind: KindBundled, Name: "x"}},
		{"registry without source", Resource{Kind: KindRegistry, Name: "x"}},
		{"custom without source_name", Resource{Kind: KindCustom, Name: "x", Source: "a/b.md"}},
		{"github without url", Resource{Kind: KindGitHub, Name: "x"}},
		{"agentskills without name", Resource{Kind: KindAgentSkills}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.inst.installResource(context.Background(), bundleDir, artifact.TypeAgent, tt.res)
			assert.ErrorIs(t, err, errs.ErrInvalidReference)
		})
	}
}
