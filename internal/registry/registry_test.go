package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj2695/cuco/internal/artifact"
)

func open(t *testing.T) *Registry {
	t.Helper()
	r, err := openAt(filepath.Join(t.TempDir(), "registry"))
	require.NoError(t, err)
	return r
}

func TestOpenMaterializes(t *testing.T) {
	r := open(t)
	assert.FileExists(t, filepath.Join(r.TypeDir(artifact.TypeAgent), "skill-builder.agent.md"))
	assert.FileExists(t, filepath.Join(r.TypeDir(artifact.TypeSkill), "test-driven-development", artifact.SkillFilename))
	assert.FileExists(t, r.MCPFile())
	assert.FileExists(t, filepath.Join(r.TemplatesDir(), "agent-template.agent.md"))
}

func TestOpenIsIdempotentPerVersion(t *testing.T) {
	root := filepath.Join(t.TempDir(), "registry")
	r, err := openAt(root)
	require.NoError(t, err)

	// A user-made change survives reopening while the version stamp matches.
	marker := filepath.Join(r.Dir(), "marker")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))

	_, err = openAt(root)
	require.NoError(t, err)
	assert.FileExists(t, marker)
}

func TestListStripsSuffixes(t *testing.T) {
	r := open(t)

	entries, err := r.List(artifact.TypeAgent)
	require.NoError(t, err)
	names := entryNames(entries)
	assert.Equal(t, []string{"code-reviewer", "skill-builder"}, names)

	entries, err = r.List(artifact.TypePrompt)
	require.NoError(t, err)
	assert.Equal(t, []string{"commit-message", "refactor"}, entryNames(entries))
}

func TestListSkillsIncludesDescriptions(t *testing.T) {
	r := open(t)
	entries, err := r.List(artifact.TypeSkill)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "test-driven-development", entries[0].Name)
	assert.Contains(t, entries[0].Description, "failing tests")
}

func TestListMCPServers(t *testing.T) {
	r := open(t)
	entries, err := r.List(artifact.TypeMCP)
	require.NoError(t, err)
	assert.Equal(t, []string{"filesystem", "github", "postgres"}, entryNames(entries))
}

func TestListBundles(t *testing.T) {
	r := open(t)
	entries, err := r.List(artifact.TypeBundle)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "development-essentials", entries[0].Name)
	assert.NotEmpty(t, entries[0].Description)
}

func entryNames(entries []Entry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}
