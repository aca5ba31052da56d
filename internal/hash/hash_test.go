package hash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileStable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.md")
	writeFile(t, path, "You are a careful reviewer.\n")

	first, err := File(path)
	require.NoError(t, err)
	second, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestFileChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.md")

	writeFile(t, path, "version one")
	before, err := File(path)
	require.NoError(t, err)

	writeFile(t, path, "version two")
	after, err := File(path)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestDirOrderIndependent(t *testing.T) {
	// Same relative-path -> content mapping, files created in opposite order.
	a := t.TempDir()
	writeFile(t, filepath.Join(a, "SKILL.md"), "skill body")
	writeFile(t, filepath.Join(a, "examples", "one.md"), "example")

	b := t.TempDir()
	writeFile(t, filepath.Join(b, "examples", "one.md"), "example")
	writeFile(t, filepath.Join(b, "SKILL.md"), "skill body")

	ha, err := Dir(a)
	require.NoError(t, err)
	hb, err := Dir(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestDirSensitivity(t *testing.T) {
	base := func(t *testing.T) string {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "SKILL.md"), "skill body")
		writeFile(t, filepath.Join(dir, "examples", "one.md"), "example")
		return dir
	}

	ref, err := Dir(base(t))
	require.NoError(t, err)

	t.Run("added file", func(t *testing.T) {
		dir := base(t)
		writeFile(t, filepath.Join(dir, "extra.md"), "new")
		h, err := Dir(dir)
		require.NoError(t, err)
		assert.NotEqual(t, ref, h)
	})

	t.Run("removed file", func(t *testing.T) {
		dir := base(t)
		require.NoError(t, os.Remove(filepath.Join(dir, "examples", "one.md")))
		h, err := Dir(dir)
		require.NoError(t, err)
		assert.NotEqual(t, ref, h)
	})

	t.Run("renamed file", func(t *testing.T) {
		dir := base(t)
		require.NoError(t, os.Rename(
			filepath.Join(dir, "examples", "one.md"),
			filepath.Join(dir, "examples", "two.md"),
		))
		h, err := Dir(dir)
		require.NoError(t, err)
		assert.NotEqual(t, ref, h)
	})

	t.Run("modified file", func(t *testing.T) {
		dir := base(t)
		writeFile(t, filepath.Join(dir, "SKILL.md"), "different body")
		h, err := Dir(dir)
		require.NoError(t, err)
		assert.NotEqual(t, ref, h)
	})
}

func TestPathDispatch(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "note.md")
	writeFile(t, file, "note")

	fromPath, err := Path(file)
	require.NoError(t, err)
	fromFile, err := File(file)
	require.NoError(t, err)
	assert.Equal(t, fromFile, fromPath)

	fromPathDir, err := Path(dir)
	require.NoError(t, err)
	fromDir, err := Dir(dir)
	require.NoError(t, err)
	assert.Equal(t, fromDir, fromPathDir)
}
