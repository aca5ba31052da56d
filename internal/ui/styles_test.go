package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// forceNonTTY pins IsTTY to false for the duration of a test so output is
// deterministic regardless of where the suite runs.
func forceNonTTY(t *testing.T) {
	t.Helper()
	old := IsTTY
	IsTTY = false
	t.Cleanup(func() { IsTTY = old })
}

func TestStatusLinesPlain(t *testing.T) {
	forceNonTTY(t)

	assert.Equal(t, "  OK: installed", SuccessLine("installed"))
	assert.Equal(t, "  ERROR: broken", ErrorLine("broken"))
	assert.Equal(t, "  WARN: careful", WarningLine("careful"))
	assert.Equal(t, "  resolved from source", InfoLine("resolved from source"))
}

func TestRenderPlain(t *testing.T) {
	forceNonTTY(t)

	assert.Equal(t, "cuco sync", Render(Code, "cuco sync"))
	assert.Equal(t, "heads up", Render(Info, "heads up"))
}

func TestTableRowsPlain(t *testing.T) {
	forceNonTTY(t)

	assert.Equal(t, "NAME  TYPE  URL", TableHeader("NAME", "TYPE", "URL"))
	assert.Equal(t, "team  git  https://example.com", TableRow("team", "git", "https://example.com"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exactly-10", Truncate("exactly-10", 10))
	assert.Equal(t, "a long ...", Truncate("a long description", 10))
}

func TestTerminalWidthFallsBackTo80(t *testing.T) {
	// Test runs are not attached to a terminal, so the size query fails
	// and the default applies.
	assert.Equal(t, 80, TerminalWidth())
}

func TestConfirmDefaultsToNoWithoutTerminal(t *testing.T) {
	forceNonTTY(t)

	assert.False(t, Confirm("overwrite?"))
}

func TestChooseDefaultsWithoutTerminal(t *testing.T) {
	forceNonTTY(t)

	assert.Equal(t, 1, Choose("how?", []string{"overwrite", "keep", "abort"}, 1))
}
