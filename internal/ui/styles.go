package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// IsTTY indicates whether stdout is an interactive terminal.
// When false, UI functions produce plain text without colors or decorations.
var IsTTY = term.IsTerminal(os.Stdout.Fd())

// Color palette.
var (
	Teal     = lipgloss.Color("#2DD4BF")
	Blue     = lipgloss.Color("#60A5FA")
	Green    = lipgloss.Color("#4ADE80")
	Amber    = lipgloss.Color("#FBBF24")
	Red      = lipgloss.Color("#F87171")
	Magenta  = lipgloss.Color("#E879F9")
	White    = lipgloss.Color("#F8FAFC")
	Gray     = lipgloss.Color("#94A3B8")
	DarkGray = lipgloss.Color("#64748B")
)

// Text styles.
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	Success = lipgloss.NewStyle().
		Foreground(Green)

	Error = lipgloss.NewStyle().
		Foreground(Red).
		Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(Amber)

	Info = lipgloss.NewStyle().
		Foreground(Blue)

	Muted = lipgloss.NewStyle().
		Foreground(Gray)

	Highlight = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	// Code/command style
	Code = lipgloss.NewStyle().
		Foreground(Magenta)
)

// SuccessLine creates a success status line
func SuccessLine(message string) string {
	if !IsTTY {
		return fmt.Sprintf("  OK: %s", message)
	}
	return statusLine("✓", message, Green)
}

// ErrorLine creates an error status line
func ErrorLine(message string) string {
	if !IsTTY {
		return fmt.Sprintf("  ERROR: %s", message)
	}
	return statusLine("✗", message, Red)
}

// WarningLine creates a warning status line
func WarningLine(message string) string {
	if !IsTTY {
		return fmt.Sprintf("  WARN: %s", message)
	}
	return statusLine("!", message, Amber)
}

// InfoLine creates an info status line
func InfoLine(message string) string {
	if !IsTTY {
		return fmt.Sprintf("  %s", message)
	}
	return statusLine("→", message, Blue)
}

func statusLine(icon, message string, color lipgloss.Color) string {
	iconStyled := lipgloss.NewStyle().Foreground(color).Render(icon)
	return fmt.Sprintf("  %s %s", iconStyled, message)
}

// Render applies a lipgloss style to text, returning plain text in non-TTY
// environments.
func Render(style lipgloss.Style, text string) string {
	if !IsTTY {
		return text
	}
	return style.Render(text)
}

// TableHeader creates a styled table header
func TableHeader(columns ...string) string {
	var cells []string
	for _, col := range columns {
		cells = append(cells, Render(lipgloss.NewStyle().Foreground(Teal).Bold(true), col))
	}
	return strings.Join(cells, "  ")
}

// TableRow creates a styled table row
func TableRow(columns ...string) string {
	var cells []string
	for i, col := range columns {
		style := lipgloss.NewStyle().Foreground(White)
		if i > 0 {
			style = style.Foreground(Gray)
		}
		cells = append(cells, Render(style, col))
	}
	return strings.Join(cells, "  ")
}

// Truncate truncates text to max length with ellipsis
func Truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max-3] + "..."
}

// TerminalWidth returns the current terminal width, defaulting to 80 if unknown
func TerminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
