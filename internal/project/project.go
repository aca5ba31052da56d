// Package project models the project a cuco invocation operates on: the
// root directory, the chosen integration engine, and the target directory
// artifacts are installed into. Every operation receives an explicit
// Context instead of deriving paths from the process working directory.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dj2695/cuco/internal/artifact"
)

// TrackingFile is the provenance store filename inside the target directory.
const TrackingFile = ".cuco-tracking.json"

// Engine describes an integration's target folder convention.
type Engine struct {
	Name        string
	Folder      string
	Subdirs     []string
	MainFile    string
	Description string
}

// Engines in detection priority order.
var Engines = []Engine{
	{
		Name:        "github",
		Folder:      ".github",
		Subdirs:     []string{"agents", "prompts", "instructions", "skills"},
		MainFile:    "copilot-instructions.md",
		Description: "GitHub Copilot (default)",
	},
	{
		Name:        "claude",
		Folder:      ".claude",
		Subdirs:     []string{"agents", "prompts", "skills"},
		MainFile:    "instructions.md",
		Description: "Claude Code",
	},
	{
		Name:        "cuco",
		Folder:      ".cuco",
		Subdirs:     []string{"agents", "prompts", "instructions", "skills", "bundles", "mcps"},
		MainFile:    "config.json",
		Description: "Tool-agnostic CUCO format",
	},
}

// EngineByName looks up an engine by its CLI name.
func EngineByName(name string) (Engine, bool) {
	for _, e := range Engines {
		if e.Name == name {
			return e, true
		}
	}
	return Engine{}, false
}

// Context carries the directories an invocation operates on.
type Context struct {
	// RootDir is the project root.
	RootDir string
	// TargetDir is the engine folder inside RootDir (e.g. RootDir/.github).
	TargetDir string
	// Engine is the integration convention TargetDir follows.
	Engine Engine
}

// Detect builds a Context for rootDir by probing engine folders in priority
// order. When none exist yet the default engine is assumed; Initialized
// reports whether the target folder actually exists.
func Detect(rootDir string) *Context {
	for _, e := range Engines {
		dir := filepath.Join(rootDir, e.Folder)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return &Context{RootDir: rootDir, TargetDir: dir, Engine: e}
		}
	}
	e := Engines[0]
	return &Context{RootDir: rootDir, TargetDir: filepath.Join(rootDir, e.Folder), Engine: e}
}

// Initialized reports whether the target directory exists.
func (c *Context) Initialized() bool {
	info, err := os.Stat(c.TargetDir)
	return err == nil && info.IsDir()
}

// TypeDir returns the directory artifacts of the given type live in.
func (c *Context) TypeDir(t artifact.Type) string {
	return filepath.Join(c.TargetDir, t.Dir())
}

// TrackingPath returns the provenance store location.
func (c *Context) TrackingPath() string {
	return filepath.Join(c.TargetDir, TrackingFile)
}

// Init scaffolds the engine folder structure under rootDir and returns the
// resulting context plus the paths it created (relative to rootDir, for
// display). Existing directories and files are left alone.
func Init(rootDir string, engine Engine) (*Context, []string, error) {
	ctx := &Context{
		RootDir:   rootDir,
		TargetDir: filepath.Join(rootDir, engine.Folder),
		Engine:    engine,
	}

	var created []string
	mkdir := func(dir string) error {
		if _, err := os.Stat(dir); err == nil {
			return nil
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		rel, _ := filepath.Rel(rootDir, dir)
		created = append(created, rel+string(filepath.Separator))
		return nil
	}

	if err := mkdir(ctx.TargetDir); err != nil {
		return nil, nil, err
	}
	for _, sub := range engine.Subdirs {
		if err := mkdir(filepath.Join(ctx.TargetDir, sub)); err != nil {
			return nil, nil, err
		}
	}

	mainFile := filepath.Join(ctx.TargetDir, engine.MainFile)
	if _, err := os.Stat(mainFile); os.IsNotExist(err) {
		var content []byte
		if engine.MainFile == "config.json" {
			content, _ = json.MarshalIndent(map[string]any{
				"version": "1.0.0",
				"sources": []any{},
				"integrations": map[string]bool{
					"github": false,
					"claude": false,
				},
			}, "", "  ")
			content = append(content, '\n')
		}
		if err := os.WriteFile(mainFile, content, 0o644); err != nil {
			return nil, nil, fmt.Errorf("failed to create %s: %w", mainFile, err)
		}
		rel, _ := filepath.Rel(rootDir, mainFile)
		created = append(created, rel)
	}

	return ctx, created, nil
}
