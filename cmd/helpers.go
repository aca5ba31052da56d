package cmd

import (
	"fmt"
	"os"

	"github.com/dj2695/cuco/internal/config"
	"github.com/dj2695/cuco/internal/project"
	"github.com/dj2695/cuco/internal/registry"
	"github.com/dj2695/cuco/internal/resolver"
)

// currentProject detects the project rooted at the working directory.
func currentProject() *project.Context {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(fmt.Sprintf("failed to get current directory: %v", err))
	}
	return project.Detect(cwd)
}

// requireInitialized is currentProject plus a check that the engine folder
// exists; commands that install into the project all need it.
func requireInitialized() *project.Context {
	proj := currentProject()
	if !proj.Initialized() {
		exitWithError(fmt.Sprintf("%s/ not found\nRun 'cuco init' first to initialize the structure", proj.Engine.Folder))
	}
	return proj
}

// openRegistry materializes the bundled registry and returns it with a
// locator rooted at it.
func openRegistry() (*registry.Registry, *resolver.Locator) {
	reg, err := registry.Open()
	if err != nil {
		exitWithError(fmt.Sprintf("failed to prepare registry: %v", err))
	}
	return reg, resolver.New(reg.Dir())
}

// openConfig resolves the source configuration for the project (local
// override file, else the per-user config).
func openConfig(proj *project.Context) *config.Store {
	cfg, err := config.Resolve(proj.RootDir)
	if err != nil {
		exitWithError(err.Error())
	}
	return cfg
}
