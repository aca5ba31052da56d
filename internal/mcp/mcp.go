// Package mcp installs MCP server configurations from the registry into the
// project's .vscode/mcp.json and scaffolds the environment variables those
// servers reference.
package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dj2695/cuco/internal/artifact"
	"github.com/dj2695/cuco/internal/errs"
	"github.com/dj2695/cuco/internal/hash"
	"github.com/dj2695/cuco/internal/project"
	"github.com/dj2695/cuco/internal/tracking"
)

const (
	// ProjectFile is the VS Code MCP configuration, relative to the
	// project root.
	ProjectFile = ".vscode/mcp.json"
	// EnvFile collects the environment variables MCP servers expect.
	EnvFile = ".env"
)

// File is an MCP configuration file: a set of named servers. Server
// configurations are kept opaque so unknown fields survive a round trip.
type File struct {
	Servers map[string]json.RawMessage `json:"servers"`
}

func loadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{Servers: map[string]json.RawMessage{}}, nil
		}
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if f.Servers == nil {
		f.Servers = map[string]json.RawMessage{}
	}
	return &f, nil
}

func saveFile(path string, f *File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// envPattern matches ${env:VARIABLE_NAME} placeholders in a server
// configuration.
var envPattern = regexp.MustCompile(`\$\{env:([A-Z_][A-Z0-9_]*)\}`)

// ExtractEnvVars returns the environment variable names a server
// configuration references, sorted and deduplicated.
func ExtractEnvVars(config json.RawMessage) []string {
	seen := map[string]bool{}
	for _, m := range envPattern.FindAllStringSubmatch(string(config), -1) {
		seen[m[1]] = true
	}
	vars := make([]string, 0, len(seen))
	for v := range seen {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

// Manager adds registry MCP servers to a project. ConfirmOverwrite is
// consulted before replacing an already-configured server; a nil hook skips.
type Manager struct {
	Project *project.Context
	// RegistryFile is the registry's mcp.json.
	RegistryFile     string
	Store            *tracking.Store
	ConfirmOverwrite func(name string) bool
}

// NewManager wires a manager over the project's tracking store.
func NewManager(proj *project.Context, registryFile string) *Manager {
	return &Manager{
		Project:      proj,
		RegistryFile: registryFile,
		Store:        tracking.Open(proj),
	}
}

// ProjectFilePath is where the project's MCP configuration lives.
func (m *Manager) ProjectFilePath() string {
	return filepath.Join(m.Project.RootDir, filepath.FromSlash(ProjectFile))
}

// EnvFilePath is the project's .env file.
func (m *Manager) EnvFilePath() string {
	return filepath.Join(m.Project.RootDir, EnvFile)
}

// ProjectServers lists the server names already configured in the project.
func (m *Manager) ProjectServers() ([]string, error) {
	f, err := loadFile(m.ProjectFilePath())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Servers))
	for name := range f.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// AddResult reports what AddServer did.
type AddResult struct {
	// Skipped is set when the server already existed and the overwrite
	// was declined.
	Skipped bool
	// EnvVars are all variables the server references; NewEnvVars the
	// subset just appended to .env (still without values).
	EnvVars    []string
	NewEnvVars []string
}

// AddServer copies the named server from the registry into the project
// configuration, appends any missing environment variables to .env, and
// records provenance against the registry file's digest.
func (m *Manager) AddServer(name string) (*AddResult, error) {
	reg, err := loadFile(m.RegistryFile)
	if err != nil {
		return nil, err
	}
	cfg, ok := reg.Servers[name]
	if !ok {
		names := make([]string, 0, len(reg.Servers))
		for n := range reg.Servers {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("%w: MCP server %q is not in the registry (available: %s)",
			errs.ErrNotFound, name, strings.Join(names, ", "))
	}

	proj, err := loadFile(m.ProjectFilePath())
	if err != nil {
		return nil, err
	}
	if _, exists := proj.Servers[name]; exists {
		if m.ConfirmOverwrite == nil || !m.ConfirmOverwrite(name) {
			return &AddResult{Skipped: true}, nil
		}
	}

	proj.Servers[name] = cfg
	if err := saveFile(m.ProjectFilePath(), proj); err != nil {
		return nil, err
	}

	result := &AddResult{EnvVars: ExtractEnvVars(cfg)}
	if len(result.EnvVars) > 0 {
		added, err := appendEnvVars(m.EnvFilePath(), result.EnvVars)
		if err != nil {
			return nil, err
		}
		result.NewEnvVars = added
	}

	digest, err := hash.File(m.RegistryFile)
	if err != nil {
		return nil, err
	}
	if err := m.Store.Upsert(artifact.TypeMCP, name, digest, ""); err != nil {
		return nil, err
	}
	log.Debug("added MCP server", "name", name, "env_vars", result.EnvVars)
	return result, nil
}

// appendEnvVars appends the variables missing from the env file, empty and
// sorted under a comment header. Existing lines, including values the user
// already set, are never touched.
func appendEnvVars(path string, vars []string) ([]string, error) {
	existing := map[string]bool{}
	data, err := os.ReadFile(path)
	fileExists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if name, _, ok := strings.Cut(line, "="); ok {
			existing[strings.TrimSpace(name)] = true
		}
	}

	var missing []string
	for _, v := range vars {
		if !existing[v] {
			missing = append(missing, v)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	sort.Strings(missing)

	var b strings.Builder
	if fileExists && len(data) > 0 {
		if !strings.HasSuffix(string(data), "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("# Environment variables for MCP servers\n")
	for _, v := range missing {
		b.WriteString(v + "=\n")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, err := f.WriteString(b.String()); err != nil {
		return nil, err
	}
	return missing, f.Close()
}
