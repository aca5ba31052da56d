// Package registry exposes the bundled artifact registry. The registry
// ships inside the binary as an embedded filesystem and is materialized to
// a per-user data directory on first use, so resolution, hashing, and
// copying all operate on ordinary file paths.
package registry

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/dj2695/cuco/internal/artifact"
)

//go:embed all:data
var data embed.FS

// dataVersion stamps the materialized tree; bump when the embedded
// registry content changes.
const dataVersion = "1"

// Registry is the on-disk view of the bundled registry.
type Registry struct {
	dir string
}

// Open materializes the embedded registry under $XDG_DATA_HOME/cuco/registry
// (once per dataVersion) and returns it.
func Open() (*Registry, error) {
	root := filepath.Join(xdg.DataHome, "cuco", "registry")
	return openAt(root)
}

// openAt materializes into an explicit root; split out for tests.
func openAt(root string) (*Registry, error) {
	stamp := filepath.Join(root, ".version")
	if b, err := os.ReadFile(stamp); err == nil && strings.TrimSpace(string(b)) == dataVersion {
		return &Registry{dir: root}, nil
	}

	if err := os.RemoveAll(root); err != nil {
		return nil, fmt.Errorf("failed to refresh registry dir: %w", err)
	}

	err := fs.WalkDir(data, "data", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(path, "data")
		dst := filepath.Join(root, filepath.FromSlash(rel))
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		content, err := data.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, content, 0o644)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to materialize registry: %w", err)
	}

	if err := os.WriteFile(stamp, []byte(dataVersion+"\n"), 0o644); err != nil {
		return nil, err
	}
	return &Registry{dir: root}, nil
}

// Dir returns the registry root on disk.
func (r *Registry) Dir() string {
	return r.dir
}

// TypeDir returns the registry directory for an artifact type.
func (r *Registry) TypeDir(t artifact.Type) string {
	return filepath.Join(r.dir, t.Dir())
}

// MCPFile returns the MCP server registry file.
func (r *Registry) MCPFile() string {
	return filepath.Join(r.dir, "mcps", "mcp.json")
}

// TemplatesDir returns the resource templates directory.
func (r *Registry) TemplatesDir() string {
	return filepath.Join(r.dir, "templates")
}

// Entry is a listable registry artifact.
type Entry struct {
	Name        string
	Description string
}

// List enumerates artifacts of the given type, sorted by name. Directories
// list as-is; files have the suffix conventions stripped. Skill and bundle
// descriptions are read from SKILL.md frontmatter and bundle.json
// respectively when present.
func (r *Registry) List(t artifact.Type) ([]Entry, error) {
	if t == artifact.TypeMCP {
		return r.listMCP()
	}

	items, err := os.ReadDir(r.TypeDir(t))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	seen := map[string]bool{}
	var entries []Entry
	for _, item := range items {
		name := item.Name()
		desc := ""
		if item.IsDir() {
			switch t {
			case artifact.TypeSkill:
				desc = skillDescription(filepath.Join(r.TypeDir(t), name, artifact.SkillFilename))
			case artifact.TypeBundle:
				desc = bundleDescription(filepath.Join(r.TypeDir(t), name, "bundle.json"))
			}
		} else {
			name = artifact.TrimSuffixes(name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, Entry{Name: name, Description: desc})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (r *Registry) listMCP() ([]Entry, error) {
	data, err := os.ReadFile(r.MCPFile())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var reg struct {
		Servers map[string]json.RawMessage `json:"servers"`
	}
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse MCP registry: %w", err)
	}
	var entries []Entry
	for name := range reg.Servers {
		entries = append(entries, Entry{Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// skillFrontmatter is the subset of SKILL.md frontmatter the listing shows.
type skillFrontmatter struct {
	Description string `yaml:"description"`
}

func skillDescription(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	text := string(content)
	if !strings.HasPrefix(text, "---") {
		return ""
	}
	rest := text[3:]
	idx := strings.Index(rest, "\n---")
	if idx == -1 {
		return ""
	}
	var fm skillFrontmatter
	if err := yaml.Unmarshal([]byte(rest[:idx]), &fm); err != nil {
		return ""
	}
	return fm.Description
}

func bundleDescription(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var manifest struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(content, &manifest); err != nil {
		return ""
	}
	return manifest.Description
}
