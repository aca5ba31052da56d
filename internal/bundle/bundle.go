// Package bundle installs pre-assembled sets of customizations described by
// a bundle.json manifest. Each dependency names its own origin kind, so one
// bundle can mix files shipped inside it, registry references, named custom
// sources, GitHub URLs, and agentskills repositories.
package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/dj2695/cuco/internal/artifact"
	"github.com/dj2695/cuco/internal/config"
	"github.com/dj2695/cuco/internal/errs"
	"github.com/dj2695/cuco/internal/fsutil"
	"github.com/dj2695/cuco/internal/hash"
	"github.com/dj2695/cuco/internal/project"
	"github.com/dj2695/cuco/internal/resolver"
	"github.com/dj2695/cuco/internal/source"
	"github.com/dj2695/cuco/internal/tracking"
)

// ManifestFilename is the manifest file inside a bundle directory.
const ManifestFilename = "bundle.json"

// DefaultSkillsOwner owns the canonical agentskills repositories.
const DefaultSkillsOwner = "anthropics"

// Resource kinds. "inline" and "reference" are accepted as deprecated
// aliases of "bundle" and "custom-copilot".
const (
	KindBundled     = "bundle"
	KindRegistry    = "custom-copilot"
	KindCustom      = "custom"
	KindGitHub      = "github"
	KindAgentSkills = "agentskills"
)

// Resource is one dependency in a bundle manifest. Which fields are
// meaningful depends on Kind: Path for bundled files, Source for registry
// references, SourceName+Source for custom sources, URL for GitHub, and
// Repo+Skill for agentskills.
type Resource struct {
	Kind       string `json:"type"`
	Name       string `json:"name"`
	Path       string `json:"path,omitempty"`
	Source     string `json:"source,omitempty"`
	SourceName string `json:"source_name,omitempty"`
	URL        string `json:"url,omitempty"`
	Repo       string `json:"repo,omitempty"`
	Skill      string `json:"skill,omitempty"`
}

// UnmarshalJSON canonicalizes deprecated kind aliases and rejects unknown
// kinds at decode time, before any installation starts.
func (r *Resource) UnmarshalJSON(data []byte) error {
	type plain Resource
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	switch p.Kind {
	case "inline":
		log.Warn("resource kind 'inline' is deprecated, use 'bundle'", "resource", p.Name)
		p.Kind = KindBundled
	case "reference":
		log.Warn("resource kind 'reference' is deprecated, use 'custom-copilot'", "resource", p.Name)
		p.Kind = KindRegistry
	case KindBundled, KindRegistry, KindCustom, KindGitHub, KindAgentSkills:
	default:
		return fmt.Errorf("%w: resource %q has unknown kind %q", errs.ErrInvalidReference, p.Name, p.Kind)
	}
	*r = Resource(p)
	return nil
}

// InstructionsRef points at the bundle's main instructions file. Only the
// "inline" type exists today: a path inside the bundle directory.
type InstructionsRef struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// Dependencies groups a manifest's resources by artifact type.
type Dependencies struct {
	Agents       []Resource `json:"agents,omitempty"`
	Prompts      []Resource `json:"prompts,omitempty"`
	Skills       []Resource `json:"skills,omitempty"`
	Instructions []Resource `json:"instructions,omitempty"`
}

// Manifest is the parsed bundle.json.
type Manifest struct {
	Name                string           `json:"name"`
	Version             string           `json:"version"`
	Description         string           `json:"description"`
	CopilotInstructions *InstructionsRef `json:"copilotInstructions,omitempty"`
	Dependencies        Dependencies     `json:"dependencies"`
}

// Load reads and validates the manifest inside bundleDir.
func Load(bundleDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(bundleDir, ManifestFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no %s in %s", errs.ErrNotFound, ManifestFilename, bundleDir)
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid bundle manifest in %s: %w", bundleDir, err)
	}
	return &m, nil
}

// ResourceResult reports one dependency's installation outcome.
type ResourceResult struct {
	Type     artifact.Type
	Resource Resource
	Err      error
}

// Installer installs bundles into a project. ConfirmOverwrite is consulted
// before replacing the project's main instructions file; a nil hook skips.
type Installer struct {
	Project          *project.Context
	Locator          *resolver.Locator
	Store            *tracking.Store
	Config           *config.Store
	ConfirmOverwrite func(path string) bool
}

// NewInstaller wires an installer over the project's tracking and source
// configuration stores.
func NewInstaller(proj *project.Context, loc *resolver.Locator, cfg *config.Store) *Installer {
	return &Installer{
		Project: proj,
		Locator: loc,
		Store:   tracking.Open(proj),
		Config:  cfg,
	}
}

// Install installs the named registry bundle. Individual dependency
// failures do not stop the rest of the bundle; they come back in the
// results. The top-level error covers manifest problems only.
func (i *Installer) Install(ctx context.Context, name string) (*Manifest, []ResourceResult, error) {
	bundleDir := filepath.Join(i.Locator.RegistryDir, artifact.TypeBundle.Dir(), name)
	manifest, err := Load(bundleDir)
	if err != nil {
		return nil, nil, err
	}

	if err := i.installInstructions(bundleDir, manifest); err != nil {
		return manifest, nil, err
	}

	var results []ResourceResult
	sections := []struct {
		t         artifact.Type
		resources []Resource
	}{
		{artifact.TypeAgent, manifest.Dependencies.Agents},
		{artifact.TypePrompt, manifest.Dependencies.Prompts},
		{artifact.TypeSkill, manifest.Dependencies.Skills},
		{artifact.TypeInstructions, manifest.Dependencies.Instructions},
	}
	for _, section := range sections {
		for _, res := range section.resources {
			err := i.installResource(ctx, bundleDir, section.t, res)
			if err != nil {
				log.Warn("failed to install bundle resource",
					"bundle", name, "resource", res.Name, "err", err)
			}
			results = append(results, ResourceResult{Type: section.t, Resource: res, Err: err})
		}
	}
	return manifest, results, nil
}

// installInstructions places the bundle's main instructions file at the
// engine's conventional location, asking before overwriting.
func (i *Installer) installInstructions(bundleDir string, m *Manifest) error {
	instr := m.CopilotInstructions
	if instr == nil || instr.Type != "inline" {
		return nil
	}
	src := filepath.Join(bundleDir, filepath.FromSlash(instr.Path))
	if !fsutil.Exists(src) {
		return fmt.Errorf("%w: bundle instructions file %q is missing", errs.ErrNotFound, instr.Path)
	}
	dst := filepath.Join(i.Project.TargetDir, i.Project.Engine.MainFile)
	if fsutil.Exists(dst) {
		if i.ConfirmOverwrite == nil || !i.ConfirmOverwrite(dst) {
			log.Info("keeping existing instructions file", "path", i.Project.Engine.MainFile)
			return nil
		}
	}
	return fsutil.CopyFile(src, dst)
}

// installResource resolves one dependency to a local path and copies it into
// the project, recording provenance so sync can reason about it later.
func (i *Installer) installResource(ctx context.Context, bundleDir string, t artifact.Type, res Resource) error {
	if res.Name == "" && res.Kind != KindAgentSkills {
		return fmt.Errorf("%w: resource without a name", errs.ErrInvalidReference)
	}

	resolved, err := i.resolve(ctx, bundleDir, t, res)
	if err != nil {
		return err
	}
	if resolved.Temp {
		defer os.Remove(resolved.Path)
	}

	name := res.Name
	if resolved.Name != "" {
		name = resolved.Name
	}

	dst := filepath.Join(i.Project.TypeDir(t), resolved.Filename)
	if resolved.IsDir {
		dst = filepath.Join(i.Project.TypeDir(t), name)
	}
	if err := fsutil.CopyPath(resolved.Path, dst); err != nil {
		return err
	}

	digest, err := hash.Path(dst)
	if err != nil {
		return err
	}
	return i.Store.Upsert(t, name, digest, "")
}

func (i *Installer) resolve(ctx context.Context, bundleDir string, t artifact.Type, res Resource) (*resolver.Resolved, error) {
	switch res.Kind {
	case KindBundled:
		if res.Path == "" {
			return nil, fmt.Errorf("%w: 'bundle' resource %q needs a path", errs.ErrInvalidReference, res.Name)
		}
		return statResolved(filepath.Join(bundleDir, filepath.FromSlash(res.Path)))

	case KindRegistry:
		if res.Source == "" {
			return nil, fmt.Errorf("%w: 'custom-copilot' resource %q needs a source path", errs.ErrInvalidReference, res.Name)
		}
		return statResolved(filepath.Join(i.Locator.RegistryDir, filepath.FromSlash(res.Source)))

	case KindCustom:
		if res.SourceName == "" || res.Source == "" {
			return nil, fmt.Errorf("%w: 'custom' resource %q needs source_name and source", errs.ErrInvalidReference, res.Name)
		}
		src, ok, err := i.Config.Get(res.SourceName)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: source %q is not configured", errs.ErrNotFound, res.SourceName)
		}
		return i.Locator.ResolvePathInSource(ctx, src, res.Source)

	case KindGitHub:
		if res.URL == "" {
			return nil, fmt.Errorf("%w: 'github' resource %q needs a url", errs.ErrInvalidReference, res.Name)
		}
		return i.Locator.ResolveURL(ctx, res.URL, t)

	case KindAgentSkills:
		return i.resolveAgentSkill(ctx, res)

	default:
		// Load canonicalizes kinds; reaching here means the resource was
		// built in code with a bad kind.
		return nil, fmt.Errorf("%w: unknown resource kind %q", errs.ErrInvalidReference, res.Kind)
	}
}

// resolveAgentSkill clones an agentskills-convention repository and picks
// the named skill out of its skills/ folder.
func (i *Installer) resolveAgentSkill(ctx context.Context, res Resource) (*resolver.Resolved, error) {
	repoRef := res.Repo
	if repoRef == "" {
		repoRef = DefaultSkillsOwner + "/skills"
	}
	skillName := res.Skill
	if skillName == "" {
		skillName = res.Name
	}
	if skillName == "" {
		return nil, fmt.Errorf("%w: 'agentskills' resource needs a skill or name", errs.ErrInvalidReference)
	}

	ref, err := source.ParseRepoShorthand(repoRef, DefaultSkillsOwner)
	if err != nil {
		return nil, err
	}
	repoDir, err := i.Locator.Cache.EnsureCloned(ctx, ref.CacheName(), ref.CloneURL())
	if err != nil {
		return nil, err
	}

	skillDir := filepath.Join(repoDir, "skills", skillName)
	if !fsutil.Exists(filepath.Join(skillDir, artifact.SkillFilename)) {
		return nil, fmt.Errorf("%w: skill %q is not in %s", errs.ErrNotFound, skillName, repoRef)
	}
	return &resolver.Resolved{Path: skillDir, IsDir: true, Name: skillName, Filename: skillName}, nil
}

func statResolved(path string) (*resolver.Resolved, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, path)
	}
	return &resolver.Resolved{Path: path, IsDir: info.IsDir(), Filename: filepath.Base(path)}, nil
}
