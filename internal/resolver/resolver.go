// Package resolver locates artifacts across their possible origins: the
// bundled registry, named custom sources (cached git clones or local
// directories), and direct GitHub URLs. All origins normalize to a Resolved
// path on the local filesystem that callers copy from.
package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dj2695/cuco/internal/artifact"
	"github.com/dj2695/cuco/internal/config"
	"github.com/dj2695/cuco/internal/errs"
	"github.com/dj2695/cuco/internal/repocache"
	"github.com/dj2695/cuco/internal/source"
)

// sourceRoots are the repository layouts recognized inside a custom source,
// in fixed priority order: the traditional customizations folder, the
// alternate dot-folder, the GitHub-standard dot-folder, and the agentskills
// root skills folder.
var sourceRoots = []string{"custom_copilot", ".cuco", ".github", "skills"}

// Resolved is an artifact located on the local filesystem.
type Resolved struct {
	Path  string
	IsDir bool
	// Temp marks Path as a temporary download the caller must remove.
	Temp bool
	// Name is the artifact name implied by the origin (URL resolution);
	// empty when the caller already knows the name.
	Name string
	// Filename is the destination basename for single-file artifacts.
	Filename string
}

// Locator resolves artifacts from all configured origins.
type Locator struct {
	// RegistryDir is the bundled registry root (one subdirectory per type).
	RegistryDir string

	Cache    *repocache.Cache
	Download *repocache.Downloader
}

// New returns a locator over the given registry root using the default
// repository cache.
func New(registryDir string) *Locator {
	cache := repocache.New()
	return &Locator{
		RegistryDir: registryDir,
		Cache:       cache,
		Download:    repocache.NewDownloader(cache),
	}
}

// ResolveIn probes the candidate names for an artifact inside dir and
// returns the first hit: exact-name directory first, then the single-file
// suffix conventions.
func ResolveIn(dir, name string) (*Resolved, bool) {
	for _, candidate := range artifact.CandidateNames(name) {
		path := filepath.Join(dir, candidate)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		return &Resolved{
			Path:     path,
			IsDir:    info.IsDir(),
			Filename: candidate,
		}, true
	}
	return nil, false
}

// ResolveRegistry locates a bundled-registry artifact.
func (l *Locator) ResolveRegistry(t artifact.Type, name string) (*Resolved, error) {
	if r, ok := ResolveIn(filepath.Join(l.RegistryDir, t.Dir()), name); ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s %q is not in the registry", errs.ErrNotFound, t, name)
}

// SourceRoot ensures the source is available locally and returns its
// resolution root: the first recognized top-level folder. A source with
// none of the recognized layouts is a hard error.
func (l *Locator) SourceRoot(ctx context.Context, src config.Source) (string, error) {
	var repoDir string
	switch src.Kind {
	case config.SourceLocal:
		repoDir = src.URL
	case config.SourceGit:
		dir, err := l.Cache.EnsureCloned(ctx, src.Name, src.URL)
		if err != nil {
			return "", err
		}
		repoDir = dir
	default:
		return "", fmt.Errorf("%w: source %q has unknown kind %q", errs.ErrInvalidReference, src.Name, src.Kind)
	}

	for _, root := range sourceRoots {
		candidate := filepath.Join(repoDir, root)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: source %q has no recognized layout (expected one of: %s)",
		errs.ErrInvalidReference, src.Name, strings.Join(sourceRoots, ", "))
}

// ResolveSource locates an artifact inside a named custom source. Under the
// agentskills skills/ root, skill names resolve directly; under the other
// layouts artifacts live in per-type subdirectories.
func (l *Locator) ResolveSource(ctx context.Context, src config.Source, t artifact.Type, name string) (*Resolved, error) {
	root, err := l.SourceRoot(ctx, src)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(root, t.Dir())
	if filepath.Base(root) == "skills" {
		if t != artifact.TypeSkill {
			return nil, fmt.Errorf("%w: source %q only provides skills", errs.ErrNotFound, src.Name)
		}
		dir = root
	}

	if r, ok := ResolveIn(dir, name); ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s %q is not in source %q", errs.ErrNotFound, t, name, src.Name)
}

// ResolvePathInSource resolves a source-relative path, used by bundle
// manifests that pin exact files inside a named source.
func (l *Locator) ResolvePathInSource(ctx context.Context, src config.Source, rel string) (*Resolved, error) {
	root, err := l.SourceRoot(ctx, src)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not in source %q", errs.ErrNotFound, rel, src.Name)
	}
	return &Resolved{Path: path, IsDir: info.IsDir(), Filename: filepath.Base(path)}, nil
}

// ResolveURL locates an artifact referenced by a GitHub URL. Single-file
// references download just that file; anything else clones the repository
// and resolves the path inside it.
func (l *Locator) ResolveURL(ctx context.Context, rawURL string, t artifact.Type) (*Resolved, error) {
	ref, err := source.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	if ref.Path != "" && artifact.HasFileSuffix(ref.Path) {
		log.Debug("downloading file", "repo", ref.Owner+"/"+ref.Repo, "path", ref.Path)
		tmp, err := l.Download.DownloadFile(ctx, ref.Owner, ref.Repo, ref.Path, ref.Ref)
		if err != nil {
			return nil, err
		}
		return &Resolved{
			Path:     tmp,
			Temp:     true,
			Name:     nameFromPath(ref.Path),
			Filename: filepath.Base(ref.Path),
		}, nil
	}

	repoDir, err := l.Cache.EnsureCloned(ctx, ref.CacheName(), ref.CloneURL())
	if err != nil {
		return nil, err
	}

	if ref.Path != "" {
		path := filepath.Join(repoDir, filepath.FromSlash(ref.Path))
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%w: path %q is not in %s/%s", errs.ErrNotFound, ref.Path, ref.Owner, ref.Repo)
		}
		return &Resolved{
			Path:     path,
			IsDir:    info.IsDir(),
			Name:     artifact.TrimSuffixes(filepath.Base(path)),
			Filename: filepath.Base(path),
		}, nil
	}

	return l.detectSkillLayout(repoDir, rawURL, t)
}

// detectSkillLayout handles a bare repository URL by looking for the
// agentskills convention: a root skills/ folder whose subdirectories carry
// a SKILL.md. Exactly one candidate resolves; several require the caller to
// disambiguate.
func (l *Locator) detectSkillLayout(repoDir, rawURL string, t artifact.Type) (*Resolved, error) {
	skillsDir := filepath.Join(repoDir, "skills")
	if t != artifact.TypeSkill {
		return nil, fmt.Errorf("%w: could not auto-detect repository structure; provide a specific path", errs.ErrNotFound)
	}

	items, err := os.ReadDir(skillsDir)
	if err != nil {
		return nil, fmt.Errorf("%w: repository has no skills/ folder; provide a specific path", errs.ErrNotFound)
	}

	var candidates []string
	for _, item := range items {
		if !item.IsDir() {
			continue
		}
		if fsExists(filepath.Join(skillsDir, item.Name(), artifact.SkillFilename)) {
			candidates = append(candidates, item.Name())
		}
	}

	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("%w: no skills with %s found in repository", errs.ErrNotFound, artifact.SkillFilename)
	case 1:
		path := filepath.Join(skillsDir, candidates[0])
		return &Resolved{Path: path, IsDir: true, Name: candidates[0], Filename: candidates[0]}, nil
	default:
		return nil, fmt.Errorf("%w: repository contains multiple skills (%s); specify one, e.g. %s/skills/%s",
			errs.ErrInvalidReference, strings.Join(candidates, ", "),
			strings.TrimSuffix(rawURL, "/"), candidates[0])
	}
}

// nameFromPath derives an artifact name from a downloaded file path: a
// SKILL.md takes its parent directory's name, anything else its basename
// with the suffix conventions stripped.
func nameFromPath(path string) string {
	base := filepath.Base(path)
	if strings.EqualFold(base, artifact.SkillFilename) {
		if parent := filepath.Base(filepath.Dir(path)); parent != "." && parent != "/" {
			return parent
		}
	}
	return artifact.TrimSuffixes(base)
}

func fsExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
