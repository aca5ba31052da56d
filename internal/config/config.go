// Package config manages the user's configured artifact sources: named git
// repositories (or local paths) consulted beyond the bundled registry.
//
// Resolution order for the backing file:
//  1. .cuco-config.json in the project root (local override)
//  2. $XDG_CONFIG_HOME/cuco/config.json (per-user)
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// LocalConfigFile is the project-local override filename.
const LocalConfigFile = ".cuco-config.json"

// SourceKind distinguishes git repositories from plain local directories.
type SourceKind string

const (
	SourceGit   SourceKind = "git"
	SourceLocal SourceKind = "local"
)

// Source is a configured external origin for artifacts.
type Source struct {
	Name string     `json:"name"`
	Kind SourceKind `json:"type"`
	URL  string     `json:"url"`
}

type fileFormat struct {
	Sources []Source `json:"sources"`
}

// Store reads and writes the source configuration file.
type Store struct {
	path string
}

// Resolve picks the configuration file for a project rooted at rootDir:
// the local override when present, the per-user file otherwise.
func Resolve(rootDir string) (*Store, error) {
	local := filepath.Join(rootDir, LocalConfigFile)
	if _, err := os.Stat(local); err == nil {
		return &Store{path: local}, nil
	}
	user, err := xdg.ConfigFile(filepath.Join("cuco", "config.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user config path: %w", err)
	}
	return &Store{path: user}, nil
}

// OpenPath returns a store backed by an explicit file path.
func OpenPath(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file location, for display.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() (*fileFormat, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileFormat{}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", s.path, err)
	}
	return &f, nil
}

func (s *Store) save(f *fileFormat) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, append(data, '\n'), 0o644)
}

// Sources returns all configured sources.
func (s *Store) Sources() ([]Source, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	return f.Sources, nil
}

// Get looks up a source by name.
func (s *Store) Get(name string) (Source, bool, error) {
	f, err := s.load()
	if err != nil {
		return Source{}, false, err
	}
	for _, src := range f.Sources {
		if src.Name == name {
			return src, true, nil
		}
	}
	return Source{}, false, nil
}

// Add upserts a source by name. Returns true when an existing entry was
// updated rather than appended.
func (s *Store) Add(src Source) (bool, error) {
	f, err := s.load()
	if err != nil {
		return false, err
	}
	for i := range f.Sources {
		if f.Sources[i].Name == src.Name {
			f.Sources[i] = src
			return true, s.save(f)
		}
	}
	f.Sources = append(f.Sources, src)
	return false, s.save(f)
}

// Remove deletes a source by name. Returns false when no such source exists.
func (s *Store) Remove(name string) (bool, error) {
	f, err := s.load()
	if err != nil {
		return false, err
	}
	kept := f.Sources[:0]
	removed := false
	for _, src := range f.Sources {
		if src.Name == name {
			removed = true
			continue
		}
		kept = append(kept, src)
	}
	if !removed {
		return false, nil
	}
	f.Sources = kept
	return true, s.save(f)
}
