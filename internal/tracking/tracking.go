// Package tracking persists provenance records for installed artifacts.
// Each record remembers the digest of the artifact content at the moment it
// was last pulled from its source; comparing that against the current
// on-disk digest is how sync detects local drift.
package tracking

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dj2695/cuco/internal/artifact"
	"github.com/dj2695/cuco/internal/project"
)

// DefaultVersion is recorded when no explicit version is known.
const DefaultVersion = "latest"

// Record links a local artifact to the hash of its origin content.
type Record struct {
	Type       artifact.Type `json:"type"`
	Name       string        `json:"name"`
	SourceHash string        `json:"source_hash"`
	Version    string        `json:"version"`
	FromSource bool          `json:"from_registry"`
}

// Key returns the record's identity key.
func (r Record) Key() string {
	return artifact.Key(r.Type, r.Name)
}

type fileFormat struct {
	Artifacts map[string]Record `json:"artifacts"`
}

// Store reads and writes the tracking file inside a project's target
// directory. Every mutation loads the whole file, changes it in memory, and
// writes it back; the file is created lazily on first write.
type Store struct {
	path string
}

// Open returns a store for the project's tracking file.
func Open(ctx *project.Context) *Store {
	return &Store{path: ctx.TrackingPath()}
}

// OpenPath returns a store backed by an explicit file path.
func OpenPath(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() (*fileFormat, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileFormat{Artifacts: map[string]Record{}}, nil
		}
		return nil, fmt.Errorf("failed to read tracking file: %w", err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse tracking file %s: %w", s.path, err)
	}
	if f.Artifacts == nil {
		f.Artifacts = map[string]Record{}
	}
	return &f, nil
}

func (s *Store) save(f *fileFormat) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create tracking dir: %w", err)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, append(data, '\n'), 0o644)
}

// Upsert records (or re-records) an artifact as originating from a managed
// source. Idempotent: repeating the same arguments leaves the serialized
// state unchanged.
func (s *Store) Upsert(t artifact.Type, name, sourceHash, version string) error {
	if version == "" {
		version = DefaultVersion
	}
	f, err := s.load()
	if err != nil {
		return err
	}
	f.Artifacts[artifact.Key(t, name)] = Record{
		Type:       t,
		Name:       name,
		SourceHash: sourceHash,
		Version:    version,
		FromSource: true,
	}
	return s.save(f)
}

// Get looks up a record. The second return value reports presence.
func (s *Store) Get(t artifact.Type, name string) (Record, bool, error) {
	f, err := s.load()
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := f.Artifacts[artifact.Key(t, name)]
	return rec, ok, nil
}

// FindByName returns all records with the given name, regardless of type.
func (s *Store) FindByName(name string) ([]Record, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	var matches []Record
	for _, rec := range all {
		if rec.Name == name {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

// All returns every record sorted by identity key, so batch operations
// process deterministically.
func (s *Store) All() ([]Record, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(f.Artifacts))
	for _, rec := range f.Artifacts {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key() < records[j].Key()
	})
	return records, nil
}
