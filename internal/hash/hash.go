// Package hash computes content digests used for provenance tracking and
// drift detection. Digests are hex-encoded SHA-256.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// File streams a single file through SHA-256 and returns the hex digest.
func File(path string) (string, error) {
	h := sha256.New()
	if err := addFile(h, path); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Dir hashes a directory tree deterministically: all regular files are
// enumerated recursively, sorted by slash-separated path relative to root,
// and for each entry the digest absorbs the relative path string followed by
// the file bytes. Symlinks, empty directories, and permissions do not
// contribute. Two trees with identical relative structure and content hash
// identically regardless of creation or traversal order.
func Dir(root string) (string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(files)

	h := sha256.New()
	for _, rel := range files {
		h.Write([]byte(rel))
		if err := addFile(h, filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Path hashes either a file or a directory depending on what path is.
func Path(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return Dir(path)
	}
	return File(path)
}

func addFile(h io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return nil
}
