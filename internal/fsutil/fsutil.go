// Package fsutil holds the file-copy helpers shared by add, sync, and
// bundle installation.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"
)

// CopyFile copies a single regular file, creating parent directories.
func CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}
	return out.Close()
}

// CopyPath copies src (file or directory) to dst. An existing directory at
// dst is replaced wholesale so removed source files do not linger.
func CopyPath(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return CopyFile(src, dst)
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	if err := cp.Copy(src, dst, cp.Options{
		// Skip VCS metadata when copying out of a cached clone.
		Skip: func(info os.FileInfo, src, dst string) (bool, error) {
			return info.IsDir() && info.Name() == ".git", nil
		},
	}); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
