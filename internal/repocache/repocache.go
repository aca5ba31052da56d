// Package repocache maintains per-user working clones of configured git
// sources and downloads individual raw files from GitHub. Each named source
// maps to exactly one directory under the cache root; clones are created
// lazily and refreshed with a pull on every subsequent resolution.
package repocache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/dj2695/cuco/internal/errs"
	"github.com/dj2695/cuco/internal/ghclient"
)

const (
	// CloneTimeout bounds the initial clone of a source.
	CloneTimeout = 2 * time.Minute
	// PullTimeout bounds the refresh of an existing clone.
	PullTimeout = 30 * time.Second
)

// Cache clones and updates source repositories under a fixed root.
type Cache struct {
	// Root is the directory holding one clone per source name.
	Root string

	gh *ghclient.Client
}

// New returns a cache rooted at $XDG_CACHE_HOME/cuco/repos.
func New() *Cache {
	return &Cache{
		Root: filepath.Join(xdg.CacheHome, "cuco", "repos"),
		gh:   ghclient.New(),
	}
}

// NewAt returns a cache rooted at an explicit directory.
func NewAt(root string) *Cache {
	return &Cache{Root: root, gh: ghclient.New()}
}

// Dir returns the cache directory a source name maps to.
func (c *Cache) Dir(name string) string {
	return filepath.Join(c.Root, name)
}

// EnsureCloned guarantees a usable working clone for the named source and
// returns its path. The first call clones (bounded by CloneTimeout); later
// calls pull (bounded by PullTimeout) and tolerate pull failure by falling
// back to the existing copy — stale-but-usable beats unusable.
func (c *Cache) EnsureCloned(ctx context.Context, name, url string) (string, error) {
	dir := c.Dir(name)

	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		if err := c.pull(ctx, dir); err != nil {
			log.Warn("failed to update cached repository, using existing copy",
				"source", name, "err", err)
		}
		return dir, nil
	}

	if err := os.MkdirAll(c.Root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache root: %w", err)
	}

	log.Debug("cloning repository", "source", name, "url", url)
	cloneCtx, cancel := context.WithTimeout(ctx, CloneTimeout)
	defer cancel()

	_, err := git.PlainCloneContext(cloneCtx, dir, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	if err != nil {
		// A failed clone leaves a partial directory behind; remove it so
		// the next attempt starts clean.
		os.RemoveAll(dir)
		return "", cloneError(name, url, err)
	}
	return dir, nil
}

func (c *Cache) pull(ctx context.Context, dir string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}

	pullCtx, cancel := context.WithTimeout(ctx, PullTimeout)
	defer cancel()

	err = wt.PullContext(pullCtx, &git.PullOptions{Force: true})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

// cloneError classifies a clone failure into an actionable message.
func cloneError(name, url string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: cloning %q timed out after %s (%s)",
			errs.ErrSourceUnavailable, name, CloneTimeout, url)
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed):
		return fmt.Errorf("%w: authentication failed for %q (%s); "+
			"for private repositories configure git credentials or an SSH key",
			errs.ErrSourceUnavailable, name, url)
	case errors.Is(err, transport.ErrRepositoryNotFound):
		return fmt.Errorf("%w: repository not found: %s", errs.ErrSourceUnavailable, url)
	default:
		return fmt.Errorf("%w: failed to clone %q (%s): %v",
			errs.ErrSourceUnavailable, name, url, err)
	}
}
