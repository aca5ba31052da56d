// Package source parses GitHub references into their owner, repository,
// ref, and path components. Both the hosted web UI (github.com/...) and the
// raw-content host (raw.githubusercontent.com/...) are understood.
package source

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dj2695/cuco/internal/errs"
)

// DefaultRef is assumed when a URL carries no branch, tag, or commit.
const DefaultRef = "main"

const (
	hostGitHub = "github.com"
	hostRaw    = "raw.githubusercontent.com"
)

// Ref identifies content inside a GitHub repository.
type Ref struct {
	Owner string
	Repo  string
	// Ref is the branch, tag, or commit; DefaultRef when unspecified.
	Ref string
	// Path is the slash-separated path inside the repository, empty for
	// the repository root.
	Path string
}

// CloneURL returns the HTTPS clone URL for the repository.
func (r *Ref) CloneURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", r.Owner, r.Repo)
}

// CacheName returns a stable repository-cache key for this reference.
func (r *Ref) CacheName() string {
	return r.Owner + "_" + r.Repo
}

// String returns owner/repo[:path][@ref] for display.
func (r *Ref) String() string {
	s := r.Owner + "/" + r.Repo
	if r.Path != "" {
		s += ":" + r.Path
	}
	if r.Ref != "" && r.Ref != DefaultRef {
		s += "@" + r.Ref
	}
	return s
}

// IsURL reports whether the input looks like a URL rather than a plain
// artifact name.
func IsURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// ParseURL parses a GitHub URL into a Ref.
//
// Recognized forms:
//
//	https://github.com/owner/repo
//	https://github.com/owner/repo/blob/<ref>/<path>
//	https://github.com/owner/repo/tree/<ref>/<path>
//	https://raw.githubusercontent.com/owner/repo/<ref>/<path>
//
// Anything on another host, or with fewer than owner+repo segments, is an
// invalid reference.
func ParseURL(input string) (*Ref, error) {
	u, err := url.Parse(strings.TrimSpace(input))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidReference, input)
	}

	host := strings.ToLower(u.Host)
	if host != hostGitHub && host != hostRaw {
		return nil, fmt.Errorf("%w: unsupported host %q (only github.com and raw.githubusercontent.com)", errs.ErrInvalidReference, u.Host)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: URL must contain at least owner and repository: %s", errs.ErrInvalidReference, input)
	}

	ref := &Ref{
		Owner: parts[0],
		Repo:  strings.TrimSuffix(parts[1], ".git"),
		Ref:   DefaultRef,
	}

	// Raw host layout: owner/repo/<ref>/<path...>.
	if host == hostRaw {
		if len(parts) >= 3 {
			ref.Ref = parts[2]
		}
		if len(parts) > 3 {
			ref.Path = strings.Join(parts[3:], "/")
		}
		return ref, nil
	}

	// Web UI layout: owner/repo/blob/<ref>/<path...> or .../tree/<ref>/<path...>.
	if len(parts) >= 4 && (parts[2] == "blob" || parts[2] == "tree") {
		ref.Ref = parts[3]
		if len(parts) > 4 {
			ref.Path = strings.Join(parts[4:], "/")
		}
		return ref, nil
	}

	// No blob/tree marker: trailing segments are a path on the default branch.
	if len(parts) > 2 {
		ref.Path = strings.Join(parts[2:], "/")
	}
	return ref, nil
}

// ParseRepoShorthand parses "owner/repo" (the agentskills manifest
// convention), defaulting the owner when absent.
func ParseRepoShorthand(input, defaultOwner string) (*Ref, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: empty repository reference", errs.ErrInvalidReference)
	}
	if owner, repo, ok := strings.Cut(input, "/"); ok {
		if owner == "" || repo == "" || strings.Contains(repo, "/") {
			return nil, fmt.Errorf("%w: malformed repository reference %q", errs.ErrInvalidReference, input)
		}
		return &Ref{Owner: owner, Repo: repo, Ref: DefaultRef}, nil
	}
	return &Ref{Owner: defaultOwner, Repo: input, Ref: DefaultRef}, nil
}
