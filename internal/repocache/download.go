package repocache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dj2695/cuco/internal/errs"
)

// MaxDownloadSize is the hard ceiling for a single raw-file download.
const MaxDownloadSize = 10 * 1024 * 1024 // 10 MiB

// DefaultRawHost serves raw file contents for github.com repositories.
const DefaultRawHost = "https://raw.githubusercontent.com"

// Downloader fetches individual raw files from GitHub into temporary files.
type Downloader struct {
	// RawHost is the raw-content base URL; overridable in tests.
	RawHost string

	http *http.Client
	gh   apiFetcher
}

// apiFetcher is the narrow surface the downloader needs from the GitHub API
// client, kept as an interface so tests can stub the authenticated fallback.
type apiFetcher interface {
	GetContents(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
	IsAuthenticated() bool
}

// NewDownloader returns a downloader against the public raw host, with c's
// GitHub client as the authenticated fallback.
func NewDownloader(c *Cache) *Downloader {
	return &Downloader{
		RawHost: DefaultRawHost,
		http:    &http.Client{Timeout: 30 * time.Second},
		gh:      c.gh,
	}
}

// DownloadFile fetches owner/repo/path at ref to a temporary file and
// returns its location. The caller owns the file. Downloads over
// MaxDownloadSize fail; no partial temp file survives any failure.
func (d *Downloader) DownloadFile(ctx context.Context, owner, repo, path, ref string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s/%s/%s", d.RawHost, owner, repo, ref, path)

	tmp, err := os.CreateTemp("", "cuco-download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := d.fetchTo(ctx, tmp, url, owner, repo, path, ref); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (d *Downloader) fetchTo(ctx context.Context, dst *os.File, url, owner, repo, path, ref string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidReference, err)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: download of %s failed: %v", errs.ErrSourceUnavailable, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Raw host denies private content with 404; retry through the API
		// when a token is available.
		if d.gh.IsAuthenticated() &&
			(resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden) {
			log.Debug("raw download denied, retrying via GitHub API",
				"status", resp.StatusCode, "path", path)
			return d.fetchViaAPI(ctx, dst, owner, repo, path, ref)
		}
		return fmt.Errorf("%w: download of %s failed with status %d",
			errs.ErrSourceUnavailable, url, resp.StatusCode)
	}

	if resp.ContentLength > MaxDownloadSize {
		return fmt.Errorf("%w: %s is %d bytes (limit %d)",
			errs.ErrSizeLimitExceeded, path, resp.ContentLength, MaxDownloadSize)
	}

	// Read one byte past the cap so an unreported oversize still fails.
	n, err := io.Copy(dst, io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return fmt.Errorf("%w: download of %s interrupted: %v", errs.ErrSourceUnavailable, url, err)
	}
	if n > MaxDownloadSize {
		return fmt.Errorf("%w: %s exceeds the %d byte limit",
			errs.ErrSizeLimitExceeded, path, MaxDownloadSize)
	}
	return nil
}

func (d *Downloader) fetchViaAPI(ctx context.Context, dst *os.File, owner, repo, path, ref string) error {
	content, err := d.gh.GetContents(ctx, owner, repo, path, ref)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrSourceUnavailable, err)
	}
	if len(content) > MaxDownloadSize {
		return fmt.Errorf("%w: %s exceeds the %d byte limit",
			errs.ErrSizeLimitExceeded, path, MaxDownloadSize)
	}
	_, err = dst.Write(content)
	return err
}
