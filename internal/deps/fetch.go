package deps

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	remaperrors "mcremap/internal/errors"
	"mcremap/internal/paths"
	"mcremap/internal/storage"
	"mcremap/internal/version"
)

// Fetcher downloads a remote archive to dst.
type Fetcher interface {
	Fetch(ctx context.Context, url, dst string) error
}

// HTTPFetcher fetches over HTTP(S).
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher with a request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

// Fetch implements Fetcher. The body is written to a sibling .part file and
// renamed onto dst once complete.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dst string) error {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	part := dst + ".part"
	out, err := os.Create(part)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(part)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(part)
		return err
	}
	return os.Rename(part, dst)
}

// Resolver makes dependencies available locally.
type Resolver struct {
	root    string
	fetcher Fetcher
	records *storage.DependencyRepository
	logger  *slog.Logger
}

// NewResolver creates a resolver for paths relative to projectRoot. records
// may be nil.
func NewResolver(projectRoot string, fetcher Fetcher, records *storage.DependencyRepository, logger *slog.Logger) *Resolver {
	return &Resolver{root: projectRoot, fetcher: fetcher, records: records, logger: logger}
}

// LocalPath returns where d is expected on disk.
func (r *Resolver) LocalPath(d Dependency) string {
	if d.Path != "" {
		if filepath.IsAbs(d.Path) {
			return d.Path
		}
		return filepath.Join(r.root, d.Path)
	}
	name := d.ID()
	if ext := filepath.Ext(strings.SplitN(d.URL, "?", 2)[0]); ext != "" {
		name += ext
	} else {
		name += ".zip"
	}
	return filepath.Join(paths.ProjectDir(r.root), "deps", name)
}

// Resolve returns the local path of d, fetching it first when it is absent
// and has a URL. The file's checksum is verified on every call.
func (r *Resolver) Resolve(ctx context.Context, d Dependency) (string, error) {
	path := r.LocalPath(d)
	fetched := false
	if !paths.FileExists(path) {
		if d.URL == "" || r.fetcher == nil {
			return "", remaperrors.Newf(remaperrors.DownloadFailure, "mapping %s not found at %s", d.ID(), path).
				WithDetails(map[string]string{"artifact": d.ID()})
		}
		r.logger.Info("Fetching mapping dependency", "id", d.ID(), "url", d.URL)
		if err := r.fetcher.Fetch(ctx, d.URL, path); err != nil {
			return "", remaperrors.New(remaperrors.DownloadFailure, "failed to fetch "+d.ID(), err).
				WithDetails(map[string]string{"artifact": d.ID(), "url": d.URL})
		}
		fetched = true
	}

	sum, err := FileSHA1(path)
	if err != nil {
		return "", remaperrors.New(remaperrors.DownloadFailure, "failed to read "+d.ID(), err)
	}
	if d.SHA1 != "" && !strings.EqualFold(sum, d.SHA1) {
		if fetched {
			_ = os.Remove(path)
		}
		return "", remaperrors.Newf(remaperrors.ChecksumMismatch, "%s: sha1 %s, expected %s", d.ID(), sum, strings.ToLower(d.SHA1)).
			WithDetails(map[string]string{"artifact": d.ID(), "path": path})
	}

	if r.records != nil {
		if err := r.records.Record(&storage.Dependency{Name: d.Name, Version: d.Version, Path: path, SHA1: sum}); err != nil {
			r.logger.Warn("Failed to record mapping dependency", "id", d.ID(), "error", err.Error())
		}
	}
	return path, nil
}

// FileSHA1 returns the hex sha1 of a file.
func FileSHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
