// Package wordfreq builds word lists from the wordfreq dataset, which is
// distributed as a Python wheel on PyPI.
package wordfreq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultIndexURL is the PyPI JSON endpoint for the wordfreq project.
const DefaultIndexURL = "https://pypi.org/pypi/wordfreq/json"

// Wheel describes a downloaded wordfreq wheel.
type Wheel struct {
	Version  string
	Path     string
	Filename string
	Cached   bool
}

// Client downloads wordfreq wheels into a cache directory.
type Client struct {
	HTTP     *http.Client
	IndexURL string
	CacheDir string
}

// NewClient returns a client for the public PyPI index.
func NewClient(cacheDir string) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 60 * time.Second},
		IndexURL: DefaultIndexURL,
		CacheDir: cacheDir,
	}
}

type release struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
	URLs []releaseFile `json:"urls"`
}

type releaseFile struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	PackageType string `json:"packagetype"`
}

// FetchWheel returns the latest wheel, downloading it unless the cache
// already holds that release.
func (c *Client) FetchWheel(ctx context.Context) (Wheel, error) {
	if c.CacheDir == "" {
		return Wheel{}, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(c.CacheDir, 0o755); err != nil {
		return Wheel{}, fmt.Errorf("failed to create cache dir: %w", err)
	}

	var rel release
	if err := c.getJSON(ctx, c.IndexURL, &rel); err != nil {
		return Wheel{}, err
	}
	if rel.Info.Version == "" {
		return Wheel{}, fmt.Errorf("missing version in index response")
	}
	file, ok := pickWheel(rel.URLs)
	if !ok {
		return Wheel{}, fmt.Errorf("no wheel published for wordfreq %s", rel.Info.Version)
	}

	wheel := Wheel{
		Version:  rel.Info.Version,
		Path:     filepath.Join(c.CacheDir, filepath.Base(file.Filename)),
		Filename: file.Filename,
	}
	if _, err := os.Stat(wheel.Path); err == nil {
		wheel.Cached = true
		return wheel, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Wheel{}, fmt.Errorf("failed to stat cached wheel: %w", err)
	}
	if err := c.download(ctx, file.URL, wheel.Path); err != nil {
		return Wheel{}, err
	}
	return wheel, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer closeQuietly(body)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode index response: %w", err)
	}
	return nil
}

// download writes url to dest through a temp file so an interrupted
// transfer never leaves a truncated wheel in the cache.
func (c *Client) download(ctx context.Context, url, dest string) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer closeQuietly(body)

	tmp, err := os.CreateTemp(filepath.Dir(dest), "wordfreq-*.whl")
	if err != nil {
		return fmt.Errorf("failed to create temp wheel: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := io.Copy(tmp, body); err != nil {
		return fmt.Errorf("failed to download wheel: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp wheel: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to move wheel into cache: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		closeQuietly(resp.Body)
		return nil, fmt.Errorf("unexpected status for %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}

// pickWheel prefers the pure-Python wheel.
func pickWheel(files []releaseFile) (releaseFile, bool) {
	var fallback *releaseFile
	for i, f := range files {
		if f.PackageType != "bdist_wheel" {
			continue
		}
		if strings.HasSuffix(f.Filename, "py3-none-any.whl") {
			return f, true
		}
		if fallback == nil {
			fallback = &files[i]
		}
	}
	if fallback == nil {
		return releaseFile{}, false
	}
	return *fallback, true
}

func closeQuietly(c io.Closer) {
	if cerr := c.Close(); cerr != nil {
		// Best-effort close.
		_ = cerr
	}
}
