package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const revision = "main"

var ErrUnauthorized = errors.New("hub access denied, a valid token is required")

// Client downloads model repositories into a local cache laid out like huggingface_hub.
type Client struct {
	*Config
}

type Repo struct {
	ID  string
	SHA string

	Files []string
}

func New(options ...Option) *Client {
	cfg := &Config{
		url: "https://huggingface.co",
	}

	for _, option := range options {
		option(cfg)
	}

	if cfg.cache == "" {
		cfg.cache = DefaultCache()
	}

	if cfg.client == nil {
		cfg.client = http.DefaultClient
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	cfg.url = strings.TrimRight(cfg.url, "/")

	return &Client{
		Config: cfg,
	}
}

func (c *Client) Info(ctx context.Context, repo string) (*Repo, error) {
	u := c.url + "/api/models/" + repo + "/revision/" + revision

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)

	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	var info struct {
		SHA string `json:"sha"`

		Siblings []struct {
			Name string `json:"rfilename"`
		} `json:"siblings"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}

	result := &Repo{
		ID:  repo,
		SHA: info.SHA,
	}

	for _, s := range info.Siblings {
		result.Files = append(result.Files, s.Name)
	}

	if result.SHA == "" {
		result.SHA = revision
	}

	return result, nil
}

// Download fetches a single file and returns its local path. Cached files are reused.
func (c *Client) Download(ctx context.Context, repo, filename string) (string, error) {
	sha, err := c.resolve(ctx, repo)

	if err != nil {
		return "", err
	}

	return c.fetch(ctx, repo, sha, filename)
}

// Snapshot downloads every file of a repository matching one of the patterns (all files
// without patterns) and returns the snapshot directory.
func (c *Client) Snapshot(ctx context.Context, repo string, patterns ...string) (string, error) {
	info, err := c.Info(ctx, repo)

	if err != nil {
		if dir, ok := c.cached(repo); ok {
			c.logger.Warn("hub unreachable, using cached snapshot", "repo", repo, "error", err)
			return dir, nil
		}

		return "", err
	}

	for _, name := range info.Files {
		if !matches(name, patterns) {
			continue
		}

		if _, err := c.fetch(ctx, repo, info.SHA, name); err != nil {
			return "", err
		}
	}

	if err := c.writeRef(repo, info.SHA); err != nil {
		return "", err
	}

	return c.snapshotDir(repo, info.SHA), nil
}

func (c *Client) resolve(ctx context.Context, repo string) (string, error) {
	info, err := c.Info(ctx, repo)

	if err == nil {
		if err := c.writeRef(repo, info.SHA); err != nil {
			return "", err
		}

		return info.SHA, nil
	}

	data, readErr := os.ReadFile(filepath.Join(c.repoDir(repo), "refs", revision))

	if readErr != nil {
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}

func (c *Client) fetch(ctx context.Context, repo, sha, filename string) (string, error) {
	target := filepath.Join(c.snapshotDir(repo, sha), filepath.FromSlash(filename))

	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	u := c.url + "/" + repo + "/resolve/" + url.PathEscape(sha) + "/" + escapePath(filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)

	if err != nil {
		return "", err
	}

	resp, err := c.do(req)

	if err != nil {
		return "", err
	}

	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(filepath.Dir(target), ".download-*")

	if err != nil {
		return "", err
	}

	defer os.Remove(f.Name())

	c.logger.Info("downloading model file", "repo", repo, "file", filename)

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(f.Name(), target); err != nil {
		return "", err
	}

	return target, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)

	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return nil, ErrUnauthorized

	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("hub request failed: %s %s", req.URL.Path, resp.Status)
	}

	return resp, nil
}

func (c *Client) cached(repo string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(c.repoDir(repo), "refs", revision))

	if err != nil {
		return "", false
	}

	dir := c.snapshotDir(repo, strings.TrimSpace(string(data)))

	if _, err := os.Stat(dir); err != nil {
		return "", false
	}

	return dir, true
}

func (c *Client) writeRef(repo, sha string) error {
	dir := filepath.Join(c.repoDir(repo), "refs")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, revision), []byte(sha), 0644)
}

func (c *Client) repoDir(repo string) string {
	return filepath.Join(c.cache, "models--"+strings.ReplaceAll(repo, "/", "--"))
}

func (c *Client) snapshotDir(repo, sha string) string {
	return filepath.Join(c.repoDir(repo), "snapshots", sha)
}

func matches(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}

	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}

		if ok, _ := path.Match(p, path.Base(name)); ok {
			return true
		}
	}

	return false
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")

	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}

	return strings.Join(parts, "/")
}
