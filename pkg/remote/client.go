// Package remote is a read-only client for got protocol servers. It is used
// to look up the refs a remote already publishes.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/odvcencio/gotag/pkg/object"
)

// Endpoint identifies a got protocol repository endpoint.
// BaseURL is normalized to ".../got/{owner}/{repo}" with no trailing slash.
type Endpoint struct {
	Raw     string
	BaseURL string
	Owner   string
	Repo    string
	user    string
	pass    string
}

// ParseEndpoint parses a remote URL into a canonical endpoint.
//
// Supported inputs include:
// - https://host/got/owner/repo
// - https://host/owner/repo (expanded to /got/owner/repo)
// - https://host/api/v1/got/owner/repo
func ParseEndpoint(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Endpoint{}, fmt.Errorf("remote URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("parse remote URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Endpoint{}, fmt.Errorf("remote URL must include scheme and host")
	}

	segments := splitPathSegments(u.Path)
	if len(segments) < 2 {
		return Endpoint{}, fmt.Errorf("remote URL must include owner and repository")
	}

	gotIdx := -1
	for i := 0; i+2 < len(segments); i++ {
		if segments[i] == "got" {
			gotIdx = i
		}
	}

	var owner, repo string
	var base []string
	if gotIdx >= 0 {
		owner, repo = segments[gotIdx+1], segments[gotIdx+2]
		base = append(base, segments[:gotIdx+3]...)
	} else {
		owner, repo = segments[len(segments)-2], segments[len(segments)-1]
		base = append(base, segments[:len(segments)-2]...)
		base = append(base, "got", owner, repo)
	}

	endpointURL := *u
	endpointURL.Path = "/" + strings.Join(base, "/")
	endpointURL.RawPath = ""
	endpointURL.RawQuery = ""
	endpointURL.Fragment = ""
	var user, pass string
	if endpointURL.User != nil {
		user = endpointURL.User.Username()
		pass, _ = endpointURL.User.Password()
	}
	endpointURL.User = nil

	return Endpoint{
		Raw:     raw,
		BaseURL: strings.TrimRight(endpointURL.String(), "/"),
		Owner:   owner,
		Repo:    repo,
		user:    user,
		pass:    pass,
	}, nil
}

func splitPathSegments(p string) []string {
	p = strings.TrimPrefix(path.Clean(strings.TrimSpace(p)), "/")
	if p == "" || p == "." {
		return nil
	}
	var out []string
	for _, part := range strings.Split(p, "/") {
		if part = strings.TrimSpace(part); part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}

// ClientOptions configures the remote protocol client.
type ClientOptions struct {
	Timeout      time.Duration // HTTP client timeout (default 30s)
	MaxAttempts  int           // retry attempts (default 3)
	RetryBackoff time.Duration // first retry delay, doubled per attempt (default 1s)
	HTTPClient   *http.Client  // overrides Timeout when set
}

const responseLimitRefs = 8 << 20

// Client talks to a got protocol endpoint.
type Client struct {
	endpoint    Endpoint
	httpClient  *http.Client
	token       string
	user        string
	pass        string
	maxAttempts int
	backoff     time.Duration
}

// NewClient creates a remote protocol client with default options.
//
// Auth resolution order:
// 1) GOT_TOKEN (Bearer)
// 2) GOT_USERNAME + GOT_PASSWORD (Basic)
// 3) URL userinfo (Basic)
func NewClient(remoteURL string) (*Client, error) {
	return NewClientWithOptions(remoteURL, ClientOptions{})
}

// NewClientWithOptions creates a remote protocol client. Zero-value fields
// in opts receive defaults.
func NewClientWithOptions(remoteURL string, opts ClientOptions) (*Client, error) {
	endpoint, err := ParseEndpoint(remoteURL)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	token := strings.TrimSpace(os.Getenv("GOT_TOKEN"))
	user := strings.TrimSpace(os.Getenv("GOT_USERNAME"))
	pass := os.Getenv("GOT_PASSWORD")
	if token == "" && user == "" && endpoint.user != "" {
		user, pass = endpoint.user, endpoint.pass
	}

	return &Client{
		endpoint:    endpoint,
		httpClient:  httpClient,
		token:       token,
		user:        user,
		pass:        pass,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.RetryBackoff,
	}, nil
}

// Endpoint returns the parsed endpoint metadata.
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// ListRefs returns all remote refs (e.g. heads/main, tags/v1).
func (c *Client) ListRefs(ctx context.Context) (map[string]object.Hash, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint.BaseURL+"/refs", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Encoding", "zstd")
	body, err := c.get(req, responseLimitRefs, "application/json")
	if err != nil {
		return nil, err
	}

	var raw map[string]string
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode refs response: %w", err)
	}
	refs := make(map[string]object.Hash, len(raw))
	for name, hash := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		h := object.Hash(strings.TrimSpace(hash))
		if !h.Valid() {
			return nil, fmt.Errorf("invalid hash %q for ref %q", hash, name)
		}
		refs[name] = h
	}
	return refs, nil
}

// ListTags returns the sorted tag names published by the remote.
func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	refs, err := c.ListRefs(ctx)
	if err != nil {
		return nil, err
	}
	var tags []string
	for name := range refs {
		if tag, ok := strings.CutPrefix(name, "tags/"); ok {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

func (c *Client) get(req *http.Request, maxBytes int64, expectedContentType string) ([]byte, error) {
	c.applyAuth(req)
	resp, err := retryDo(c.httpClient, req, c.maxAttempts, c.backoff)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var src io.Reader = resp.Body
	if isZstdEncoded(resp.Header.Get("Content-Encoding")) {
		zr, err := newZstdReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("decompress response: %w", err)
		}
		defer zr.Close()
		src = zr
	}
	body, err := io.ReadAll(io.LimitReader(src, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if re := tryParseRemoteError(body); re != nil {
			return nil, re
		}
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("remote request failed (%s %s): %s", req.Method, req.URL.Path, msg)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, expectedContentType) {
		return nil, fmt.Errorf("unexpected content type %q (expected %s) from %s %s", ct, expectedContentType, req.Method, req.URL.Path)
	}
	return body, nil
}

func (c *Client) applyAuth(req *http.Request) {
	req.Header.Set(headerProtocol, ProtocolVersion)
	req.Header.Set(headerCapabilities, ClientCapabilities)

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
		return
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}
}
