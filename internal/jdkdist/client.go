// SPDX-License-Identifier: MPL-2.0

package jdkdist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
)

const (
	// maxJSONResponseBytes bounds API responses.
	maxJSONResponseBytes = 10 << 20
	defaultRetries       = 3
	defaultRetryDelay    = time.Second
)

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("not found")

type (
	// StatusError is returned for unexpected HTTP statuses.
	StatusError struct {
		URL        string
		StatusCode int
	}

	// RateLimitError is returned when GitHub reports an exhausted quota.
	RateLimitError struct {
		Limit   int
		ResetAt time.Time
	}

	// Client performs the HTTP requests shared by the resolvers and the
	// installer, retrying transient failures.
	Client struct {
		httpClient *http.Client
		userAgent  string
		token      string
		retries    uint
		retryDelay time.Duration
		logger     *log.Logger
	}

	// ClientOption configures a Client.
	ClientOption func(*Client)
)

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", redactURL(e.URL), e.StatusCode)
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit exceeded (limit %d, resets at %s)",
		e.Limit, e.ResetAt.UTC().Format("15:04 UTC"))
}

// WithHTTPClient sets the HTTP client, e.g. one with a timeout.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) { cl.userAgent = ua }
}

// WithToken sets a GitHub token sent to GitHub hosts only.
func WithToken(token string) ClientOption {
	return func(cl *Client) { cl.token = token }
}

// WithRetries sets the number of attempts per request.
func WithRetries(n int, delay time.Duration) ClientOption {
	return func(cl *Client) {
		if n > 0 {
			cl.retries = uint(n)
		}
		if delay > 0 {
			cl.retryDelay = delay
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *log.Logger) ClientOption {
	return func(cl *Client) { cl.logger = l }
}

// NewClient creates a Client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		userAgent:  "javawizard/dev",
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON decodes the JSON body at rawURL into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	return c.retry(ctx, rawURL, func() error {
		resp, err := c.get(ctx, rawURL)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(v); err != nil {
			return retry.Unrecoverable(fmt.Errorf("decoding %s: %w", redactURL(rawURL), err))
		}
		return nil
	})
}

// GetText returns a small text body, such as a .sha256 file.
func (c *Client) GetText(ctx context.Context, rawURL string) (string, error) {
	var out string
	err := c.retry(ctx, rawURL, func() error {
		resp, err := c.get(ctx, rawURL)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if err != nil {
			return err
		}
		out = string(data)
		return nil
	})
	return out, err
}

// Download writes the body at rawURL to a temp file in dir and returns its
// path. A failed attempt's partial file is removed before retrying.
func (c *Client) Download(ctx context.Context, rawURL, dir string) (string, error) {
	return retry.DoWithData(func() (string, error) {
		resp, err := c.get(ctx, rawURL)
		if err != nil {
			return "", err
		}
		defer func() { _ = resp.Body.Close() }()

		tmp, err := os.CreateTemp(dir, ".download-*")
		if err != nil {
			return "", retry.Unrecoverable(fmt.Errorf("creating temp file: %w", err))
		}
		if _, err := io.Copy(tmp, resp.Body); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			return "", fmt.Errorf("downloading %s: %w", redactURL(rawURL), err)
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(tmp.Name())
			return "", retry.Unrecoverable(err)
		}
		return tmp.Name(), nil
	}, c.retryOptions(ctx, rawURL)...)
}

func (c *Client) retry(ctx context.Context, rawURL string, fn func() error) error {
	return retry.Do(fn, c.retryOptions(ctx, rawURL)...)
}

func (c *Client) retryOptions(ctx context.Context, rawURL string) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(c.retries),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("request failed", "url", redactURL(rawURL), "attempt", n+1, "err", err)
		}),
	}
}

// get issues a GET and maps non-200 responses to errors. Client errors
// other than 429 are not retried.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" && isGitHubHost(req.URL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/vnd.github+json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", redactURL(rawURL), err)
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if rl := checkRateLimit(resp); rl != nil {
		return nil, retry.Unrecoverable(rl)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, retry.Unrecoverable(fmt.Errorf("GET %s: %w", redactURL(rawURL), ErrNotFound))
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return nil, retry.Unrecoverable(&StatusError{URL: rawURL, StatusCode: resp.StatusCode})
	}
	return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
}

func checkRateLimit(resp *http.Response) error {
	remaining, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	if err != nil || remaining > 0 {
		return nil //nolint:nilerr
	}
	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
	reset, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	return &RateLimitError{Limit: limit, ResetAt: time.Unix(reset, 0)}
}

func isGitHubHost(u *url.URL) bool {
	switch u.Hostname() {
	case "api.github.com", "github.com":
		return true
	}
	return false
}

// redactURL strips query and fragment so signed CDN URLs stay out of logs.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
