// Package annofab is a small client for the AnnoFab Web API v1.
package annofab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/huangsam/annofabcli/internal/contract"
)

// Retry defaults.
const (
	DefaultMaxTries        = 5
	DefaultInitialInterval = time.Second
	DefaultMaxElapsedTime  = 5 * time.Minute
	DefaultTimeout         = 60 * time.Second
)

// APIError is a non-2xx/3xx response from AnnoFab.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, strings.TrimSpace(e.Body))
}

// IsNotFound reports whether err is an HTTP 404 from AnnoFab.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// retryable reports whether a status is worth another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// Client talks to one AnnoFab endpoint with one set of credentials.
type Client struct {
	endpoint   string
	creds      contract.Credentials
	httpClient *http.Client
	noRedirect *http.Client
	// download has no overall timeout; ctx bounds the transfer.
	download *http.Client

	maxTries        uint64
	initialInterval time.Duration
	maxElapsedTime  time.Duration

	mu      sync.Mutex
	idToken string
}

var _ contract.AnnofabClient = &Client{} // Compile-time check

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRetry overrides the retry policy.
func WithRetry(maxTries int, initialInterval time.Duration) Option {
	return func(c *Client) {
		c.maxTries = uint64(max(maxTries, 1))
		c.initialInterval = initialInterval
	}
}

// New builds a client. A personal access token wins over user id and password.
func New(endpoint string, creds contract.Credentials, opts ...Option) (*Client, error) {
	if creds.PAT == "" && (creds.UserID == "" || creds.Password == "") {
		return nil, errors.New("AnnoFab credentials are missing: set ANNOFAB_PAT, or ANNOFAB_USER_ID and ANNOFAB_PASSWORD")
	}
	c := &Client{
		endpoint:        strings.TrimRight(endpoint, "/"),
		creds:           creds,
		httpClient:      &http.Client{Timeout: DefaultTimeout},
		maxTries:        DefaultMaxTries,
		initialInterval: DefaultInitialInterval,
		maxElapsedTime:  DefaultMaxElapsedTime,
	}
	for _, opt := range opts {
		opt(c)
	}
	redirectFree := *c.httpClient
	redirectFree.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	c.noRedirect = &redirectFree
	c.download = downloadClient(c.httpClient)
	return c, nil
}

// downloadClient copies h without its overall timeout, which would cut off
// large archives mid-transfer. Waiting for response headers stays bounded.
func downloadClient(h *http.Client) *http.Client {
	d := *h
	d.Timeout = 0

	var t *http.Transport
	switch base := h.Transport.(type) {
	case nil:
		t = http.DefaultTransport.(*http.Transport).Clone()
	case *http.Transport:
		t = base.Clone()
	default:
		return &d
	}
	if t.ResponseHeaderTimeout == 0 {
		t.ResponseHeaderTimeout = DefaultTimeout
		if h.Timeout > 0 {
			t.ResponseHeaderTimeout = h.Timeout
		}
	}
	d.Transport = t
	return &d
}

// apiURL builds {endpoint}/api/v1/{path}?{query}.
func (c *Client) apiURL(path string, query url.Values) string {
	u := c.endpoint + "/api/v1/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// requestOptions tunes one call to send.
type requestOptions struct {
	authed     bool
	noRedirect bool
	download   bool
}

// send performs a request with retries. The caller closes the response body.
func (c *Client) send(ctx context.Context, method, rawURL string, payload []byte, opts requestOptions) (*http.Response, error) {
	var resp *http.Response
	relogged := false

	op := func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
		if err != nil {
			return backoff.Permanent(err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		if opts.authed {
			auth, err := c.authorization(ctx)
			if err != nil {
				return backoff.Permanent(err)
			}
			req.Header.Set("Authorization", auth)
		}

		h := c.httpClient
		switch {
		case opts.noRedirect:
			h = c.noRedirect
		case opts.download:
			h = c.download
		}
		r, err := h.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		if r.StatusCode < http.StatusBadRequest {
			resp = r
			return nil
		}

		b, _ := io.ReadAll(io.LimitReader(r.Body, 64<<10))
		_ = r.Body.Close()
		apiErr := &APIError{StatusCode: r.StatusCode, Method: method, URL: rawURL, Body: string(b)}

		if r.StatusCode == http.StatusUnauthorized && opts.authed && c.creds.PAT == "" && !relogged {
			relogged = true
			c.resetToken()
			return apiErr
		}
		if retryable(r.StatusCode) {
			return apiErr
		}
		return backoff.Permanent(apiErr)
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.initialInterval
	exp.MaxElapsedTime = c.maxElapsedTime
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, c.maxTries-1), ctx)

	notify := func(err error, wait time.Duration) {
		contract.LogWarn(fmt.Sprintf("Retrying %s %s in %s", method, rawURL, wait.Round(time.Millisecond)), err)
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	return resp, nil
}

// doJSON sends in as JSON (when not nil) and decodes the response into out (when not nil).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = b
	}
	resp, err := c.send(ctx, method, c.apiURL(path, query), payload, requestOptions{authed: true})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

type loginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token struct {
		IDToken      string `json:"id_token"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	} `json:"token"`
}

// Login exchanges user id and password for an id token.
func (c *Client) Login(ctx context.Context) error {
	payload, err := json.Marshal(loginRequest{UserID: c.creds.UserID, Password: c.creds.Password})
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, http.MethodPost, c.apiURL("login", nil), payload, requestOptions{})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if out.Token.IDToken == "" {
		return errors.New("login response has no id_token")
	}

	c.mu.Lock()
	c.idToken = out.Token.IDToken
	c.mu.Unlock()
	return nil
}

// authorization returns the Authorization header value, logging in when needed.
func (c *Client) authorization(ctx context.Context) (string, error) {
	if c.creds.PAT != "" {
		return "Bearer " + c.creds.PAT, nil
	}
	c.mu.Lock()
	token := c.idToken
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}
	if err := c.Login(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idToken, nil
}

func (c *Client) resetToken() {
	c.mu.Lock()
	c.idToken = ""
	c.mu.Unlock()
}

// projectPath joins path segments under projects/{projectID}, escaping each one.
func projectPath(projectID string, segments ...string) string {
	parts := []string{"projects", url.PathEscape(projectID)}
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}
	return strings.Join(parts, "/")
}
