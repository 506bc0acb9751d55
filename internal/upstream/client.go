// Package upstream talks to the submissions admin API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/good-yellow-bee/grantdoc/internal/metrics"
	"github.com/good-yellow-bee/grantdoc/internal/models"
)

var (
	// ErrUpstream is returned when the admin API cannot be reached or
	// answers with an error.
	ErrUpstream = errors.New("upstream request failed")
	// ErrNotFound is returned when no submission matches.
	ErrNotFound = errors.New("submission not found")
)

const (
	loginPath  = "/auth/admin-login"
	fetchPath  = "/submissions/fetch-admin"
	bodyLimit  = 32 << 20
	errorLimit = 1024
)

// Config holds the admin API location and credentials.
type Config struct {
	BaseURL  string
	Email    string
	Password string
	Timeout  time.Duration
	// TokenSkew is subtracted from the token expiry before it is reused.
	TokenSkew time.Duration
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base URL must be http or https")
	}
	if c.Email == "" || c.Password == "" {
		return fmt.Errorf("email and password are required")
	}
	return nil
}

// Client fetches submissions from the admin API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewClient creates a new client.
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid upstream config: %w", err)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.TokenSkew <= 0 {
		config.TokenSkew = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger.Named("upstream"),
		now:    time.Now,
	}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login authenticates and returns a bearer token. A cached token is
// returned while it is still valid.
func (c *Client) Login(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expires) {
		return c.token, nil
	}

	start := time.Now()
	token, err := c.login(ctx)
	c.observe("login", start, err)
	if err != nil {
		return "", err
	}

	c.token = token
	c.expires = c.tokenExpiry(token)
	c.logger.Debug("logged in", zap.Time("token_expires", c.expires))
	return token, nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	jsonData, err := json.Marshal(loginRequest{Email: c.config.Email, Password: c.config.Password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+loginPath, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: login: decode response: %v", ErrUpstream, err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: login: response carries no token", ErrUpstream)
	}
	return resp.Token, nil
}

// tokenExpiry reads the exp claim without verifying the signature. Tokens
// without a readable expiry are not cached.
func (c *Client) tokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Add(-c.config.TokenSkew)
}

// Invalidate drops the cached token.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expires = time.Time{}
	c.mu.Unlock()
}

// FetchSubmissions logs in and returns all submissions. Records that cannot
// be decoded are skipped and logged.
func (c *Client) FetchSubmissions(ctx context.Context) ([]*models.Submission, error) {
	token, err := c.Login(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	subs, err := c.fetch(ctx, token)
	c.observe("fetch", start, err)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (c *Client) fetch(ctx context.Context, token string) ([]*models.Submission, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+fetchPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		var status *statusError
		if errors.As(err, &status) && status.code == http.StatusUnauthorized {
			c.Invalidate()
		}
		return nil, fmt.Errorf("fetch submissions: %w", err)
	}

	raw, err := decodeList(body)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch submissions: %v", ErrUpstream, err)
	}

	subs := make([]*models.Submission, 0, len(raw))
	for i, item := range raw {
		var s models.Submission
		if err := json.Unmarshal(item, &s); err != nil {
			c.logger.Warn("skipping undecodable submission", zap.Int("index", i), zap.Error(err))
			continue
		}
		subs = append(subs, &s)
	}
	return subs, nil
}

// decodeList accepts a bare array or an object wrapping it under
// "submissions" or "data".
func decodeList(body []byte) ([]json.RawMessage, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Submissions []json.RawMessage `json:"submissions"`
		Data        []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if wrapped.Submissions != nil {
		return wrapped.Submissions, nil
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	return nil, fmt.Errorf("decode response: no submission list")
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d, body: %s", e.code, e.body)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorLimit))
		return nil, fmt.Errorf("%w: %w", ErrUpstream, &statusError{code: resp.StatusCode, body: string(body)})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, bodyLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	return body, nil
}

func (c *Client) observe(operation string, start time.Time, err error) {
	metrics.UpstreamRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequestsTotal.WithLabelValues(operation, metrics.Result(err)).Inc()
	if err != nil {
		c.logger.Warn("upstream request failed", zap.String("operation", operation), zap.Error(err))
	}
}

// FirstSubmitted returns the first submission whose status is "submitted".
func FirstSubmitted(subs []*models.Submission) (*models.Submission, error) {
	for _, s := range subs {
		if s != nil && s.IsSubmitted() {
			return s, nil
		}
	}
	return nil, ErrNotFound
}

// FindByUniqueID returns the submission with the given unique id.
func FindByUniqueID(subs []*models.Submission, uniqueID string) (*models.Submission, error) {
	for _, s := range subs {
		if s != nil && s.UniqueID == uniqueID {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, uniqueID)
}
