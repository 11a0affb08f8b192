package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the public record-store endpoint. Tests point the
	// client at an httptest server instead.
	DefaultBaseURL = "https://api.notion.com/v1"

	// DefaultVersion is the wire-format version sent with every request.
	DefaultVersion = "2022-06-28"
)

// API is the record-store surface the sync engine consumes. Client is the
// production implementation; tests substitute fakes.
type API interface {
	GetDatabase(ctx context.Context, databaseID string) (*Database, error)
	QueryDatabase(ctx context.Context, databaseID string, req *QueryRequest) (*QueryResponse, error)
	GetPage(ctx context.Context, pageID string) (*Page, error)
	CreatePage(ctx context.Context, req *PageCreate) (*Page, error)
	UpdatePage(ctx context.Context, pageID string, req *PageUpdate) (*Page, error)
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, userID string) (*User, error)
}

// ClientOptions overrides Client defaults.
type ClientOptions struct {
	BaseURL    string
	Version    string
	HTTPClient *http.Client
}

// Client talks to a Notion-compatible record store over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	version string
	token   string
	log     zerolog.Logger
}

var _ API = (*Client)(nil)

// NewClient creates a client authenticating with the given integration
// token.
func NewClient(token string, logger zerolog.Logger, opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		http:    opts.HTTPClient,
		baseURL: opts.BaseURL,
		version: opts.Version,
		token:   token,
		log:     logger.With().Str("component", "remote").Logger(),
	}
}

// GetDatabase fetches a database's property schema.
func (c *Client) GetDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var db Database
	if err := c.do(ctx, http.MethodGet, "/databases/"+databaseID, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// QueryDatabase runs one query page against a database.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req *QueryRequest) (*QueryResponse, error) {
	if req == nil {
		req = &QueryRequest{}
	}
	var resp QueryResponse
	if err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPage fetches one record by id.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreatePage creates a record.
func (c *Client) CreatePage(ctx context.Context, req *PageCreate) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodPost, "/pages", req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage patches record properties.
func (c *Client) UpdatePage(ctx context.Context, pageID string, req *PageUpdate) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListUsers fetches the full workspace user directory, following
// pagination cursors.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var (
		users  []User
		cursor string
	)
	for {
		path := "/users"
		if cursor != "" {
			path += "?start_cursor=" + cursor
		}
		var resp UserListResponse
		if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		users = append(users, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			return users, nil
		}
		cursor = resp.NextCursor
	}
}

// GetUser fetches one user profile.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/"+userID, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("X-Request-Id", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Msg("close response body")
		}
	}()

	c.log.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("record store request")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		// Error bodies are best-effort JSON; the status alone is enough to act on.
		_ = json.Unmarshal(raw, apiErr)
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
