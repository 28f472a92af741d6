// ABOUTME: HTTP client for a remote leadbook server
// ABOUTME: Implements the record store contract over the people JSON API
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/people"
)

// Client talks to /api/people on a leadbook server.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

var _ people.Store = (*Client)(nil)

// New returns a client for baseURL (e.g. http://localhost:8080).
func New(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.WithPrefix("client"),
	}
}

type envelope struct {
	OK     bool            `json:"ok"`
	Error  string          `json:"error,omitempty"`
	Person *models.Person  `json:"person,omitempty"`
	People []models.Person `json:"people,omitempty"`
}

type bulkRequest struct {
	Records []models.Change `json:"records"`
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.logger.Debug("api call", "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start))

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s %s: invalid response (status %d): %w", method, path, resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &env, fmt.Errorf("%w: %s", people.ErrNotFound, env.Error)
	case resp.StatusCode == http.StatusBadRequest:
		return &env, fmt.Errorf("%w: %s", people.ErrInvalidPatch, env.Error)
	case resp.StatusCode >= 300 || !env.OK:
		return &env, fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, env.Error)
	}
	return &env, nil
}

func (c *Client) List(ctx context.Context) ([]models.Person, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/people", nil)
	if err != nil {
		return nil, err
	}
	if env.People == nil {
		return []models.Person{}, nil
	}
	return env.People, nil
}

// Search asks the server to filter by query.
func (c *Client) Search(ctx context.Context, query string) ([]models.Person, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/people?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	return env.People, nil
}

func (c *Client) Get(ctx context.Context, id string) (*models.Person, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/people/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return env.Person, nil
}

func (c *Client) Create(ctx context.Context, patch models.PersonPatch) (*models.Person, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/people", patch)
	if err != nil {
		return nil, err
	}
	return env.Person, nil
}

func (c *Client) Update(ctx context.Context, id string, patch models.PersonPatch) (*models.Person, error) {
	env, err := c.do(ctx, http.MethodPatch, "/api/people/"+url.PathEscape(id), patch)
	if err != nil {
		return nil, err
	}
	return env.Person, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/people/"+url.PathEscape(id), nil)
	return err
}

// BulkUpdate returns whatever the server saved alongside any error.
func (c *Client) BulkUpdate(ctx context.Context, changes []models.Change) ([]models.Person, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/people/bulk", bulkRequest{Records: changes})
	if env == nil {
		return nil, err
	}
	return env.People, err
}
