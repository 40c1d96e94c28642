// Package supabase implements service.Service over a hosted Postgres REST
// API with password sessions.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"dodo/internal/config"
	"dodo/internal/service"
)

const (
	// Table is the name of the tasks table.
	Table = "todos"

	// APITimeout is the timeout for API calls.
	APITimeout = 10 * time.Second
)

// Client implements service.Service against the REST endpoint of a project.
type Client struct {
	restURL string
	anonKey string
	http    *http.Client
	log     *zap.Logger
}

// New creates a client from the stored session.
// Requires supabase.url, supabase.anon_key and a session from `dodo login`.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Client, error) {
	if cfg.Supabase.URL == "" || cfg.Supabase.AnonKey == "" {
		return nil, errors.New("supabase.url and supabase.anon_key must be configured")
	}

	path := cfg.SessionPath()
	tok, err := config.LoadToken(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: not logged in (run: dodo login)", service.ErrUnauthorized)
		}
		return nil, err
	}

	auth := NewAuth(cfg.Supabase.URL, cfg.Supabase.AnonKey, nil)
	src := auth.TokenSource(ctx, tok, func(t *oauth2.Token) error {
		log.Debug("session refreshed")
		return config.SaveToken(path, t)
	})

	c := NewWithHTTPClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, oauth2.NewClient(ctx, src))
	c.log = log
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// httpClient must add the Authorization header itself.
func NewWithHTTPClient(baseURL, anonKey string, httpClient *http.Client) *Client {
	return &Client{
		restURL: strings.TrimRight(baseURL, "/") + "/rest/v1/" + Table,
		anonKey: anonKey,
		http:    httpClient,
		log:     zap.NewNop(),
	}
}

// wireRow accepts both numeric and textual ids.
type wireRow struct {
	service.Row
	ID json.RawMessage `json:"id"`
}

func (w wireRow) row() service.Row {
	r := w.Row
	r.ID = strings.Trim(string(w.ID), `"`)
	return r
}

// SelectAll implements service.Service.
func (c *Client) SelectAll(ctx context.Context) ([]service.Row, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", service.ColumnCreatedAt+".desc")
	return c.do(ctx, http.MethodGet, q, nil)
}

// Insert implements service.Service.
func (c *Client) Insert(ctx context.Context, row service.Row) (service.Row, error) {
	row.ID = ""
	rows, err := c.do(ctx, http.MethodPost, nil, row)
	if err != nil {
		return service.Row{}, err
	}
	if len(rows) == 0 {
		return service.Row{}, errors.New("insert returned no row")
	}
	return rows[0], nil
}

// Update implements service.Service.
func (c *Client) Update(ctx context.Context, id string, changes service.Changes) (service.Row, error) {
	rows, err := c.do(ctx, http.MethodPatch, idFilter(id), changes)
	if err != nil {
		return service.Row{}, err
	}
	if len(rows) == 0 {
		return service.Row{}, service.ErrNotFound
	}
	return rows[0], nil
}

// Delete implements service.Service.
func (c *Client) Delete(ctx context.Context, id string) error {
	rows, err := c.do(ctx, http.MethodDelete, idFilter(id), nil)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return service.ErrNotFound
	}
	return nil
}

func idFilter(id string) url.Values {
	return url.Values{service.ColumnID: {"eq." + id}}
}

// do sends one request and decodes the returned rows.
func (c *Client) do(ctx context.Context, method string, query url.Values, body any) ([]service.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(data)
	}

	target := c.restURL
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	c.log.Debug("request", zap.String("method", method), zap.String("url", target))
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: session expired (run: dodo login)", service.ErrUnauthorized)
		}
		return nil, wrapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}

	var wire []wireRow
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	rows := make([]service.Row, len(wire))
	for i, w := range wire {
		rows[i] = w.row()
	}
	return rows, nil
}
