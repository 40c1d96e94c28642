// Package googletasks implements the service.Service interface using Google Tasks API.
package googletasks

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"dodo/internal/config"
	"dodo/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 10 * time.Second

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc    *tasks.Service
	listID string
	log    *zap.Logger
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Client, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	token, err := config.LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	// Create token source that auto-refreshes
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))

	c, err := NewWithHTTPClient(ctx, httpClient, cfg.Google.List)
	if err != nil {
		return nil, err
	}
	c.log = log
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, listID string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	if listID == "" {
		listID = DefaultListID
	}
	return &Client{svc: svc, listID: listID, log: zap.NewNop()}, nil
}

// SelectAll returns every task of the list, completed ones included,
// newest first.
func (c *Client) SelectAll(ctx context.Context) ([]service.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var rows []service.Row
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				rows = append(rows, toRow(t))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}

	// The API orders by position, not by creation.
	slices.SortStableFunc(rows, func(a, b service.Row) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	c.log.Debug("listed tasks", zap.String("list", c.listID), zap.Int("count", len(rows)))
	return rows, nil
}

// Insert creates a task in the list.
func (c *Client) Insert(ctx context.Context, row service.Row) (service.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	created, err := c.svc.Tasks.Insert(c.listID, fromRow(row)).Context(ctx).Do()
	if err != nil {
		return service.Row{}, wrapError(err)
	}
	return toRow(created), nil
}

// Update patches the given columns of a task. Duration is derived on read
// and never sent.
func (c *Client) Update(ctx context.Context, id string, changes service.Changes) (service.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	patch := &tasks.Task{}
	for col, v := range changes {
		switch col {
		case service.ColumnContent:
			patch.Title, _ = v.(string)
		case service.ColumnIsDone:
			if done, _ := v.(bool); done {
				patch.Status = statusCompleted
			} else {
				patch.Status = statusNeedsAction
			}
		case service.ColumnEndedAt:
			if t, ok := v.(time.Time); ok {
				s := formatTime(t)
				patch.Completed = &s
			} else {
				patch.NullFields = append(patch.NullFields, "Completed")
			}
		case service.ColumnDeadline:
			if t, ok := v.(time.Time); ok {
				patch.Due = formatDue(t)
			} else {
				patch.NullFields = append(patch.NullFields, "Due")
			}
		case service.ColumnCreatedAt:
			t, _ := v.(time.Time)
			cur, err := c.svc.Tasks.Get(c.listID, id).Context(ctx).Do()
			if err != nil {
				return service.Row{}, wrapError(err)
			}
			patch.Notes = setCreated(cur.Notes, t)
		}
	}

	updated, err := c.svc.Tasks.Patch(c.listID, id, patch).Context(ctx).Do()
	if err != nil {
		return service.Row{}, wrapError(err)
	}
	return toRow(updated), nil
}

// Delete removes a task from the list.
func (c *Client) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

func toRow(t *tasks.Task) service.Row {
	row := service.Row{
		ID:      t.Id,
		Content: t.Title,
		IsDone:  t.Status == statusCompleted,
	}

	created, ok := parseCreated(t.Notes)
	if !ok {
		created, _ = time.Parse(time.RFC3339, t.Updated)
	}
	row.CreatedAt = created

	if t.Completed != nil && row.IsDone {
		if ended, err := time.Parse(time.RFC3339, *t.Completed); err == nil {
			row.EndedAt = &ended
			ms := ended.Sub(created).Milliseconds()
			row.Duration = &ms
		}
	}
	if t.Due != "" {
		if due, err := time.Parse(time.RFC3339, t.Due); err == nil {
			row.Deadline = &due
		}
	}
	return row
}

func fromRow(row service.Row) *tasks.Task {
	t := &tasks.Task{
		Title:  row.Content,
		Status: statusNeedsAction,
		Notes:  setCreated("", row.CreatedAt),
	}
	if row.IsDone {
		t.Status = statusCompleted
		if row.EndedAt != nil {
			s := formatTime(*row.EndedAt)
			t.Completed = &s
		}
	}
	if row.Deadline != nil {
		t.Due = formatDue(*row.Deadline)
	}
	return t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// formatDue keeps the calendar date of t; the API drops the time of day.
func formatDue(t time.Time) string {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: token expired or revoked (run: dodo login)", service.ErrUnauthorized)
		case http.StatusNotFound:
			return service.ErrNotFound
		}
		return fmt.Errorf("%s (HTTP %d)", cmp.Or(apiErr.Message, http.StatusText(apiErr.Code)), apiErr.Code)
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%w: token expired or revoked (run: dodo login)", service.ErrUnauthorized)
	}
	return err
}
