package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"dodo/internal/service"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}))
	return NewWithHTTPClient(srv.URL, "anon", httpClient)
}

func TestSelectAll(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/todos", r.URL.Path)
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 7, "content": "done", "is_done": true, "created_at": "2024-01-01T09:00:00+00:00",
			 "ended_at": "2024-01-01T11:30:00+00:00", "duration": 9000000, "deadline": null},
			{"id": "b2", "content": "open", "is_done": false, "created_at": "2023-12-31T09:00:00.5+00:00",
			 "ended_at": null, "duration": null, "deadline": "2024-02-01T00:00:00Z"}
		]`))
	})

	rows, err := c.SelectAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "7", rows[0].ID)
	assert.True(t, rows[0].IsDone)
	require.NotNil(t, rows[0].Duration)
	assert.Equal(t, int64(9000000), *rows[0].Duration)
	require.NotNil(t, rows[0].EndedAt)
	assert.True(t, rows[0].EndedAt.Equal(time.Date(2024, 1, 1, 11, 30, 0, 0, time.UTC)))

	assert.Equal(t, "b2", rows[1].ID)
	assert.Nil(t, rows[1].EndedAt)
	assert.Nil(t, rows[1].Duration)
	require.NotNil(t, rows[1].Deadline)
}

func TestInsert(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "id")
		assert.Equal(t, "buy milk", body["content"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id": 1, "content": "buy milk", "is_done": false, "created_at": "2024-01-01T09:00:00Z"}]`))
	})

	row, err := c.Insert(context.Background(), service.Row{
		Content:   "buy milk",
		CreatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "1", row.ID)
}

func TestUpdate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.1", r.URL.Query().Get("id"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"is_done": false, "ended_at": nil, "duration": nil}, body)

		_, _ = w.Write([]byte(`[{"id": 1, "content": "x", "is_done": false, "created_at": "2024-01-01T09:00:00Z"}]`))
	})

	row, err := c.Update(context.Background(), "1", service.Changes{
		service.ColumnIsDone:   false,
		service.ColumnEndedAt:  nil,
		service.ColumnDuration: nil,
	})
	require.NoError(t, err)
	assert.False(t, row.IsDone)
}

func TestUpdateMissingRow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.Update(context.Background(), "9", service.Changes{service.ColumnContent: "x"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDelete(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "eq.1", r.URL.Query().Get("id"))
		if calls == 1 {
			_, _ = w.Write([]byte(`[{"id": 1, "content": "x", "created_at": "2024-01-01T09:00:00Z"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	require.NoError(t, c.Delete(context.Background(), "1"))
	assert.ErrorIs(t, c.Delete(context.Background(), "1"), service.ErrNotFound)
}

func TestUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "JWT expired"}`))
	})

	_, err := c.SelectAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrUnauthorized))
	assert.Contains(t, err.Error(), "JWT expired")
}

func TestServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message": "boom"}`))
	})

	_, err := c.SelectAll(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, service.ErrUnauthorized))
	assert.Equal(t, "boom (HTTP 500)", err.Error())
}
