// Package postgres implements service.Service directly on a PostgreSQL
// database, scoping every row to one user.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"dodo/internal/config"
	"dodo/internal/service"
)

// APITimeout is the timeout for database calls.
const APITimeout = 10 * time.Second

const schema = `CREATE TABLE IF NOT EXISTS todos (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT        NOT NULL,
	content    TEXT        NOT NULL,
	is_done    BOOLEAN     NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	ended_at   TIMESTAMPTZ,
	duration   BIGINT,
	deadline   TIMESTAMPTZ
)`

const returning = `RETURNING id::text AS id, content, is_done, created_at, ended_at, duration, deadline`

type todo struct {
	ID        string     `db:"id"`
	Content   string     `db:"content"`
	IsDone    bool       `db:"is_done"`
	CreatedAt time.Time  `db:"created_at"`
	EndedAt   *time.Time `db:"ended_at"`
	Duration  *int64     `db:"duration"`
	Deadline  *time.Time `db:"deadline"`
}

func (t todo) row() service.Row {
	return service.Row(t)
}

// Client implements service.Service on a pgx connection pool.
type Client struct {
	pool   *pgxpool.Pool
	userID string
	log    *zap.Logger
}

// New connects to postgres.url and creates the todos table if needed.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Client, error) {
	if cfg.Postgres.URL == "" {
		return nil, errors.New("postgres.url must be configured")
	}
	if cfg.Postgres.UserID == "" {
		return nil, errors.New("postgres.user_id must be configured")
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Debug("connected", zap.String("user_id", cfg.Postgres.UserID))
	return NewWithPool(pool, cfg.Postgres.UserID, log), nil
}

// NewWithPool wraps an existing pool. The schema must already exist.
func NewWithPool(pool *pgxpool.Pool, userID string, log *zap.Logger) *Client {
	return &Client{pool: pool, userID: userID, log: log}
}

// Close releases the pool.
func (c *Client) Close() error {
	c.pool.Close()
	return nil
}

// SelectAll implements service.Service.
func (c *Client) SelectAll(ctx context.Context) ([]service.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	rows, err := c.pool.Query(ctx,
		`SELECT id::text AS id, content, is_done, created_at, ended_at, duration, deadline
		 FROM todos WHERE user_id = $1 ORDER BY created_at DESC, id`, c.userID)
	if err != nil {
		return nil, err
	}
	todos, err := pgx.CollectRows(rows, pgx.RowToStructByName[todo])
	if err != nil {
		return nil, err
	}

	out := make([]service.Row, len(todos))
	for i, t := range todos {
		out[i] = t.row()
	}
	return out, nil
}

// Insert implements service.Service.
func (c *Client) Insert(ctx context.Context, row service.Row) (service.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	rows, err := c.pool.Query(ctx,
		`INSERT INTO todos (user_id, content, is_done, created_at, ended_at, duration, deadline)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) `+returning,
		c.userID, row.Content, row.IsDone, row.CreatedAt, row.EndedAt, row.Duration, row.Deadline)
	if err != nil {
		return service.Row{}, err
	}
	t, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[todo])
	if err != nil {
		return service.Row{}, err
	}
	return t.row(), nil
}

// Update implements service.Service.
func (c *Client) Update(ctx context.Context, id string, changes service.Changes) (service.Row, error) {
	key, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return service.Row{}, service.ErrNotFound
	}
	query, args, err := buildUpdate(key, c.userID, changes)
	if err != nil {
		return service.Row{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	c.log.Debug("update", zap.String("sql", query))
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return service.Row{}, err
	}
	t, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[todo])
	if errors.Is(err, pgx.ErrNoRows) {
		return service.Row{}, service.ErrNotFound
	}
	if err != nil {
		return service.Row{}, err
	}
	return t.row(), nil
}

// Delete implements service.Service.
func (c *Client) Delete(ctx context.Context, id string) error {
	key, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return service.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	tag, err := c.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, key, c.userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

// buildUpdate renders an UPDATE for the given changes. Columns are emitted in
// a fixed order and only from service.UpdatableColumns.
func buildUpdate(id int64, userID string, changes service.Changes) (string, []any, error) {
	if len(changes) == 0 {
		return "", nil, errors.New("no columns to update")
	}
	for col := range changes {
		if !slices.Contains(service.UpdatableColumns, col) {
			return "", nil, fmt.Errorf("column not updatable: %s", col)
		}
	}

	var (
		sets []string
		args []any
	)
	for _, col := range service.UpdatableColumns {
		v, ok := changes[col]
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	args = append(args, id, userID)

	query := fmt.Sprintf("UPDATE todos SET %s WHERE id = $%d AND user_id = $%d %s",
		strings.Join(sets, ", "), len(args)-1, len(args), returning)
	return query, args, nil
}
