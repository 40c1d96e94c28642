package backend

import (
	"context"
	"errors"
	"io"
	"testing"

	"go.uber.org/zap"

	"dodo/internal/backend/local"
	"dodo/internal/config"
	"dodo/internal/service"
)

func TestOpen_Local(t *testing.T) {
	cfg := config.New(t.TempDir())

	svc, err := Open(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, ok := svc.(*local.Client); !ok {
		t.Errorf("expected local client, got %T", svc)
	}
	if c, ok := svc.(io.Closer); ok {
		c.Close()
	}
}

func TestOpen_SupabaseWithoutSession(t *testing.T) {
	cfg := config.New(t.TempDir())
	cfg.Backend = config.BackendSupabase
	cfg.Supabase.URL = "https://example.supabase.co"
	cfg.Supabase.AnonKey = "anon"

	_, err := Open(context.Background(), cfg, zap.NewNop())
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestOpen_PostgresNeedsURL(t *testing.T) {
	cfg := config.New(t.TempDir())
	cfg.Backend = config.BackendPostgres

	if _, err := Open(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Error("expected error without postgres.url")
	}
}

func TestOpen_Unknown(t *testing.T) {
	cfg := config.New(t.TempDir())
	cfg.Backend = "dropbox"

	if _, err := Open(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Error("expected error for unknown backend")
	}
}
