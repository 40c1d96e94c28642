// Package backend opens the service.Service selected by the configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dodo/internal/backend/googletasks"
	"dodo/internal/backend/local"
	"dodo/internal/backend/postgres"
	"dodo/internal/backend/supabase"
	"dodo/internal/config"
	"dodo/internal/service"
)

// Open connects to the backend named by cfg.Backend. If the returned service
// implements io.Closer the caller closes it when done.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.Service, error) {
	switch cfg.Backend {
	case config.BackendLocal:
		return opened(local.New(ctx, cfg, log))
	case config.BackendSupabase:
		return opened(supabase.New(ctx, cfg, log))
	case config.BackendGoogle:
		return opened(googletasks.New(ctx, cfg, log))
	case config.BackendPostgres:
		return opened(postgres.New(ctx, cfg, log))
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

// opened keeps a failed constructor from yielding a non-nil interface
// holding a nil pointer.
func opened[S service.Service](svc S, err error) (service.Service, error) {
	if err != nil {
		return nil, err
	}
	return svc, nil
}
