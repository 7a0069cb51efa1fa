package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/abduss/fieldservice/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	defaultDBTimeout = 5 * time.Second

	connectAttempts = 5
	connectBackoff  = time.Second
)

// OpenCatalog connects to the parts and travel database and applies the
// catalog schema. The database is pinged a few times before giving up since
// it often starts alongside the API.
func OpenCatalog(ctx context.Context, cfg config.PostgresConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	if log == nil {
		log = zap.NewNop()
	}
	target := fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse catalog database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create catalog pool for %s: %w", target, err)
	}

	ping := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, defaultDBTimeout)
		defer cancel()
		return pool.Ping(ctx)
	}
	if err := retry(ctx, connectAttempts, connectBackoff, ping, func(attempt int, err error) {
		log.Warn("catalog database not reachable yet", zap.String("target", target), zap.Int("attempt", attempt), zap.Error(err))
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("reach catalog database %s: %w", target, err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("catalog database ready", zap.String("target", target))
	return pool, nil
}

// retry calls fn up to attempts times, sleeping backoff between failures.
func retry(ctx context.Context, attempts int, backoff time.Duration, fn func(context.Context) error, onFailure func(attempt int, err error)) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if onFailure != nil {
			onFailure(attempt, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
