package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/assetbot"
	"github.com/aretw0/assetbot/internal/config"
	"github.com/aretw0/assetbot/pkg/adapters/inventory"
	"github.com/aretw0/assetbot/pkg/adapters/redis"
	"github.com/aretw0/assetbot/pkg/adapters/sqlite"
	"github.com/aretw0/assetbot/pkg/observability"
	"github.com/aretw0/assetbot/pkg/persistence/middleware"
	"github.com/aretw0/assetbot/pkg/ports"
)

// App is an engine wired to the adapters selected by configuration.
type App struct {
	Engine   *assetbot.Engine
	Metrics  *observability.Metrics
	Recorder *sqlite.Recorder // nil unless SQLitePath is set
	Store    ports.StateStore // nil for in-memory sessions

	closers []func() error
}

// Close releases every adapter in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewApp builds the engine described by cfg.
//
//  1. Dialogue: vocabulary, wording, flow and optional stock from DialogueFile.
//  2. Inventory: HTTP service when InventoryURL is set, else the dialogue stock,
//     else the built-in defaults.
//  3. Sessions: memory, or Redis with an optional distributed lock.
//  4. Recorder: SQLite ledger when SQLitePath is set.
//  5. Hooks: Prometheus metrics always, debug logging when the level allows.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Metrics: observability.NewMetrics()}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close()
		}
	}()

	dialogue, err := config.LoadDialogue(cfg.DialogueFile)
	if err != nil {
		return nil, err
	}

	opts := []assetbot.Option{
		assetbot.WithLogger(logger),
		assetbot.WithDialogue(dialogue.Dialogue),
		assetbot.WithTable(dialogue.Table),
		assetbot.WithInventory(newInventory(cfg, dialogue, app)),
		assetbot.WithInventoryTimeout(cfg.InventoryTimeout),
		assetbot.WithMaxInputSize(cfg.MaxInputSize),
		assetbot.WithLifecycleHooks(app.Metrics.Hooks()),
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		opts = append(opts, assetbot.WithLifecycleHooks(observability.LoggingHooks(logger)))
	}

	if cfg.Store == config.StoreRedis {
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redis.WithPrefix(cfg.RedisPrefix),
			redis.WithTTL(cfg.RedisTTL),
		)
		app.closers = append(app.closers, store.Close)
		if err := store.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		protected, err := protect(cfg, store)
		if err != nil {
			return nil, err
		}
		app.Store = protected
		opts = append(opts, assetbot.WithStore(protected))
		if cfg.RedisLock {
			opts = append(opts, assetbot.WithLocker(redis.NewLocker(store.Client(), cfg.RedisPrefix), cfg.LockTTL))
		}
		logger.Info("Using redis session store", "addr", cfg.RedisAddr, "lock", cfg.RedisLock)
	}

	if cfg.SQLitePath != "" {
		rec, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, rec.Close)
		app.Recorder = rec
		opts = append(opts, assetbot.WithRecorder(rec))
	}

	eng, err := assetbot.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	app.Engine = eng
	ok = true
	return app, nil
}

// protect wraps store with the at-rest middlewares enabled in cfg. Masking runs
// before encryption so redacted text is what gets sealed.
func protect(cfg *config.Config, store ports.StateStore) (ports.StateStore, error) {
	var mws []middleware.Middleware
	if cfg.MaskPII {
		pii, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey != "" {
		active, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("encryption key: %w", err)
		}
		enc := middleware.EncryptionConfig{ActiveKey: active}
		for i, raw := range cfg.EncryptionFallbackKeys {
			key, err := middleware.ParseKey(raw)
			if err != nil {
				return nil, fmt.Errorf("fallback encryption key %d: %w", i, err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
		mw, err := middleware.NewEncryptionMiddleware(enc)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return middleware.Chain(store, mws...), nil
}

func newInventory(cfg *config.Config, dialogue *config.Dialogue, app *App) ports.Inventory {
	if cfg.InventoryURL != "" {
		var opts []inventory.HTTPOption
		if cfg.InventoryTimeout > 0 {
			opts = append(opts, inventory.WithTimeout(cfg.InventoryTimeout))
		}
		if cfg.InventoryAPIKey != "" {
			opts = append(opts, inventory.WithHeader("Authorization", "Bearer "+cfg.InventoryAPIKey))
		}
		client := inventory.NewHTTP(cfg.InventoryURL, opts...)
		app.closers = append(app.closers, client.Close)
		return client
	}
	if dialogue.Inventory != nil {
		return inventory.NewStatic(dialogue.Inventory)
	}
	return inventory.NewStatic(inventory.DefaultItems())
}
