package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/totehq/tote/internal/account"
	"github.com/totehq/tote/internal/admin"
	"github.com/totehq/tote/internal/api"
	"github.com/totehq/tote/internal/catalog"
	"github.com/totehq/tote/internal/checkout"
	"github.com/totehq/tote/internal/config"
	"github.com/totehq/tote/internal/fakeapi"
	"github.com/totehq/tote/internal/kv"
	"github.com/totehq/tote/internal/logging"
	"github.com/totehq/tote/internal/prefs"
	"github.com/totehq/tote/internal/session"
	"github.com/totehq/tote/internal/ui"
)

// Options configure the tote application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/tote/prefs.toml
	// Demo serves the seeded in-memory backend on loopback and keeps state
	// in memory.
	Demo bool
}

// Env holds the wired dependencies shared by the TUI and the subcommands.
type Env struct {
	Config   config.Config
	Logger   *zap.Logger
	Store    kv.Store
	Client   *api.Client
	Catalog  *catalog.Catalog
	Session  *session.Session
	Accounts *account.Service
	Orders   *checkout.Service
	Admin    *admin.Console

	closers []func()
}

// Close releases everything Build opened, in reverse order.
func (e *Env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

// Build loads configuration and wires config -> logger -> kv -> api ->
// containers. The caller must Close the returned Env.
func Build(ctx context.Context, opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	env := &Env{Config: cfg, Logger: logger}
	env.closers = append(env.closers, func() { _ = logger.Sync() })

	if opts.Demo {
		url, stop, err := StartDemo(logger)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.closers = append(env.closers, stop)
		env.Config.APIURL = url
		env.Config.Storage = config.StorageMemory
	}

	store, closeStore, err := openStore(ctx, env.Config)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Store = store
	if f, ok := store.(*kv.File); ok {
		logger.Debug("state file", zap.String("path", f.Path()))
	}
	if closeStore != nil {
		env.closers = append(env.closers, closeStore)
	}

	client, err := api.NewClient(env.Config.APIURL, env.Config.RequestTimeout, logger)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	env.Client = client

	env.Catalog = catalog.New(ctx, store, logger)
	env.Session = session.Load(ctx, store, logger)
	env.Accounts = account.New(client, env.Session, logger)
	env.Orders = checkout.New(client, env.Catalog, store, logger)
	env.Admin = admin.New(client, logger)

	logger.Info("tote started",
		zap.String("api", env.Config.APIURL),
		zap.String("storage", env.Config.Storage),
		zap.Bool("demo", opts.Demo),
	)
	return env, nil
}

func openStore(ctx context.Context, cfg config.Config) (kv.Store, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return kv.NewMemory(), nil, nil
	case config.StorageRedis:
		connectCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		r, err := kv.NewRedis(connectCtx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	default:
		return kv.NewFile(cfg.StatePath()), nil, nil
	}
}

// StartDemo serves a seeded fakeapi backend on a loopback port and returns
// its base URL.
func StartDemo(logger *zap.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("listen for demo backend: %w", err)
	}
	backend := fakeapi.New(logger)
	backend.Seed()

	srv := &http.Server{Handler: backend, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("demo backend stopped", zap.Error(err))
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return "http://" + ln.Addr().String(), stop, nil
}

// Run boots the tote TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Build(ctx, opts)
	if err != nil {
		return err
	}
	defer env.Close()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)

	return ui.Run(ui.Options{
		Context:     ctx,
		Backend:     env.Client,
		Catalog:     env.Catalog,
		Session:     env.Session,
		Accounts:    env.Accounts,
		Orders:      env.Orders,
		Logger:      env.Logger,
		ThemeName:   userPrefs.Theme,
		DefaultSort: userPrefs.DefaultSort,
		PrefsPath:   prefsPath,
		Origin:      env.Client.BaseURL(),
	})
}
