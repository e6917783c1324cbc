// Package app wires configuration into the credential store, the gateway and
// the domain services shared by the console and shopctl binaries.
package app

import (
	"context"
	"fmt"

	"github.com/abduss/storefront/internal/account"
	"github.com/abduss/storefront/internal/apicache"
	"github.com/abduss/storefront/internal/auth"
	"github.com/abduss/storefront/internal/cart"
	"github.com/abduss/storefront/internal/catalog"
	"github.com/abduss/storefront/internal/config"
	"github.com/abduss/storefront/internal/credstore"
	"github.com/abduss/storefront/internal/gateway"
	"github.com/abduss/storefront/internal/order"
	"github.com/abduss/storefront/internal/report"
	"github.com/abduss/storefront/internal/review"
	"github.com/abduss/storefront/internal/server"
	"github.com/abduss/storefront/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// App holds every long-lived component of a storefront client process.
type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Store   *credstore.Store
	Cache   *apicache.Cache
	Gateway *gateway.Client

	// DB is set only for the postgres store driver.
	DB *pgxpool.Pool
	// Objects is set only when MinIO is configured.
	Objects *minio.Client

	Auth     *auth.Service
	Accounts *account.Service
	Cart     *cart.Service
	Catalog  *catalog.Service
	Orders   *order.Service
	Reviews  *review.Service
	Reports  *report.Service
	Archiver *report.Archiver
}

// New builds an App. nav receives the gateway's advisory and forced
// navigations. Call Close when done.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, nav gateway.Navigator) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger, Cache: apicache.New()}

	backend, err := a.openBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = credstore.New(backend, logger)

	a.Gateway = gateway.New(cfg.API, a.Store,
		gateway.WithNavigator(nav),
		gateway.WithLogger(logger),
	)

	a.Auth = auth.NewService(a.Gateway, a.Store, a.Cache, logger)
	a.Accounts = account.NewService(a.Gateway, a.Cache)
	a.Cart = cart.NewService(a.Gateway)
	a.Catalog = catalog.NewService(a.Gateway, a.Cache)
	a.Orders = order.NewService(a.Gateway)
	a.Reviews = review.NewService(a.Gateway)
	a.Reports = report.NewService(a.Gateway)

	if cfg.MinIO.Enabled() {
		if err := a.openArchive(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *App) openBackend(ctx context.Context) (credstore.Backend, error) {
	cfg := a.Config.Store
	switch cfg.Driver {
	case config.StoreDriverMemory:
		return credstore.NewMemoryBackend(), nil

	case config.StoreDriverPostgres:
		pool, err := storage.NewPostgresPool(ctx, a.Config.Postgres)
		if err != nil {
			return nil, err
		}
		a.DB = pool
		backend := credstore.NewPostgresBackend(pool, cfg.Namespace)
		if err := backend.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return backend, nil

	case config.StoreDriverFile, "":
		var opts []credstore.FileOption
		if cfg.Passphrase != "" {
			opts = append(opts, credstore.WithPassphrase(cfg.Passphrase))
		}
		return credstore.NewFileBackend(cfg.Path, opts...), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

func (a *App) openArchive(ctx context.Context) error {
	client, err := storage.NewMinIOClient(a.Config.MinIO)
	if err != nil {
		return err
	}
	if err := storage.EnsureBucket(ctx, client, a.Config.MinIO.Bucket, a.Config.MinIO.Region); err != nil {
		return err
	}
	a.Objects = client
	a.Archiver = report.NewArchiver(client, a.Config.MinIO.Bucket, a.Config.Report.URLTTL,
		report.WithArchiveLogger(a.Logger.Named("report")))
	return nil
}

// Dependencies returns the console router's dependencies.
func (a *App) Dependencies() server.Dependencies {
	deps := server.Dependencies{
		Config:      a.Config,
		Logger:      a.Logger,
		Store:       a.Store,
		ObjectStore: a.Objects,
		Auth:        a.Auth,
		Accounts:    a.Accounts,
		Cart:        a.Cart,
		Catalog:     a.Catalog,
		Orders:      a.Orders,
		Reviews:     a.Reviews,
		Reports:     a.Reports,
		Archiver:    a.Archiver,
	}
	if a.DB != nil {
		deps.DB = a.DB
	}
	return deps
}

// Close releases the database pool, if any.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
	}
}
