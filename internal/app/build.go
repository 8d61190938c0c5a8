package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/evcraddock/realty/internal/auth"
	"github.com/evcraddock/realty/internal/cache"
	"github.com/evcraddock/realty/internal/config"
	"github.com/evcraddock/realty/internal/db"
	"github.com/evcraddock/realty/internal/imagehost"
	"github.com/evcraddock/realty/internal/property"
	"github.com/evcraddock/realty/internal/web"
)

const (
	// catalogKey is the cache key the server keeps the full catalog under.
	catalogKey = "properties"

	defaultConnectTimeout = 10 * time.Second
)

// closers runs cleanup functions in reverse order.
type closers []func() error

func (c *closers) add(fn func() error) { *c = append(*c, fn) }

func (c closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewServer builds the API server and everything behind it from cfg. The
// returned close function releases database and cache connections.
func NewServer(ctx context.Context, cfg *config.Config) (*web.Server, func() error, error) {
	var cleanup closers
	fail := func(err error) (*web.Server, func() error, error) {
		if cerr := cleanup.Close(); cerr != nil {
			slog.Warn("cleanup after failed start", "error", cerr)
		}
		return nil, nil, err
	}

	store, err := openStore(ctx, cfg.Storage, &cleanup)
	if err != nil {
		return fail(err)
	}

	var svcOpts []property.Option
	catalogCache, err := openCache(ctx, cfg.Cache, &cleanup)
	if err != nil {
		return fail(err)
	}
	if catalogCache != nil {
		svcOpts = append(svcOpts, property.WithCache(catalogCache))
	}
	svc := property.NewService(store, svcOpts...)

	host, uploadsDir, err := newImageHost(ctx, cfg)
	if err != nil {
		return fail(err)
	}

	admin, err := auth.NewAdmin(cfg.Admin.Auth())
	if err != nil {
		return fail(fmt.Errorf("init admin auth: %w", err))
	}

	var webOpts []web.Option
	if uploadsDir != "" {
		webOpts = append(webOpts, web.WithUploadsDir(uploadsDir))
	}
	return web.NewServer(svc, host, admin, webOpts...), cleanup.Close, nil
}

func openStore(ctx context.Context, cfg config.StorageConfig, cleanup *closers) (property.Store, error) {
	switch cfg.Driver {
	case config.StorageMongo:
		timeout := cfg.Mongo.ConnectTimeout
		if timeout <= 0 {
			timeout = defaultConnectTimeout
		}
		connectCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		cleanup.add(func() error { return client.Disconnect(context.Background()) })
		if err := client.Ping(connectCtx, nil); err != nil {
			return nil, fmt.Errorf("ping mongo: %w", err)
		}

		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		store, err := property.NewMongoStore(connectCtx, coll)
		if err != nil {
			return nil, err
		}
		slog.Info("storage ready", "driver", cfg.Driver, "database", cfg.Mongo.Database)
		return store, nil

	default:
		database, err := db.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		cleanup.add(database.Close)
		slog.Info("storage ready", "driver", cfg.Driver, "path", cfg.SQLite.Path)
		return property.NewSQLiteStore(database), nil
	}
}

func openCache(ctx context.Context, cfg config.CacheConfig, cleanup *closers) (*cache.TTLCache, error) {
	var backend cache.Backend
	switch cfg.Driver {
	case config.CacheNone:
		return nil, nil
	case config.CacheFile:
		fb, err := cache.NewFileBackend(cfg.Dir)
		if err != nil {
			return nil, err
		}
		backend = fb
	case config.CacheRedis:
		client, err := cache.DialRedis(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		cleanup.add(client.Close)
		backend = cache.NewRedisBackend(client, cfg.Redis.Prefix)
	default:
		backend = cache.NewMemoryBackend()
	}
	slog.Info("catalog cache ready", "driver", cfg.Driver, "ttl", cfg.TTL.String())
	return cache.New(backend, catalogKey, cfg.TTL), nil
}

// newImageHost returns the host and, for the local driver, the directory
// to serve under /uploads/.
func newImageHost(ctx context.Context, cfg *config.Config) (*imagehost.Host, string, error) {
	var (
		uploader   imagehost.Uploader
		uploadsDir string
	)
	switch cfg.Images.Driver {
	case config.ImagesMinIO:
		u, err := imagehost.NewMinIOUploader(ctx, cfg.Images.MinIO.MinIO())
		if err != nil {
			return nil, "", err
		}
		uploader = u
	case config.ImagesHTTP:
		u, err := imagehost.NewHTTPUploader(cfg.Images.HTTP.APIKey)
		if err != nil {
			return nil, "", err
		}
		uploader = u
	default:
		u, err := imagehost.NewLocalUploader(cfg.Images.Local.Dir, cfg.App.HTTP.BaseURL)
		if err != nil {
			return nil, "", err
		}
		uploader = u
		uploadsDir = u.Dir()
	}
	slog.Info("image host ready", "driver", cfg.Images.Driver)
	return imagehost.NewHost(imagehost.NewProcessor(cfg.Images.MaxDimension), uploader), uploadsDir, nil
}
