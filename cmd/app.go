package cmd

import (
	"context"
	"fmt"

	"stash-pricer/core/config"
	"stash-pricer/core/database"
	"stash-pricer/core/items"
	"stash-pricer/core/logger"
	"stash-pricer/core/setindex"
	"stash-pricer/core/stats"
	"stash-pricer/core/storage"
	"stash-pricer/core/store"
	"stash-pricer/feature/builds"
	"stash-pricer/feature/ingest"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds the components every command wires the same way.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	store   *store.SQLStore
	builder *items.Builder
	index   *setindex.Index // nil unless index.backend is setindex

	client storage.Client
}

// bootstrap loads configuration and connects the primary store.
func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}
	logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver), zap.String("name", cfg.Database.Name))

	normalizer, err := stats.FromConfig(cfg.Stats)
	if err != nil {
		return nil, fmt.Errorf("failed to load stat dataset: %w", err)
	}
	classifier, err := items.ClassifierFromConfig(cfg.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to load base types: %w", err)
	}
	logg.Debug("Normalization tables loaded", zap.Int("stats", normalizer.Len()), zap.Int("bases", classifier.Len()))

	a := &app{
		cfg:     cfg,
		log:     logg,
		db:      db,
		store:   store.NewSQLStore(db, cfg.Database.BatchSize),
		builder: items.NewBuilder(normalizer, classifier),
	}

	switch cfg.Index.Backend {
	case "", "sql":
	case "setindex":
		a.index = setindex.New(a.store, cfg.Index.Threshold, logg.Named("setindex"))
	default:
		return nil, fmt.Errorf("unsupported index backend: %s", cfg.Index.Backend)
	}
	return a, nil
}

// migrate creates or updates every table.
func (a *app) migrate() error {
	if err := a.store.Migrate(); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}
	if err := builds.NewQueue(a.db).Migrate(); err != nil {
		return fmt.Errorf("migrate builds: %w", err)
	}
	return nil
}

// objects connects the object storage client on first use.
func (a *app) objects(ctx context.Context) (storage.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	client, err := storage.NewClient(a.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if err := storage.EnsureBucket(ctx, client, a.cfg.Storage.Bucket, a.cfg.Storage.Region); err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

// searcher returns the configured search backend.
func (a *app) searcher() store.Searcher {
	if a.index != nil {
		return a.index
	}
	return a.store
}

// restoreIndex loads the saved snapshot into the set-index. Failures leave
// the index to build lazily from the primary.
func (a *app) restoreIndex(ctx context.Context) {
	if a.index == nil || a.cfg.Index.SnapshotObject == "" {
		return
	}
	client, err := a.objects(ctx)
	if err == nil {
		err = a.index.Restore(ctx, client, a.cfg.Storage.Bucket, a.cfg.Index.SnapshotObject)
	}
	if err != nil {
		a.log.Warn("Set index snapshot not restored, building on first use", zap.Error(err))
	}
}

// feed creates the configured stash feed source.
func (a *app) feed(ctx context.Context) (ingest.Feed, error) {
	switch a.cfg.Ingest.Source {
	case "", "http":
		return ingest.NewHTTPFeed(a.cfg.Ingest), nil
	case "object":
		client, err := a.objects(ctx)
		if err != nil {
			return nil, err
		}
		return ingest.NewObjectFeed(client, a.cfg.Storage.Bucket, a.cfg.Ingest.ObjectPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported ingest source: %s", a.cfg.Ingest.Source)
	}
}

// pipeline creates the ingestion pipeline, feeding the set-index when on.
func (a *app) pipeline() *ingest.Pipeline {
	p := ingest.NewPipeline(a.store, a.builder, a.cfg.Ingest, a.log.Named("ingest"))
	if a.index != nil {
		p = p.WithIndex(a.index)
	}
	return p
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
