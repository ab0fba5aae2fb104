package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mrdaeback/voice-order/internal/agent/graph"
	"github.com/mrdaeback/voice-order/internal/catalog"
	"github.com/mrdaeback/voice-order/internal/dialogue"
	"github.com/mrdaeback/voice-order/internal/events"
	"github.com/mrdaeback/voice-order/internal/repo"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

type orderPublisher interface {
	dialogue.OrderEvents
	Close() error
}

// app holds the wired components shared by the serve and chat commands.
type app struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	users     *repo.Users
	cache     *repo.CachedCatalog
	resolver  *catalog.Resolver
	publisher orderPublisher
	runner    graph.Runner
}

func newApp(ctx context.Context, cfg AppConfig) (*app, error) {
	pool, err := cfg.Database.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a := &app{pool: pool, publisher: events.Noop{}}

	if cfg.AutoMigrate {
		n, err := repo.Migrate(ctx, pool)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logx.Info().Int("applied", n).Msg("migrations up to date")
	}

	a.rdb, err = cfg.Redis.New(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	if cfg.Events.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.OrderSubject)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.publisher = pub
	} else {
		logx.Info().Msg("NATS_URL not set, order events disabled")
	}

	a.users = repo.NewUsers(pool)
	a.cache = repo.NewCachedCatalog(a.rdb, repo.NewPostgresCatalog(pool), cfg.CatalogCacheTTL)
	a.resolver = catalog.NewResolver(a.cache)
	if err := a.resolver.Warm(ctx); err != nil {
		logx.Warn().Err(err).Msg("catalog warm-up failed, retrying on first turn")
	}

	engine := dialogue.NewEngine(a.resolver, repo.NewProducts(pool), repo.NewOrders(pool),
		dialogue.WithOrderEvents(a.publisher))

	a.runner, err = graph.BuildOrderGraph(ctx, graph.Config{
		APIKey:        cfg.APIKey,
		BaseURL:       cfg.BaseURL,
		OrderModel:    cfg.OrderModel,
		Transcription: cfg.Transcription,
		OrderPrompt:   cfg.Prompt,
		Conversation:  cfg.Conversation,
		Catalog:       a.resolver,
		Dialogue:      engine,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build order graph: %w", err)
	}
	return a, nil
}

func (a *app) Close() {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
