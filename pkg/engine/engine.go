// Package engine wires the coach engine's components together for embedding
// in servers and CLIs.
package engine

import (
	"context"
	"fmt"

	"github.com/liftlab/coach-engine/internal/cache"
	"github.com/liftlab/coach-engine/internal/chat"
	"github.com/liftlab/coach-engine/internal/config"
	"github.com/liftlab/coach-engine/internal/llm"
	"github.com/liftlab/coach-engine/internal/observability"
	"github.com/liftlab/coach-engine/internal/recommend"
	"github.com/liftlab/coach-engine/internal/retrieval"
	"github.com/liftlab/coach-engine/internal/storage"
)

// Engine bundles the constructed components of the coach engine. Construct
// once per process; all request-path components are safe for concurrent use.
type Engine struct {
	Logger      *observability.Logger
	DB          *storage.DB
	Knowledge   *storage.KnowledgeRepository
	Feedback    *storage.FeedbackRepository
	Completer   llm.Completer
	Retriever   *retrieval.Retriever
	Resolver    *chat.Resolver
	Recommender *recommend.Engine

	cacheClient cache.Client
}

// New constructs the engine from configuration. Fails when the database
// cannot be opened or the workout catalog is missing.
func New(cfg *config.Config, logger *observability.Logger) (*Engine, error) {
	db, err := storage.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	if db.Driver == storage.DriverSQLite && !db.FTSAvailable() {
		logger.Warn().Msg("fts5 module missing, knowledge search will use the substring path " +
			"(build with -tags sqlite_fts5 to enable full-text search)")
	}

	knowledge := storage.NewKnowledgeRepository(db)
	feedback := storage.NewFeedbackRepository(db)

	var completer llm.Completer = llm.Disabled{}
	if cfg.LLM.Enabled {
		completer = llm.NewClient(llm.Config{
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		})
	}

	cacheClient := newCacheClient(cfg.Cache, logger)

	retriever := retrieval.NewRetriever(knowledge, logger, cfg.Retrieval.MaxKeywords)
	resolver := chat.NewResolver(retriever, completer, logger,
		chat.WithAnswerCache(cacheClient, cfg.Cache.TTL))

	recommender, err := recommend.NewEngine(cfg.Catalog.Path, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Engine{
		Logger:      logger,
		DB:          db,
		Knowledge:   knowledge,
		Feedback:    feedback,
		Completer:   completer,
		Retriever:   retriever,
		Resolver:    resolver,
		Recommender: recommender,
		cacheClient: cacheClient,
	}, nil
}

// newCacheClient builds the configured cache driver, falling back to the
// in-process cache when Redis is unreachable.
func newCacheClient(cfg config.CacheConfig, logger *observability.Logger) cache.Client {
	if cfg.Driver == "redis" {
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err == nil {
			return client
		}
		logger.Warn().Err(err).Msg("redis unavailable, using in-memory answer cache")
	}
	return cache.NewMemoryClient(1024)
}

// Ping verifies database connectivity.
func (e *Engine) Ping(ctx context.Context) error {
	return e.DB.PingContext(ctx)
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	if e.cacheClient != nil {
		e.cacheClient.Close()
	}
	return e.DB.Close()
}
