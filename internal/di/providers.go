package di

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"StockBoard/internal/domain/repository"
	"StockBoard/internal/handler/api"
	internalrepo "StockBoard/internal/repository"
	"StockBoard/internal/service/chartsource"
	"StockBoard/internal/symbols"
	"StockBoard/internal/usecase"
	"StockBoard/pkg/cache"
	"StockBoard/pkg/config"
	xhttp "StockBoard/pkg/http"
	"StockBoard/pkg/logger"
	"StockBoard/pkg/metrics"
	"StockBoard/pkg/server"
)

// MongoConn bundles the client (for shutdown) with the selected database.
type MongoConn struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideMongoConn connects to MongoDB and verifies the connection.
func ProvideMongoConn(cfg *config.Config) (*MongoConn, error) {
	client, db, err := internalrepo.NewMongoDatabase(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnTimeout)
	if err != nil {
		return nil, err
	}
	return &MongoConn{Client: client, DB: db}, nil
}

// ProvideCacheStore creates the Mongo-backed chart cache.
func ProvideCacheStore(conn *MongoConn) repository.CacheStore {
	return internalrepo.NewMongoCacheStore(conn.DB)
}

// ProvideMarketListRepo creates the ticker-universe repository.
func ProvideMarketListRepo(conn *MongoConn) repository.MarketListRepo {
	return internalrepo.NewMongoMarketListRepo(conn.DB)
}

// ProvideMetaStore creates the ticker metadata store.
func ProvideMetaStore(conn *MongoConn) repository.MetaStore {
	return internalrepo.NewMongoMetaStore(conn.DB)
}

// ProvideMetaService creates the memoized ticker metadata lookup.
func ProvideMetaService(store repository.MetaStore, l *logger.Logger) *symbols.MetaService {
	return symbols.NewMetaService(store, l)
}

// ProvideHistorySource creates the upstream chart client.
func ProvideHistorySource(cfg *config.Config, m repository.Metrics, l *logger.Logger) repository.HistorySource {
	return chartsource.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, cfg.Upstream.MaxRPS, m, l)
}

// ProvideHotCache creates the response cache: Redis-backed layered cache when
// enabled, in-process memory cache otherwise.
func ProvideHotCache(cfg *config.Config, l *logger.Logger) cache.Service {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache()
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		l.Warn("redis unavailable, using in-process cache", logger.Error(err))
		return cache.NewMemoryCache()
	}
	return cache.NewLayeredCache(rc)
}

// ProvideBulkPriceFetcher creates the batched price fetcher.
func ProvideBulkPriceFetcher(
	source repository.HistorySource,
	store repository.CacheStore,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.BulkPriceFetcher {
	return usecase.NewBulkPriceFetcher(
		source, store, m, l,
		cfg.Pipeline.BatchSize,
		cfg.Pipeline.MaxConcurrentBatches,
		cfg.Upstream.Timeout,
	)
}

// ProvideSparklinePipeline creates the sparkline fetch/render pipeline.
func ProvideSparklinePipeline(
	source repository.HistorySource,
	store repository.CacheStore,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.SparklinePipeline {
	return usecase.NewSparklinePipeline(
		source, store, m, l,
		cfg.Pipeline.MaxConcurrentSparks,
		cfg.Pipeline.SparklinePeriod,
		cfg.Pipeline.SparklineInterval,
		cfg.Pipeline.StalenessThreshold,
	)
}

// ProvideViewportLoader creates the incremental viewport enricher.
func ProvideViewportLoader(prices *usecase.BulkPriceFetcher, sparks *usecase.SparklinePipeline, cfg *config.Config) *usecase.ViewportLoader {
	return usecase.NewViewportLoader(prices, sparks,
		cfg.Pipeline.PageSize,
		cfg.Pipeline.Lookahead,
		"1d", "15m",
	)
}

// ProvideSweeper creates the periodic stale-entry sweeper.
func ProvideSweeper(store repository.CacheStore, m repository.Metrics, l *logger.Logger, cfg *config.Config) *usecase.Sweeper {
	return usecase.NewSweeper(store, m, l, cfg.Pipeline.SweepSchedule, cfg.Pipeline.SweepThreshold)
}

// ProvideHTTPHandler bundles the API handlers into one route registrar.
func ProvideHTTPHandler(
	l *logger.Logger,
	prices *usecase.BulkPriceFetcher,
	sparks *usecase.SparklinePipeline,
	lists repository.MarketListRepo,
	store repository.CacheStore,
	source repository.HistorySource,
	hot cache.Service,
	cfg *config.Config,
) xhttp.Handler {
	return xhttp.CombineHandlers(
		api.NewMarketHandler(l, prices, sparks, lists, store, hot),
		api.NewCacheHandler(l, store, source, cfg.Pipeline.SweepThreshold),
	)
}

// ProvideUniverseWarmer creates the startup cache warmer.
func ProvideUniverseWarmer(
	lists repository.MarketListRepo,
	viewport *usecase.ViewportLoader,
	meta *symbols.MetaService,
	l *logger.Logger,
) *usecase.UniverseWarmer {
	return usecase.NewUniverseWarmer(lists, viewport, meta, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	conn *MongoConn,
	sweeper *usecase.Sweeper,
	warmer *usecase.UniverseWarmer,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, conn.Client, sweeper, warmer, handler)
}
