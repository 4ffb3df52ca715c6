//go:build wireinject
// +build wireinject

package di

import (
	"StockBoard/pkg/config"
	"StockBoard/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideMongoConn,
		ProvideHotCache,
		ProvideHistorySource,

		// Repositories
		ProvideCacheStore,
		ProvideMarketListRepo,
		ProvideMetaStore,

		// Use cases
		ProvideMetaService,
		ProvideBulkPriceFetcher,
		ProvideSparklinePipeline,
		ProvideViewportLoader,
		ProvideUniverseWarmer,
		ProvideSweeper,

		// HTTP surface
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
