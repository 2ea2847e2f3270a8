//go:build wireinject
// +build wireinject

package di

import (
	"FlowScan/internal/domain/repository"
	internalrepo "FlowScan/internal/repository"
	"FlowScan/pkg/config"
	"FlowScan/pkg/metrics"
	"FlowScan/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),

		// Sources
		ProvideBinanceClient,
		ProvideCoinMarketCapClient,

		// Sinks
		ProvideSinks,
		wire.Bind(new(repository.ReportSink), new(*internalrepo.Fanout)),

		// Use cases
		ProvideUniverseResolver,
		ProvideFetcher,
		ProvideScanner,
		ProvideSnapshotStore,
		ProvideCycleScheduler,

		// Application server
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}
