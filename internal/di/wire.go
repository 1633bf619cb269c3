//go:build wireinject
// +build wireinject

package di

import (
	"GridPull/pkg/config"
	"GridPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories (with business logic)
		ProvideLMPStorage,
		ProvideLMPPublisher,
		ProvidePJMFeed,

		// Use cases
		ProvideObservationProcessor,
		ProvideObservationCollector,
		ProvideKafkaLMPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
