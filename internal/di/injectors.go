//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"github.com/sadopc/newlife/internal"
	"github.com/sadopc/newlife/internal/providers"
	"github.com/sadopc/newlife/internal/structures"
)

func InitApp(flags *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		ProvideLogger,
		providers.NewMetricsProvider,
		providers.NewMetricsServer,
		providers.NewInstrumentedCacheProvider,

		ProvideStore,
		ProvideGateway,
		ProvideService,
		internal.NewApp,
	)

	return nil, nil, nil
}
