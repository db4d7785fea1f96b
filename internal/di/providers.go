package di

import (
	"context"
	"fmt"

	"github.com/sadopc/newlife/internal/gateway"
	"github.com/sadopc/newlife/internal/providers"
	"github.com/sadopc/newlife/internal/service"
	"github.com/sadopc/newlife/internal/store"
	"github.com/sadopc/newlife/internal/structures"
)

func ProvideLogger(conf *structures.Config) (providers.Logger, func(), error) {
	logger, err := providers.NewLogProvider(conf)
	if err != nil {
		return nil, nil, err
	}
	return logger, logger.Close, nil
}

func ProvideStore(conf *structures.Config, cache providers.CacheProviderInterface, logger providers.Logger) (*store.Store, func(), error) {
	s, err := store.New(conf.Storage.DBPath, store.WithCache(cache))
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", conf.Storage.DBPath, err)
	}
	cleanup := func() {
		if err := s.Close(); err != nil {
			logger.Errorf(providers.TypeStore, "Close store: %s", err)
		}
	}
	return s, cleanup, nil
}

func ProvideGateway(conf *structures.Config) *gateway.Client {
	return gateway.NewClient(conf.Gateway)
}

// ProvideService builds the service and loads the persisted state.
func ProvideService(s *store.Store, gw *gateway.Client, logger providers.Logger, metrics providers.MetricsProviderInterface) (*service.Service, error) {
	svc := service.New(s, gw, logger, metrics)
	if err := svc.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return svc, nil
}
