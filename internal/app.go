package internal

import (
	"github.com/sadopc/newlife/internal/gateway"
	"github.com/sadopc/newlife/internal/providers"
	"github.com/sadopc/newlife/internal/service"
	"github.com/sadopc/newlife/internal/structures"
)

// App is everything a command needs once the process is wired.
type App struct {
	Config  *structures.Config
	Logger  providers.Logger
	Service *service.Service
	Gateway *gateway.Client
	Metrics *providers.MetricsServer
}

func NewApp(conf *structures.Config, logger providers.Logger, svc *service.Service, gw *gateway.Client, metrics *providers.MetricsServer) *App {
	logger.Infof(providers.TypeApp, "Starting %s (db=%s, ai=%v)", conf.AppName, conf.Storage.DBPath, gw.Enabled())
	return &App{
		Config:  conf,
		Logger:  logger,
		Service: svc,
		Gateway: gw,
		Metrics: metrics,
	}
}
