package main

import (
	"github.com/ZilDuck/stacks-asset-marketplace/internal/config"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/config/di"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/daemon"
	"go.uber.org/zap"
)

func main() {
	config.Init()
	cfg := *config.Get()

	container, err := di.NewContainer(cfg)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	if err := daemon.NewDaemon(cfg, container).Execute(); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Marketplace daemon failed")
	}
}
