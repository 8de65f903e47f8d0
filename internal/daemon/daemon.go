package daemon

import (
	"context"
	"errors"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/config"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/config/di"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	shutdownTimeout        = 10 * time.Second
	defaultPersistInterval = 5 * time.Second
)

type Daemon struct {
	cfg       config.Config
	container *di.Container
}

func NewDaemon(cfg config.Config, container *di.Container) *Daemon {
	return &Daemon{cfg, container}
}

// Execute boots the contracts, serves the API and persists the action index
// until the process is signalled.
func (d *Daemon) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return d.Run(ctx)
}

func (d *Daemon) Run(ctx context.Context) error {
	if err := d.container.Boot(); err != nil {
		zap.L().With(zap.Error(err)).Error("Daemon: Failed to boot contracts")
		return err
	}

	if err := d.container.GetElastic().InstallMappings(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:    ":" + d.cfg.ApiPort,
		Handler: d.container.GetApi().Router(),
	}

	serverErr := make(chan error, 1)
	go func() {
		zap.L().With(zap.String("port", d.cfg.ApiPort)).Info("Daemon: API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	zap.L().With(
		zap.String("registry", string(d.cfg.RegistryPrincipal())),
		zap.String("marketplace", string(d.cfg.MarketplacePrincipal())),
	).Info("Daemon: Started")

	err := d.persistLoop(ctx, serverErr)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		zap.L().With(zap.Error(shutdownErr)).Warn("Daemon: Failed to shutdown API")
	}

	if deleteErr := d.container.Delete(); deleteErr != nil {
		zap.L().With(zap.Error(deleteErr)).Warn("Daemon: Failed to close services")
	}
	zap.L().Info("Daemon: Stopped")

	return err
}

func (d *Daemon) persistLoop(ctx context.Context, serverErr <-chan error) error {
	interval := d.cfg.PersistInterval
	if interval <= 0 {
		interval = defaultPersistInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-serverErr:
			if ok {
				zap.L().With(zap.Error(err)).Error("Daemon: API failed")
				return err
			}
			return nil
		case <-ticker.C:
			if persisted := d.container.GetElastic().Persist(); persisted > 0 {
				zap.L().With(zap.Int("actions", persisted)).Info("Daemon: Persisted actions")
			}
		}
	}
}
