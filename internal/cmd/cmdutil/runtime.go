// Package cmdutil builds the shared pieces every command needs: validated
// config, the logger, the metrics recorder and the tabs service.
package cmdutil

import (
	"context"
	"fmt"

	"github.com/Iron-Ham/filterbox/internal/config"
	"github.com/Iron-Ham/filterbox/internal/logging"
	"github.com/Iron-Ham/filterbox/internal/metrics"
	"github.com/Iron-Ham/filterbox/internal/tabs"
)

// Runtime holds what a command run shares between components.
type Runtime struct {
	Config  *config.Config
	Logger  *logging.Logger
	Metrics *metrics.Recorder

	server *metrics.Server
}

// Setup loads the config and starts logging and, when enabled, the metrics
// endpoint. Callers must Close the runtime.
func Setup() (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return New(cfg)
}

// New builds a runtime from an already loaded config.
func New(cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{
		Config:  cfg,
		Logger:  logging.NopLogger(),
		Metrics: metrics.NewRecorder(),
	}

	if cfg.Logging.Enabled {
		logger, err := logging.NewLogger(cfg.Logging.ResolveDir(), cfg.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("failed to open log: %w", err)
		}
		rt.Logger = logger
	}

	if cfg.Metrics.Enabled {
		srv, err := rt.Metrics.Listen(cfg.Metrics.Address, rt.Logger)
		if err != nil {
			_ = rt.Logger.Close()
			return nil, fmt.Errorf("failed to start metrics endpoint: %w", err)
		}
		rt.server = srv
		go func() {
			if err := srv.Serve(); err != nil {
				rt.Logger.Error("metrics endpoint stopped", "error", err)
			}
		}()
	}

	return rt, nil
}

// TabsService builds the tabs service for the configured saving mode.
func (r *Runtime) TabsService() (*tabs.Service, error) {
	tc := r.Config.Tabs
	mode, err := tabs.ParseSavingMode(tc.SavingMode)
	if err != nil {
		return nil, err
	}

	// The local store backs SignOut cleanup in every mode.
	local, err := tabs.NewLocalStore(tc.ResolveStoreDir(), tc.Application, tc.ResolveUser())
	if err != nil {
		return nil, err
	}

	opts := tabs.Options{
		Mode:      mode,
		Local:     local,
		SaveDelay: tc.SaveDelay(),
		Logger:    r.Logger,
		Observer:  r.Metrics,
	}
	if mode == tabs.SavingRemote {
		remote, err := tabs.NewRemoteStore(tc.RemoteURL, tc.Timeout())
		if err != nil {
			return nil, err
		}
		opts.Remote = remote
	}
	return tabs.NewService(opts)
}

// Close stops the metrics endpoint and closes the log.
func (r *Runtime) Close(ctx context.Context) error {
	var err error
	if r.server != nil {
		err = r.server.Shutdown(ctx)
	}
	if cerr := r.Logger.Close(); err == nil {
		err = cerr
	}
	return err
}
