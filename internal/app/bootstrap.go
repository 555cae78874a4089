// Package app is the composition root of the console worker.
// Bootstrap stays orchestration-only; modules own their dependencies.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riverqueue/river"

	"hostconsole.io/provisioning/internal/app/modules"
	"hostconsole.io/provisioning/internal/config"
	"hostconsole.io/provisioning/internal/infrastructure"
	"hostconsole.io/provisioning/internal/notification"
	"hostconsole.io/provisioning/internal/pkg/worker"
	"hostconsole.io/provisioning/internal/pxeloader"
)

// Application holds composed application dependencies.
type Application struct {
	Config   *config.Config
	DB       *infrastructure.DatabaseClients
	Pools    *worker.Pools
	Registry *prometheus.Registry

	// Loader answers firmware, kind and preferred-loader queries.
	Loader *pxeloader.Support

	// Reports is invoked by the report ingestion path after each save.
	Reports *notification.ReportObserver

	Modules []modules.Module
}

// Bootstrap initializes all dependencies using module-oriented manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	infra, err := modules.NewInfrastructure(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}

	loaderModule, err := modules.NewLoaderModule(infra)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("init loader module: %w", err)
	}
	notificationModule, err := modules.NewNotificationModule(infra)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("init notification module: %w", err)
	}

	allModules := []modules.Module{loaderModule, notificationModule}

	workers := river.NewWorkers()
	for _, mod := range allModules {
		mod.RegisterWorkers(workers)
	}
	if err := infra.InitRiver(workers); err != nil {
		infra.Close()
		return nil, fmt.Errorf("init river workers: %w", err)
	}

	reports, err := notificationModule.ReportObserver(infra)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("init report observer: %w", err)
	}

	return &Application{
		Config:   cfg,
		DB:       infra.DB,
		Pools:    infra.Pools,
		Registry: infra.Registry,
		Loader:   loaderModule.Support,
		Reports:  reports,
		Modules:  allModules,
	}, nil
}

// MetricsHandler serves the application registry in the Prometheus
// exposition format.
func (a *Application) MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	if a.Registry == nil {
		mux.Handle("/metrics", promhttp.Handler())
	} else {
		mux.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{Registry: a.Registry}))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
