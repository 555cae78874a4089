package modules

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"hostconsole.io/provisioning/internal/config"
	"hostconsole.io/provisioning/internal/metrics"
	"hostconsole.io/provisioning/internal/pkg/logger"
	"hostconsole.io/provisioning/internal/pxeloader"
)

// LoaderModule owns the PXE loader engine.
type LoaderModule struct {
	Support *pxeloader.Support
}

// NewLoaderModule builds the loader engine from configuration.
func NewLoaderModule(infra *Infrastructure) (*LoaderModule, error) {
	support, err := NewLoaderSupport(infra.Config.Loader, infra.Registry, logger.Named("pxeloader"))
	if err != nil {
		return nil, err
	}
	return &LoaderModule{Support: support}, nil
}

// NewLoaderSupport assembles catalog, policy and observer. A nil registerer
// disables metrics.
func NewLoaderSupport(cfg config.LoaderConfig, reg prometheus.Registerer, log *zap.Logger) (*pxeloader.Support, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("load loader catalog: %w", err)
	}

	policy, err := pxeloader.PolicyByName(cfg.PreferencePolicy, cfg.PrecedenceKinds())
	if err != nil {
		return nil, err
	}

	opts := []pxeloader.Option{
		pxeloader.WithCatalog(catalog),
		pxeloader.WithPolicy(policy),
		pxeloader.WithLogger(log),
	}
	if reg != nil {
		observer, err := metrics.NewLoaderObserver(reg)
		if err != nil {
			return nil, fmt.Errorf("register loader metrics: %w", err)
		}
		opts = append(opts, pxeloader.WithObserver(observer))
	}

	log.Info("PXE loader engine ready",
		zap.Stringers("kinds", catalog.Kinds()),
		zap.String("policy", cfg.PreferencePolicy),
		zap.String("catalog_file", cfg.CatalogFile),
	)
	return pxeloader.New(opts...), nil
}

func (m *LoaderModule) Name() string { return "pxeloader" }

func (m *LoaderModule) RegisterWorkers(*river.Workers) {}

func (m *LoaderModule) Shutdown(context.Context) error { return nil }
