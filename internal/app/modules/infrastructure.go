package modules

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/riverqueue/river"

	"hostconsole.io/provisioning/internal/config"
	"hostconsole.io/provisioning/internal/infrastructure"
	"hostconsole.io/provisioning/internal/metrics"
	"hostconsole.io/provisioning/internal/pkg/worker"
)

// Infrastructure holds shared cross-cutting dependencies for all modules.
// It is a provider, not a Module.
type Infrastructure struct {
	Config   *config.Config
	DB       *infrastructure.DatabaseClients
	Pools    *worker.Pools
	Registry *prometheus.Registry
}

// NewInfrastructure initializes DB, worker pools and the metrics registry.
func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize: cfg.Worker.GeneralPoolSize,
		MailPoolSize:    cfg.Worker.MailPoolSize,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	reg, err := NewRegistry(pools)
	if err != nil {
		pools.Shutdown()
		db.Close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return &Infrastructure{
		Config:   cfg,
		DB:       db,
		Pools:    pools,
		Registry: reg,
	}, nil
}

// NewRegistry creates a registry with process, Go runtime and pool
// collectors. pools may be nil.
func NewRegistry(pools *worker.Pools) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	if pools != nil {
		if err := metrics.RegisterPoolCollector(reg, pools); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// InitRiver initializes River client on top of a prepared worker registry.
func (i *Infrastructure) InitRiver(workers *river.Workers) error {
	if i == nil || i.DB == nil || i.Config == nil {
		return fmt.Errorf("infrastructure is not initialized")
	}
	if err := i.DB.InitRiverClient(workers, i.Config.River); err != nil {
		return fmt.Errorf("init river: %w", err)
	}
	return nil
}

// RiverClient returns the River client, or nil before InitRiver.
func (i *Infrastructure) RiverClient() *river.Client[pgx.Tx] {
	if i == nil || i.DB == nil {
		return nil
	}
	return i.DB.RiverClient
}

// Close releases infra resources in reverse dependency order.
func (i *Infrastructure) Close() {
	if i == nil {
		return
	}
	if i.Pools != nil {
		i.Pools.Shutdown()
	}
	if i.DB != nil {
		i.DB.Close()
	}
}
