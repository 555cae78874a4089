package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"hostconsole.io/provisioning/internal/pkg/logger"
)

// Start begins consuming report mail jobs. Without a River client it is a
// no-op, which lets inline and pool delivery run with no queue consumer.
func (a *Application) Start(ctx context.Context) error {
	if a.DB == nil || a.DB.RiverClient == nil {
		logger.Info("No River client configured, job consumption disabled")
		return nil
	}
	if err := a.DB.RiverClient.Start(ctx); err != nil {
		return fmt.Errorf("start river client: %w", err)
	}
	logger.Info("Consuming jobs", zap.Strings("modules", a.moduleNames()))
	return nil
}

type shutdownStep struct {
	name string
	run  func(ctx context.Context) error
}

// Shutdown stops job consumption before modules, and modules before the pools
// and database they use. Every step runs even when an earlier one fails; the
// failures are joined.
func (a *Application) Shutdown(ctx context.Context) error {
	var errs []error
	for _, step := range a.shutdownSteps() {
		if err := step.run(ctx); err != nil {
			logger.Warn("Shutdown step failed", zap.String("step", step.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			continue
		}
		logger.Debug("Shutdown step done", zap.String("step", step.name))
	}
	return errors.Join(errs...)
}

func (a *Application) shutdownSteps() []shutdownStep {
	var steps []shutdownStep
	if a.DB != nil && a.DB.RiverClient != nil {
		client := a.DB.RiverClient
		steps = append(steps, shutdownStep{"river", client.Stop})
	}
	for _, mod := range a.Modules {
		if mod != nil {
			steps = append(steps, shutdownStep{"module/" + mod.Name(), mod.Shutdown})
		}
	}
	if a.Pools != nil {
		pools := a.Pools
		steps = append(steps, shutdownStep{"worker pools", func(context.Context) error {
			pools.Shutdown()
			return nil
		}})
	}
	if a.DB != nil {
		db := a.DB
		steps = append(steps, shutdownStep{"database", func(context.Context) error {
			db.Close()
			return nil
		}})
	}
	return steps
}

func (a *Application) moduleNames() []string {
	names := make([]string, 0, len(a.Modules))
	for _, mod := range a.Modules {
		if mod != nil {
			names = append(names, mod.Name())
		}
	}
	return names
}
