package scitokens

import (
	"context"
	"fmt"
	"os"
)

// Reconfigure parses an audience configuration source and, on success,
// replaces the whole audience list atomically. On any parse failure the
// previous configuration stays in effect and the wrapped [ErrConfig] is
// returned for the operator; the process keeps serving with the stale but
// valid list. Safe to call while decisions are in flight.
func (e *Engine) Reconfigure(src []byte) error {
	audiences, err := parseAudienceConfig(src)
	if err != nil {
		e.metricInc(MetricConfigErrors)
		e.logger.Error("audience configuration rejected", "error", err)
		e.emitConfig(context.Background(), 0, err)
		return err
	}

	e.audiences.Store(&audiences)
	e.metricInc(MetricConfigReloads)
	e.logger.Info("audience configuration reloaded", "audiences", len(audiences))
	e.emitConfig(context.Background(), len(audiences), nil)
	return nil
}

// ReconfigureFile reads path and applies [Engine.Reconfigure]. An unreadable
// file is a configuration error: reported, previous configuration retained.
func (e *Engine) ReconfigureFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		wrapped := fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
		e.metricInc(MetricConfigErrors)
		e.logger.Error("audience configuration rejected", "error", wrapped)
		e.emitConfig(context.Background(), 0, wrapped)
		return wrapped
	}
	return e.Reconfigure(data)
}
