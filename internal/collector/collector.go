// Package collector samples host resource metrics into a MetricsSnapshot.
// Each metric is gathered by its own Collector; the Registry runs them in a
// fixed order and the Sampler assembles their results into one snapshot.
// A failing collector degrades its field to the zero value instead of
// failing the whole sample.
package collector

import (
	"context"

	"go.uber.org/zap"
)

// Collector is the interface that all metric collectors must implement.
// Each collector gathers a specific type of host metric.
type Collector interface {
	// Name returns the unique identifier for this collector.
	Name() string

	// Collect gathers the metric data and returns it.
	// The context allows for cancellation and timeout control.
	Collect(ctx context.Context) (interface{}, error)

	// IsAvailable checks if this collector can run on the current platform.
	// Collectors that return false will not be registered.
	IsAvailable() bool
}

// Registry holds registered collectors in registration order.
type Registry struct {
	collectors []Collector
	logger     *zap.Logger
}

// NewRegistry creates a new collector registry with the given logger.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		collectors: make([]Collector, 0),
		logger:     logger,
	}
}

// Register adds a collector if it's available on the current platform.
// Unavailable collectors are logged and skipped.
func (r *Registry) Register(c Collector) {
	if c.IsAvailable() {
		r.collectors = append(r.collectors, c)
		r.logger.Info("Registered collector", zap.String("name", c.Name()))
	} else {
		r.logger.Warn("Collector not available, skipping", zap.String("name", c.Name()))
	}
}

// CollectAll runs every registered collector sequentially, in registration
// order, and returns a map of collector name -> result data. One collector
// at a time keeps the sampling load predictable and the log order stable.
// Failed collectors are logged, returned in the degraded list, and omitted
// from the results; they never prevent the others from completing.
func (r *Registry) CollectAll(ctx context.Context) (map[string]interface{}, []string) {
	results := make(map[string]interface{}, len(r.collectors))
	var degraded []string

	for _, c := range r.collectors {
		data, err := c.Collect(ctx)
		if err != nil {
			r.logger.Warn("Collection degraded",
				zap.String("collector", c.Name()),
				zap.Error(err))
			degraded = append(degraded, c.Name())
			continue
		}
		results[c.Name()] = data
	}

	return results, degraded
}

// Collectors returns a copy of all registered collectors.
func (r *Registry) Collectors() []Collector {
	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}
