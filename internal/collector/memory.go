// Memory usage collector. Uses gopsutil for cross-platform memory metrics.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/curo-sh/curo/internal/models"
)

// MemoryCollector collects virtual memory usage.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Name returns the collector identifier.
func (c *MemoryCollector) Name() string { return "memory" }

// Collect gathers memory usage data (total bytes, used bytes, used percent).
func (c *MemoryCollector) Collect(ctx context.Context) (interface{}, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return models.MemoryStats{
		Total:   v.Total,
		Used:    v.Used,
		Percent: v.UsedPercent,
	}, nil
}

// IsAvailable returns true — memory metrics are available on all platforms.
func (c *MemoryCollector) IsAvailable() bool { return true }
