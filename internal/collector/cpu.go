// CPU utilization collector. Uses gopsutil for cross-platform CPU metrics.
package collector

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// cpuSampleWindow is the blocking observation window for the CPU
// measurement. An instantaneous CPU percentage is meaningless, so Collect
// deliberately blocks for this long; the cycle absorbs the delay.
const cpuSampleWindow = time.Second

// CPUCollector collects overall CPU utilization.
type CPUCollector struct{}

// NewCPUCollector creates a new CPU collector.
func NewCPUCollector() *CPUCollector {
	return &CPUCollector{}
}

// Name returns the collector identifier.
func (c *CPUCollector) Name() string { return "cpu" }

// Collect measures CPU utilization over a 1-second window and returns the
// overall percentage as a float64.
func (c *CPUCollector) Collect(ctx context.Context) (interface{}, error) {
	percents, err := cpu.PercentWithContext(ctx, cpuSampleWindow, false)
	if err != nil {
		return nil, err
	}
	if len(percents) == 0 {
		return float64(0), nil
	}
	return percents[0], nil
}

// IsAvailable returns true — CPU metrics are available on all platforms.
func (c *CPUCollector) IsAvailable() bool { return true }
