// Network I/O collector. Uses gopsutil for cross-platform network metrics.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/curo-sh/curo/internal/models"
)

// NetworkCollector collects aggregate network I/O counters summed across all
// interfaces. Counters are monotonic since boot; no delta is computed here,
// so the collector holds no state between samples.
type NetworkCollector struct{}

// NewNetworkCollector creates a new network collector.
func NewNetworkCollector() *NetworkCollector {
	return &NetworkCollector{}
}

// Name returns the collector identifier.
func (c *NetworkCollector) Name() string { return "network" }

// Collect gathers aggregate byte and packet counters.
func (c *NetworkCollector) Collect(ctx context.Context) (interface{}, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(counters) == 0 {
		return models.NetworkStats{}, nil
	}

	total := counters[0]
	return models.NetworkStats{
		BytesSent:   total.BytesSent,
		BytesRecv:   total.BytesRecv,
		PacketsSent: total.PacketsSent,
		PacketsRecv: total.PacketsRecv,
	}, nil
}

// IsAvailable returns true — network metrics are available on all platforms.
func (c *NetworkCollector) IsAvailable() bool { return true }
