// Process count collector. Uses gopsutil for cross-platform process listing.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessCountCollector counts the processes visible on the host. The count
// feeds the snapshot as a cheap load indicator; per-process details are only
// gathered when an action needs them.
type ProcessCountCollector struct{}

// NewProcessCountCollector creates a new process count collector.
func NewProcessCountCollector() *ProcessCountCollector {
	return &ProcessCountCollector{}
}

// Name returns the collector identifier.
func (c *ProcessCountCollector) Name() string { return "processes" }

// Collect returns the number of live process IDs.
func (c *ProcessCountCollector) Collect(ctx context.Context) (interface{}, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return len(pids), nil
}

// IsAvailable returns true — process listing is available on all platforms.
func (c *ProcessCountCollector) IsAvailable() bool { return true }
