// Disk usage collector. Uses gopsutil for cross-platform disk metrics.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/curo-sh/curo/internal/models"
)

// DiskCollector collects usage for a single mount point. The remediation
// rules watch one filesystem (normally the root), not every partition.
type DiskCollector struct {
	path string
}

// NewDiskCollector creates a disk collector for the given mount point.
func NewDiskCollector(path string) *DiskCollector {
	return &DiskCollector{path: path}
}

// Name returns the collector identifier.
func (c *DiskCollector) Name() string { return "disk" }

// Collect gathers usage data for the configured mount point.
func (c *DiskCollector) Collect(ctx context.Context) (interface{}, error) {
	usage, err := disk.UsageWithContext(ctx, c.path)
	if err != nil {
		return nil, err
	}
	return models.DiskStats{
		Path:    c.path,
		Total:   usage.Total,
		Used:    usage.Used,
		Percent: usage.UsedPercent,
	}, nil
}

// IsAvailable returns true — disk metrics are available on all platforms.
func (c *DiskCollector) IsAvailable() bool { return true }
