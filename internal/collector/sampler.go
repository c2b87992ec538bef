// Snapshot assembly: maps collector results into a unified MetricsSnapshot.
package collector

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/curo-sh/curo/internal/models"
)

// Sampler produces metric snapshots from a collector registry.
type Sampler struct {
	registry *Registry
	logger   *zap.Logger
}

// NewSampler builds a sampler with the standard host collectors registered
// in their sampling order: cpu, memory, disk, network, processes. diskPath
// is the mount point the disk collector watches.
func NewSampler(diskPath string, logger *zap.Logger) *Sampler {
	registry := NewRegistry(logger)
	registry.Register(NewCPUCollector())
	registry.Register(NewMemoryCollector())
	registry.Register(NewDiskCollector(diskPath))
	registry.Register(NewNetworkCollector())
	registry.Register(NewProcessCountCollector())
	return NewSamplerWithRegistry(registry, logger)
}

// NewSamplerWithRegistry builds a sampler over a caller-assembled registry.
func NewSamplerWithRegistry(registry *Registry, logger *zap.Logger) *Sampler {
	return &Sampler{
		registry: registry,
		logger:   logger,
	}
}

// Sample captures one snapshot. It never fails: fields whose collector
// errored keep their zero value and the collector's name is returned in
// degraded. A partial snapshot is still useful to the decision stage; no
// snapshot at all is not. Sampling blocks for the CPU observation window.
func (s *Sampler) Sample(ctx context.Context) (models.MetricsSnapshot, []string) {
	results, degraded := s.registry.CollectAll(ctx)

	snapshot := models.MetricsSnapshot{
		Timestamp: time.Now().UTC(),
	}

	// CPU
	if data, ok := results["cpu"]; ok {
		if pct, ok := data.(float64); ok {
			snapshot.CPUPercent = pct
		}
	}

	// Memory
	if data, ok := results["memory"]; ok {
		if mem, ok := data.(models.MemoryStats); ok {
			snapshot.Memory = mem
		}
	}

	// Disk
	if data, ok := results["disk"]; ok {
		if disk, ok := data.(models.DiskStats); ok {
			snapshot.Disk = disk
		}
	}

	// Network
	if data, ok := results["network"]; ok {
		if net, ok := data.(models.NetworkStats); ok {
			snapshot.Network = net
		}
	}

	// Processes
	if data, ok := results["processes"]; ok {
		if count, ok := data.(int); ok {
			snapshot.ProcessCount = count
		}
	}

	s.logger.Debug("Sampled metrics",
		zap.Time("timestamp", snapshot.Timestamp),
		zap.Int("degraded", len(degraded)))

	return snapshot, degraded
}
