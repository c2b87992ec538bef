// Package daemon runs the monitor-decide-execute-log cycle. Each cycle
// samples the host, obtains a decision, executes the decided actions in
// order, and records every step in the audit log. Failures are contained to
// the stage they occur in; nothing after startup brings the process down.
package daemon

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/curo-sh/curo/internal/audit"
	"github.com/curo-sh/curo/internal/decision"
	"github.com/curo-sh/curo/internal/models"
)

// Sampler captures one host snapshot. degraded lists the metrics that could
// not be gathered this time; the snapshot is still usable without them.
type Sampler interface {
	Sample(ctx context.Context) (models.MetricsSnapshot, []string)
}

// Executor runs one action to completion and reports exactly one result.
type Executor interface {
	Execute(req models.ActionRequest) models.ExecutionResult
}

// Daemon owns the remediation loop and the state that survives a cycle: the
// audit log handle and the per-kind action tally.
type Daemon struct {
	sampler  Sampler
	decider  decision.Decider
	executor Executor
	auditLog *audit.Log
	interval time.Duration
	logger   *zap.Logger

	// tally counts executed actions per kind over the process lifetime.
	// Owned by the loop goroutine; read only after Run returns.
	tally map[string]int
}

// New assembles a daemon from its collaborators.
func New(sampler Sampler, decider decision.Decider, executor Executor, auditLog *audit.Log, interval time.Duration, logger *zap.Logger) *Daemon {
	return &Daemon{
		sampler:  sampler,
		decider:  decider,
		executor: executor,
		auditLog: auditLog,
		interval: interval,
		logger:   logger,
		tally:    make(map[string]int),
	}
}

// Run executes the loop until ctx is cancelled: one cycle immediately, then
// one per interval tick. The loop has no terminal state of its own; only
// cancellation ends it. On shutdown the stop marker and a tally summary are
// written before Run returns.
func (d *Daemon) Run(ctx context.Context) {
	d.auditLog.Event("=== Curo daemon started ===")
	d.logger.Info("Daemon running",
		zap.Duration("interval", d.interval),
		zap.String("decider", d.decider.Name()))

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	// Do an initial cycle immediately
	d.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			d.auditLog.Event("=== Curo daemon stopped ===")
			d.logSummary()
			return
		case <-ticker.C:
			d.runCycle(ctx)
		}
	}
}

// runCycle performs one sample, decide, execute, log pass. Every stage
// failure is absorbed here: a degraded sample still feeds the decider, an
// unavailable decision skips execution for this cycle only, and a failing
// action never blocks the ones after it.
func (d *Daemon) runCycle(ctx context.Context) {
	log := d.logger.With(zap.String("cycle", uuid.NewString()))

	// Sampling. Blocks for the CPU observation window.
	snapshot, degraded := d.sampler.Sample(ctx)
	if len(degraded) > 0 {
		log.Warn("Snapshot degraded", zap.Strings("metrics", degraded))
	}
	d.auditLog.Snapshot(snapshot)

	// Deciding. No retry within a cycle: on failure, execution is skipped
	// entirely and the next cycle asks again with a fresh snapshot.
	dec, err := d.decider.Decide(ctx, snapshot)
	if err != nil {
		log.Warn("Decision unavailable", zap.Error(err))
		d.auditLog.Unavailable(err)
		return
	}
	d.auditLog.Decision(dec.Raw)

	// Executing. One action at a time, in decision order, each result
	// recorded before the next action starts. A started action always runs
	// to completion; shutdown only stops further actions from starting.
	for i, action := range dec.Actions {
		if ctx.Err() != nil {
			log.Warn("Shutdown requested, leaving remaining actions unstarted",
				zap.Int("remaining", len(dec.Actions)-i))
			return
		}

		result := d.executor.Execute(action)
		d.tally[action.Kind]++
		d.auditLog.Result(result)
	}
}

// logSummary reports the per-kind tally gathered over the process lifetime.
func (d *Daemon) logSummary() {
	if len(d.tally) == 0 {
		d.logger.Info("No actions were executed")
		return
	}
	fields := make([]zap.Field, 0, len(d.tally))
	for kind, count := range d.tally {
		fields = append(fields, zap.Int(kind, count))
	}
	d.logger.Info("Action tally", fields...)
}

// Tally returns a copy of the per-kind action counts. Only meaningful after
// Run has returned.
func (d *Daemon) Tally() map[string]int {
	out := make(map[string]int, len(d.tally))
	for k, v := range d.tally {
		out[k] = v
	}
	return out
}
