// Local rule engine: a fixed-order threshold table over the snapshot.
package decision

import (
	"context"
	"encoding/json"

	"github.com/curo-sh/curo/internal/config"
	"github.com/curo-sh/curo/internal/models"
)

// Engine is the local Decider. It is stateless and deterministic: the same
// snapshot always produces the same decision, and Decide never fails.
type Engine struct {
	thresholds config.ThresholdConfig
}

// NewEngine creates a rule engine with the given thresholds.
func NewEngine(thresholds config.ThresholdConfig) *Engine {
	return &Engine{thresholds: thresholds}
}

// Name returns "local".
func (e *Engine) Name() string { return "local" }

// Decide evaluates the rule table in fixed order (CPU, memory, disk) and
// returns the triggered actions in that order. Values equal to a threshold
// do not trigger; only strictly exceeding it does. A snapshot below every
// threshold yields the explicit noop action so a healthy tick is recorded
// rather than silently skipped.
func (e *Engine) Decide(_ context.Context, snapshot models.MetricsSnapshot) (models.Decision, error) {
	var actions []models.ActionRequest

	if snapshot.CPUPercent > e.thresholds.CPUPercent {
		actions = append(actions, models.ActionRequest{Kind: models.ActionClearCache})
	}
	if snapshot.Memory.Percent > e.thresholds.MemoryPercent {
		actions = append(actions, models.ActionRequest{Kind: models.ActionCleanupTmp})
	}
	if snapshot.Disk.Percent > e.thresholds.DiskPercent {
		actions = append(actions, models.ActionRequest{Kind: models.ActionArchiveLogs})
	}

	if len(actions) == 0 {
		actions = append(actions, models.ActionRequest{Kind: models.ActionNoop})
	}

	return models.Decision{
		Actions: actions,
		Raw:     marshalActions(actions),
	}, nil
}

// marshalActions renders the wire shape {"actions": [...]} so local
// decisions leave the same audit trace as remote ones.
func marshalActions(actions []models.ActionRequest) json.RawMessage {
	raw, err := json.Marshal(responseBody{Actions: &actions})
	if err != nil {
		return json.RawMessage(`{"actions":[]}`)
	}
	return raw
}
