// Package decision turns a metrics snapshot into an ordered list of
// remediation actions. Two Decider implementations exist: Engine evaluates a
// local threshold rule table, and Client asks a remote decision service over
// HTTP. The daemon loop treats both identically.
package decision

import (
	"context"
	"errors"

	"github.com/curo-sh/curo/internal/models"
)

// ErrDecisionUnavailable marks a decision that could not be obtained at all:
// transport failure, non-2xx response, or an unparseable body. The loop
// skips execution for the cycle when it sees this; an unavailable decision
// is never substituted with an empty one.
var ErrDecisionUnavailable = errors.New("decision unavailable")

// Decider maps one snapshot to one decision.
type Decider interface {
	// Name identifies the implementation for logging.
	Name() string

	// Decide returns the ordered action list for the snapshot. Any error
	// wraps ErrDecisionUnavailable.
	Decide(ctx context.Context, snapshot models.MetricsSnapshot) (models.Decision, error)
}
