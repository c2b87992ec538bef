// Package executor validates and runs remediation actions. It is the trust
// boundary of the daemon: action requests originate from network input, so
// only operations in the fixed allow-list ever run, and no request-derived
// string is ever handed to a shell or command interpreter.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/curo-sh/curo/internal/config"
	"github.com/curo-sh/curo/internal/models"
)

// opTimeout bounds a single operation. Operations run on contexts detached
// from the daemon's shutdown context: once started, an action finishes or
// fails on its own terms and is never interrupted by shutdown.
const opTimeout = 60 * time.Second

// Operation performs one concrete, pre-approved host procedure and returns a
// human-readable success detail. Implementations read validated parameters
// from the request (currently only the kill pid) but never interpolate
// request data into commands or paths.
type Operation func(ctx context.Context, req models.ActionRequest) (string, error)

// skipError marks a validation miss: the operation declined to run, rather
// than ran and failed.
type skipError struct {
	reason string
}

func (e *skipError) Error() string { return e.reason }

// skipf builds a skipError from a format string.
func skipf(format string, args ...interface{}) error {
	return &skipError{reason: fmt.Sprintf(format, args...)}
}

// Executor runs allow-listed actions and rejects everything else.
type Executor struct {
	cfg    config.ActionConfig
	ops    map[string]Operation
	logger *zap.Logger
}

// New creates an executor with the standard operation table. The paths and
// ages the filesystem operations work on come from cfg.
func New(cfg config.ActionConfig, logger *zap.Logger) *Executor {
	return NewWithOperations(cfg, standardOperations(cfg), logger)
}

// NewWithOperations creates an executor over a caller-supplied operation
// table. Tests use it to swap real host procedures for recording stubs.
func NewWithOperations(cfg config.ActionConfig, ops map[string]Operation, logger *zap.Logger) *Executor {
	return &Executor{
		cfg:    cfg,
		ops:    ops,
		logger: logger,
	}
}

// Execute validates the request against the allow-list and runs the mapped
// operation. It always returns exactly one result: unknown and disabled
// kinds and invalid parameters come back skipped, an OS-level failure comes
// back as an error result with its cause. Execute itself never fails; every
// outcome is an ExecutionResult.
func (e *Executor) Execute(req models.ActionRequest) models.ExecutionResult {
	op, ok := e.ops[req.Kind]
	if !ok {
		e.logger.Warn("Rejected unmapped action", zap.String("kind", req.Kind))
		return models.ExecutionResult{
			Status: models.StatusSkipped,
			Kind:   req.Kind,
			Detail: fmt.Sprintf("unsafe action %q: not in allow-list", req.Kind),
		}
	}

	if !e.cfg.EnabledFor(req.Kind) {
		e.logger.Info("Skipped disabled action", zap.String("kind", req.Kind))
		return models.ExecutionResult{
			Status: models.StatusSkipped,
			Kind:   req.Kind,
			Detail: fmt.Sprintf("action %q disabled by configuration", req.Kind),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	detail, err := op(ctx, req)

	var skip *skipError
	switch {
	case err == nil:
		e.logger.Info("Action executed",
			zap.String("kind", req.Kind),
			zap.String("detail", detail))
		return models.ExecutionResult{
			Status: models.StatusDone,
			Kind:   req.Kind,
			Detail: detail,
		}
	case errors.As(err, &skip):
		e.logger.Warn("Action skipped",
			zap.String("kind", req.Kind),
			zap.String("reason", skip.reason))
		return models.ExecutionResult{
			Status: models.StatusSkipped,
			Kind:   req.Kind,
			Detail: skip.reason,
		}
	default:
		e.logger.Error("Action failed",
			zap.String("kind", req.Kind),
			zap.Error(err))
		return models.ExecutionResult{
			Status: models.StatusError,
			Kind:   req.Kind,
			Detail: fmt.Sprintf("%s: %v", req.Kind, err),
		}
	}
}
